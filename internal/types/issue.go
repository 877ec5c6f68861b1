package types

// IssueKind categorizes a detected anomaly. The set is closed.
type IssueKind string

const (
	IssueHighTemperature IssueKind = "high_temperature"
	IssueOverload        IssueKind = "overload"
	IssueHighVibration   IssueKind = "high_vibration"
	IssueAbnormalPower   IssueKind = "abnormal_power"
	IssueUnknown         IssueKind = "unknown" // anomalous, but no rule matched
)

// AllIssueKinds lists every IssueKind in classifier priority order.
func AllIssueKinds() []IssueKind {
	return []IssueKind{
		IssueHighTemperature,
		IssueOverload,
		IssueHighVibration,
		IssueAbnormalPower,
		IssueUnknown,
	}
}

// Valid reports whether k is a member of the closed set.
func (k IssueKind) Valid() bool {
	switch k {
	case IssueHighTemperature, IssueOverload, IssueHighVibration, IssueAbnormalPower, IssueUnknown:
		return true
	default:
		return false
	}
}

// Title returns a human-readable label for operator-facing messages.
func (k IssueKind) Title() string {
	switch k {
	case IssueHighTemperature:
		return "High Temperature"
	case IssueOverload:
		return "Overload"
	case IssueHighVibration:
		return "High Vibration"
	case IssueAbnormalPower:
		return "Abnormal Power"
	default:
		return "Unknown Issue"
	}
}
