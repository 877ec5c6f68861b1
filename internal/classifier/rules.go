package classifier

import (
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// Rule names.
const (
	RuleHighTemperature = "high-temperature"
	RuleOverload        = "overload"
	RuleHighVibration   = "high-vibration"
	RuleAbnormalPower   = "abnormal-power"
)

// Rule maps a raw reading to an issue when Match returns true.
type Rule struct {
	Name  string
	Issue types.IssueKind
	Match func(reading types.SensorReading) bool
}

// Thresholds holds the per-channel cutoffs. A channel value must be strictly
// greater than its cutoff to match.
type Thresholds struct {
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	Load        float64 `json:"load" mapstructure:"load"`
	Vibration   float64 `json:"vibration" mapstructure:"vibration"`
	Power       float64 `json:"power" mapstructure:"power"`
}

// DefaultThresholds returns the cutoffs the detector ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: 100,
		Load:        900,
		Vibration:   45,
		Power:       40,
	}
}

// DefaultRules builds the rule chain in priority order:
// temperature, load, vibration, power.
func DefaultRules(t Thresholds) []Rule {
	return []Rule{
		channelAbove(RuleHighTemperature, types.IssueHighTemperature, types.ChannelTemperature, t.Temperature),
		channelAbove(RuleOverload, types.IssueOverload, types.ChannelLoad, t.Load),
		channelAbove(RuleHighVibration, types.IssueHighVibration, types.ChannelVibration, t.Vibration),
		channelAbove(RuleAbnormalPower, types.IssueAbnormalPower, types.ChannelPower, t.Power),
	}
}

// channelAbove matches when the channel is present and exceeds cutoff.
func channelAbove(name string, issue types.IssueKind, ch types.Channel, cutoff float64) Rule {
	return Rule{
		Name:  name,
		Issue: issue,
		Match: func(reading types.SensorReading) bool {
			v, ok := reading.Value(ch)
			return ok && v > cutoff
		},
	}
}
