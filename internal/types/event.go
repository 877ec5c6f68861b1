package types

import "time"

// AnomalyEvent is a classified anomaly ready for dispatch. It is created by the
// pipeline when a reading is judged anomalous and lives only for the duration
// of the dispatch call that consumes it.
type AnomalyEvent struct {
	// ID uniquely identifies the event across sinks (UUID).
	ID string `json:"id"`

	// Issue is the category assigned by the first matching classifier rule.
	Issue IssueKind `json:"issue"`

	// Rule names the classifier rule that produced Issue. Empty for IssueUnknown.
	Rule string `json:"rule,omitempty"`

	// Remediation is the catalog text for Issue.
	Remediation string `json:"remediation"`

	// ReconstructionError is the score that exceeded the threshold.
	ReconstructionError float64 `json:"reconstruction_error"`

	// Reading is a private copy of the raw input.
	Reading SensorReading `json:"reading"`

	DetectedAt time.Time `json:"detected_at"`
}
