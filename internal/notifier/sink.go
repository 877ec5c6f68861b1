package notifier

import (
	"context"
	"fmt"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// Sink is a notification channel for anomaly events. New channels are added
// by implementing Sink and registering it with the Dispatcher.
type Sink interface {
	// Name returns the sink's identifier (e.g., "operator", "broadcast").
	Name() string

	// Notify delivers one event. It must honor ctx; the dispatcher abandons
	// the call once the sink timeout expires.
	Notify(ctx context.Context, event types.AnomalyEvent) error
}

// Starter is implemented by sinks that run background workers.
type Starter interface {
	// Start begins background workers. Non-blocking.
	Start(ctx context.Context)
}

// AlertPayload is the {issue, fix} body sent to real-time UI clients.
type AlertPayload struct {
	Issue types.IssueKind `json:"issue"`
	Fix   string          `json:"fix"`
}

// NewAlertPayload builds the UI payload for an event.
func NewAlertPayload(event types.AnomalyEvent) AlertPayload {
	return AlertPayload{Issue: event.Issue, Fix: event.Remediation}
}

// BusMessage renders the plain-text pub/sub message for an event.
func BusMessage(event types.AnomalyEvent) string {
	return fmt.Sprintf("Anomaly Detected: %s, Fix: %s", event.Issue, event.Remediation)
}
