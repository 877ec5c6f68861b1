package notifier

import (
	"context"
	"fmt"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// AlertEventName is the message name real-time clients subscribe to.
const AlertEventName = "anomaly_alert"

// Broadcaster pushes a named message to every connected real-time client.
type Broadcaster interface {
	Emit(event string, data any) error
}

// BroadcastSink emits anomaly_alert {issue, fix} to all connected clients.
type BroadcastSink struct {
	b Broadcaster
}

// NewBroadcastSink creates a BroadcastSink.
func NewBroadcastSink(b Broadcaster) *BroadcastSink {
	return &BroadcastSink{b: b}
}

// Name implements Sink.
func (s *BroadcastSink) Name() string { return "broadcast" }

// Notify implements Sink.
func (s *BroadcastSink) Notify(ctx context.Context, event types.AnomalyEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.b.Emit(AlertEventName, NewAlertPayload(event)); err != nil {
		return fmt.Errorf("broadcast %s: %w", AlertEventName, err)
	}
	return nil
}
