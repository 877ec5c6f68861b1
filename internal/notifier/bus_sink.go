package notifier

import (
	"context"
	"fmt"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

// DefaultBusTopic is the topic anomaly messages are published to.
const DefaultBusTopic = "crane/anomalies"

// Publisher sends a payload to a message-broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// BusSink publishes "Anomaly Detected: <issue>, Fix: <fix>" as plain text.
type BusSink struct {
	pub   Publisher
	topic string
}

// NewBusSink creates a BusSink. An empty topic uses DefaultBusTopic.
func NewBusSink(pub Publisher, topic string) *BusSink {
	if topic == "" {
		topic = DefaultBusTopic
	}
	return &BusSink{pub: pub, topic: topic}
}

// Name implements Sink.
func (s *BusSink) Name() string { return "bus" }

// Topic returns the publish topic.
func (s *BusSink) Topic() string { return s.topic }

// Notify implements Sink.
func (s *BusSink) Notify(ctx context.Context, event types.AnomalyEvent) error {
	if err := s.pub.Publish(ctx, s.topic, []byte(BusMessage(event))); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}
