// Package bus publishes alert messages to a message broker.
//
// # Contract
//
// Every backend implements Publisher. Publish sends one payload to one topic
// and returns once the broker client has accepted it or ctx is done. There is
// no retry and no delivery guarantee beyond what the broker client offers.
//
// # Backends
//
//   - nats:  core NATS publish followed by a flush (nats.go)
//   - amqp:  durable topic exchange, routing key = topic (amqp091-go)
//   - mqtt:  QoS 0/1/2 publish (paho.mqtt.golang)
//   - redis: PUBLISH on a channel named after the topic (go-redis)
//   - log:   writes the message to the log; for development without a broker
package bus

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Kind selects a broker backend.
type Kind string

const (
	KindNone  Kind = "none"
	KindLog   Kind = "log"
	KindNATS  Kind = "nats"
	KindAMQP  Kind = "amqp"
	KindMQTT  Kind = "mqtt"
	KindRedis Kind = "redis"
)

// Kinds lists every supported backend.
func Kinds() []Kind {
	return []Kind{KindNone, KindLog, KindNATS, KindAMQP, KindMQTT, KindRedis}
}

// Valid reports whether k names a supported backend.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

const (
	defaultConnectTimeout = 10 * time.Second
	defaultExchange       = "cranewatch.alerts"
	defaultClientID       = "cranewatch"
)

// Publisher sends payloads to broker topics. Implementations are safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind           Kind
	URL            string        // nats://, amqp://, tcp:// (mqtt) or redis://
	Exchange       string        // amqp only, default "cranewatch.alerts"
	ClientID       string        // mqtt only, default "cranewatch"
	QoS            byte          // mqtt only
	ConnectTimeout time.Duration // default 10s
}

// New connects to the configured backend. KindNone is rejected; callers
// should not register a bus sink at all in that case.
func New(ctx context.Context, logger *zap.Logger, cfg Config) (Publisher, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	logger = logger.Named("bus").With(zap.String("kind", string(cfg.Kind)))

	switch cfg.Kind {
	case KindLog:
		return NewLogPublisher(logger), nil
	case KindNATS:
		return DialNATS(logger, cfg)
	case KindAMQP:
		return DialAMQP(cfg)
	case KindMQTT:
		return DialMQTT(logger, cfg)
	case KindRedis:
		return DialRedis(ctx, cfg)
	case KindNone:
		return nil, fmt.Errorf("bus is disabled")
	default:
		return nil, fmt.Errorf("unsupported bus kind %q", cfg.Kind)
	}
}

// LogPublisher writes every message to the log.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Info("Published message", zap.String("topic", topic), zap.ByteString("payload", payload))
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() error { return nil }
