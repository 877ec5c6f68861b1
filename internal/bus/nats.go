package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const natsFlushTimeout = 5 * time.Second

// natsConn is the subset of *nats.Conn the publisher uses.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
}

// NATSPublisher publishes to core NATS subjects.
type NATSPublisher struct {
	conn natsConn
}

// DialNATS connects to cfg.URL. The client reconnects on its own after the
// initial connection succeeds.
func DialNATS(logger *zap.Logger, cfg Config) (*NATSPublisher, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("cranewatch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrlRedacted()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish implements Publisher. The flush makes a broken connection surface
// as an error instead of a silently buffered message.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.conn.Publish(topic, payload); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	var err error
	if _, ok := ctx.Deadline(); ok {
		err = p.conn.FlushWithContext(ctx)
	} else {
		err = p.conn.FlushTimeout(natsFlushTimeout)
	}
	if err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
