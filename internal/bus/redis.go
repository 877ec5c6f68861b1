package bus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client the publisher uses.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher publishes with PUBLISH on a channel named after the topic.
type RedisPublisher struct {
	client redisClient
}

// DialRedis parses cfg.URL (redis://[user:pass@]host:port/db) and pings the server.
func DialRedis(ctx context.Context, cfg Config) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = cfg.ConnectTimeout

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisPublisher{client: client}, nil
}

// Publish implements Publisher. Having no subscribers is not an error.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Close implements Publisher.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
