package bus

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes to a durable topic exchange. The routing key is the topic.
type AMQPPublisher struct {
	channel  amqpChannel
	conn     io.Closer
	exchange string
	now      func() time.Time
}

// DialAMQP connects to cfg.URL and declares the exchange.
func DialAMQP(cfg Config) (*AMQPPublisher, error) {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Dial: func(network, addr string) (net.Conn, error) {
			return net.DialTimeout(network, addr, cfg.ConnectTimeout)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return newAMQPPublisher(ch, conn, exchange), nil
}

func newAMQPPublisher(ch amqpChannel, conn io.Closer, exchange string) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, conn: conn, exchange: exchange, now: time.Now}
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Transient,
			Timestamp:    p.now().UTC(),
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp publish to %s: %w", p.exchange, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	chErr := p.channel.Close()
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
