package bus

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// mqttClient is the subset of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes to MQTT topics.
type MQTTPublisher struct {
	client mqttClient
	qos    byte
}

// DialMQTT connects to cfg.URL, e.g. tcp://broker:1883.
func DialMQTT(logger *zap.Logger, cfg Config) (*MQTTPublisher, error) {
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", cfg.QoS)
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(clientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("Lost MQTT connection", zap.Error(err))
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect to mqtt %s: timed out", cfg.URL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt %s: %w", cfg.URL, err)
	}
	return &MQTTPublisher{client: client, qos: cfg.QoS}, nil
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects, giving in-flight messages 250ms to complete.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
