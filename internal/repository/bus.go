package repository

import (
	"encoding/json"
	"fmt"
)

// MessageBus is implemented by the NATS and gRPC transports.
type MessageBus interface {
	Publish(topic string, data []byte) error
}

// PublishJSON encodes v and publishes it on topic.
func PublishJSON(bus MessageBus, topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	if err := bus.Publish(topic, data); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
