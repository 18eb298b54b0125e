// Package broker publishes lead events to a message broker.
package broker

import (
	"context"
	"fmt"

	"intake/internal/config"
	"intake/internal/logger"
	"intake/pkg/models"
)

// Producer publishes envelopes. Publish must be safe for concurrent use.
type Producer interface {
	Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error
	Close() error
}

// NewProducer returns a nil Producer and no error when broker.type is empty,
// which disables the events sink.
func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	if cfg.Type == "" {
		return nil, nil
	}
	if cfg.Type != "kafka" {
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
	return NewKafkaProducer(cfg.Kafka, log), nil
}
