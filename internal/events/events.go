// Package events publishes mutation events for statements that changed data.
package events

import (
	"fmt"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// Config selects and configures a publisher.
type Config struct {
	// Type is "", "memory" or "kafka". Empty disables publishing.
	Type       string
	BufferSize int
	Kafka      KafkaConfig
}

// New builds the publisher named by cfg.Type. It returns nil, nil when
// publishing is disabled.
func New(cfg Config) (core.Publisher, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryPublisher(cfg.BufferSize), nil
	case "kafka":
		publisher, err := NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		return nil, fmt.Errorf("unsupported events type: %s", cfg.Type)
	}
}
