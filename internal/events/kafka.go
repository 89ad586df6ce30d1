package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

var (
	// ErrPublisherClosed is returned when publishing to a closed publisher.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrInvalidEvent is returned for nil events or events without a table.
	ErrInvalidEvent = errors.New("invalid mutation event")
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig holds configuration for the Kafka publisher.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequiredAcks int // 0, 1, or -1 (all)
}

// KafkaPublisher publishes mutation events to a Kafka topic. Messages are
// keyed by "database.table" so events for one table stay in one partition.
type KafkaPublisher struct {
	mu     sync.RWMutex
	writer MessageWriter
	topic  string
	closed bool
}

// NewKafkaPublisher creates a synchronous Kafka writer for config.Topic.
// No connection is made until the first publish.
func NewKafkaPublisher(config KafkaConfig) (*KafkaPublisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("Kafka topic is required")
	}

	log.Printf("[KAFKA] Initializing publisher - Brokers: %v, Topic: %s, Required Acks: %d",
		config.Brokers, config.Topic, config.RequiredAcks)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    config.BatchSize,
		BatchTimeout: config.BatchTimeout,
		WriteTimeout: config.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
		MaxAttempts:  3,
		Async:        false,
	}

	return NewKafkaPublisherWithWriter(writer, config.Topic), nil
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic}
}

// Publish writes one event to Kafka and waits for the configured acks.
func (p *KafkaPublisher) Publish(ctx context.Context, event *core.MutationEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if err := validateEvent(event); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.Database + "." + event.Table),
		Value: payload,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(event.Operation)},
			{Key: "table", Value: []byte(event.Table)},
		},
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		log.Printf("[KAFKA] ERROR: Failed to write %s event for %s.%s to topic %s: %v (Duration: %v)",
			event.Operation, event.Database, event.Table, p.topic, err, time.Since(start))
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	log.Printf("[KAFKA] Produced %s event for %s.%s to topic '%s' (%d bytes, Duration: %v)",
		event.Operation, event.Database, event.Table, p.topic, len(payload), time.Since(start))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.writer.Close(); err != nil {
		log.Printf("[KAFKA] ERROR: Failed to close writer: %v", err)
		return err
	}
	return nil
}

func validateEvent(event *core.MutationEvent) error {
	if event == nil {
		return ErrInvalidEvent
	}
	if event.Table == "" {
		return fmt.Errorf("%w: table name is required", ErrInvalidEvent)
	}
	return nil
}
