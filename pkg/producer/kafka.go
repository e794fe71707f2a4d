// Package producer publishes upload events to the Kafka uploads topic. It is
// used by the seeder tool; the production publisher is the bot frontend.
package producer

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer defines the interface for publishing upload events
type Producer interface {
	// Publish sends one message and waits for broker acknowledgement.
	Publish(ctx context.Context, key, value []byte) error

	// Close gracefully shuts down the producer
	Close() error
}

// KafkaProducer implements the Producer interface using kafka-go
type KafkaProducer struct {
	writer *kafka.Writer
}

// Config holds Kafka producer configuration
type Config struct {
	Brokers []string
	Topic   string
}

// NewKafkaProducer creates a new KafkaProducer instance. Writes are
// synchronous: upload events are rare and losing one silently would be worse
// than a slow publish. Keyed by player so one player's uploads stay ordered
// within a partition.
func NewKafkaProducer(cfg Config) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaProducer{
		writer: writer,
	}
}

// Publish sends one message and blocks until the broker acknowledges it
func (p *KafkaProducer) Publish(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Close gracefully shuts down the producer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
