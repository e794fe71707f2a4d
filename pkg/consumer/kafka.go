// Package consumer reads upload events from the Kafka uploads topic.
package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is one upload event as fetched from Kafka. Raw is retained so the
// offset can be committed once the upload has been fully processed.
type Message struct {
	Key       []byte
	Value     []byte
	Offset    int64
	Partition int
	Topic     string
	Raw       kafka.Message
}

// Consumer defines the interface for consuming upload events
type Consumer interface {
	// Consume returns a channel of messages.
	Consume(ctx context.Context) (<-chan Message, <-chan error)

	// Commit commits the offset for a specific message
	Commit(ctx context.Context, msg Message) error

	// Close gracefully shuts down the consumer
	Close() error
}

// KafkaConsumer implements the Consumer interface using kafka-go
type KafkaConsumer struct {
	reader *kafka.Reader
}

// Config holds Kafka consumer configuration
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
	MaxWait time.Duration
}

// NewKafkaConsumer creates a new KafkaConsumer instance. Upload events are
// small JSON envelopes, so fetches are tuned for latency over throughput.
func NewKafkaConsumer(cfg Config) *KafkaConsumer {
	maxWait := cfg.MaxWait
	if maxWait <= 0 {
		maxWait = time.Second
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  maxWait,
	})

	return &KafkaConsumer{
		reader: reader,
	}
}

// Consume starts the consumption loop. Offsets are not auto-committed: the
// caller commits each message explicitly after processing it.
func (c *KafkaConsumer) Consume(ctx context.Context) (<-chan Message, <-chan error) {
	msgChan := make(chan Message)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)

		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				errChan <- fmt.Errorf("failed to fetch message: %w", err)
				return
			}

			select {
			case msgChan <- Message{
				Key:       m.Key,
				Value:     m.Value,
				Offset:    m.Offset,
				Partition: m.Partition,
				Topic:     m.Topic,
				Raw:       m,
			}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, errChan
}

// Commit commits the offset for a message
func (c *KafkaConsumer) Commit(ctx context.Context, msg Message) error {
	return c.reader.CommitMessages(ctx, msg.Raw)
}

// Close gracefully shuts down the consumer
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
