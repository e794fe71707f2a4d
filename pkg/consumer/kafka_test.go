package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewKafkaConsumer(t *testing.T) {
	cfg := Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "uploads",
		GroupID: "towerboard-ingest",
	}
	c := NewKafkaConsumer(cfg)
	assert.NotNil(t, c)
	assert.NotNil(t, c.reader)
	_ = c.Close()
}

func TestCommitCanceledContext(t *testing.T) {
	c := NewKafkaConsumer(Config{
		Brokers: []string{"localhost:9999"},
		Topic:   "uploads",
		GroupID: "test",
	})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Commit(ctx, Message{Offset: 42})
	assert.Error(t, err)
}

func TestConsumerFetchTimeout(t *testing.T) {
	c := NewKafkaConsumer(Config{
		Brokers: []string{"localhost:9999"},
		Topic:   "uploads",
		GroupID: "test",
	})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	msgChan, errChan := c.Consume(ctx)

	select {
	case <-msgChan:
		t.Fatal("expected no message from non-existent server")
	case err := <-errChan:
		// Should eventually error out or be caught by ctx.Done()
		_ = err
	case <-time.After(100 * time.Millisecond):
		// Context should have timed out the consumer loop
	}
}
