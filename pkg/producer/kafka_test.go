package producer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishFailsWithoutBroker(t *testing.T) {
	p := NewKafkaProducer(Config{
		Brokers: []string{"localhost:9999"},
		Topic:   "uploads",
	})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := p.Publish(ctx, []byte("889900"), []byte(`{"id":"ev-1"}`))
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	p := NewKafkaProducer(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "uploads",
	})
	err := p.Close()
	assert.NoError(t, err)
}
