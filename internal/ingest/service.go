// Package ingest runs the upload consumption loop: fetch events from Kafka,
// parse the envelope, and hand them to the worker pool.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/pkg/consumer"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/metrics"
	"github.com/caldweld/TowerScoreBoardBot/pkg/parser"
	"github.com/caldweld/TowerScoreBoardBot/pkg/worker"
)

// Service coordinates the ingest components
type Service struct {
	logger   *logger.Logger
	consumer consumer.Consumer
	pool     *worker.Pool
}

// NewService creates a new ingest service instance
func NewService(
	l *logger.Logger,
	c consumer.Consumer,
	p *worker.Pool,
) *Service {
	return &Service{
		logger:   l,
		consumer: c,
		pool:     p,
	}
}

// Start begins the upload consumption and processing loop
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting ingest service")

	s.pool.Start(ctx)

	msgChan, errChan := s.consumer.Consume(ctx)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}

			if err := s.handleMessage(ctx, msg); err != nil {
				s.logger.Error("failed to handle message", err, zap.Int64("offset", msg.Offset))
			}

		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("consumer error: %w", err)
			}

		case <-ctx.Done():
			return s.Shutdown(context.Background())
		}
	}
}

func (s *Service) handleMessage(ctx context.Context, msg consumer.Message) error {
	event, err := parser.ParseUploadEvent(msg.Value)
	if err != nil {
		// A malformed envelope can never become processable; log it, commit
		// the offset, and move on.
		metrics.IngestParseFailuresTotal.Inc()
		s.logger.Warn("skipping malformed upload event",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
			zap.ByteString("payload", msg.Value))

		return s.consumer.Commit(ctx, msg)
	}

	// Offsets are committed by the pool once the merge settles.
	return s.pool.Submit(ctx, worker.Job{
		Event:   event,
		Message: msg,
	})
}

// Shutdown stops the service gracefully
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down ingest service")

	errPool := s.pool.Shutdown(ctx)
	errCons := s.consumer.Close()

	if errPool != nil || errCons != nil {
		return fmt.Errorf("shutdown errors: pool=%v, consumer=%v", errPool, errCons)
	}
	return nil
}
