// Package worker runs the ingest worker pool. Each upload event is a single
// unit of work: extract, merge, commit. There is no batching — merges are
// transactional per player and the per-player locks already serialize
// conflicting work.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/pkg/consumer"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/metrics"
	"github.com/caldweld/TowerScoreBoardBot/pkg/parser"
	"github.com/caldweld/TowerScoreBoardBot/pkg/retry"
)

// Job pairs a parsed upload event with its Kafka message so the offset can be
// committed once processing settles.
type Job struct {
	Event   parser.UploadEvent
	Message consumer.Message
}

// Handler processes one upload event end to end.
type Handler func(ctx context.Context, event parser.UploadEvent) error

// Options configures failure handling for the pool.
type Options struct {
	// Retry controls backoff for transient failures.
	Retry retry.RetryOptions

	// Discard reports errors that consume the message anyway: the upload was
	// deliberately rejected and redelivery would reject it again.
	Discard func(error) bool
}

// Pool manages the ingest worker goroutines.
type Pool struct {
	logger     *logger.Logger
	handler    Handler
	consumer   consumer.Consumer
	numWorkers int
	opts       Options
	inputChan  chan Job
	wg         sync.WaitGroup
}

// NewPool creates a Pool. queueSize bounds the handoff buffer between the
// consume loop and the workers.
func NewPool(l *logger.Logger, h Handler, c consumer.Consumer, numWorkers, queueSize int, opts Options) *Pool {
	if queueSize <= 0 {
		queueSize = numWorkers * 2
	}
	return &Pool{
		logger:     l,
		handler:    h,
		consumer:   c,
		numWorkers: numWorkers,
		opts:       opts,
		inputChan:  make(chan Job, queueSize),
	}
}

// Start initializes the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
}

// Submit sends a job to the pool for processing
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.inputChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("worker started", zap.Int("worker_id", id))

	for {
		select {
		case job, ok := <-p.inputChan:
			if !ok {
				return
			}
			p.process(ctx, job)

		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	metrics.IngestEventsConsumedTotal.Inc()

	err := retry.Do(ctx, func() error {
		return p.handler(ctx, job.Event)
	}, p.opts.Retry)

	if err != nil {
		if p.opts.Discard != nil && p.opts.Discard(err) {
			// Rejected upload: log it, consume the message so it is not
			// redelivered just to be rejected again.
			metrics.IngestValidationRejectsTotal.Inc()
			p.logger.Warn("upload rejected",
				zap.String("event_id", job.Event.ID),
				zap.String("player_key", job.Event.PlayerKey),
				zap.Error(err))
		} else {
			// Transient failure that outlived the retry budget. Leave the
			// offset uncommitted so the event is redelivered after restart.
			p.logger.Error("upload processing failed", err,
				zap.String("event_id", job.Event.ID),
				zap.String("player_key", job.Event.PlayerKey),
				zap.Int64("offset", job.Message.Offset))
			return
		}
	}

	// Commit only after the merge succeeded or the event was deliberately
	// rejected.
	if err := p.consumer.Commit(ctx, job.Message); err != nil {
		p.logger.Error("failed to commit offset", err, zap.Int64("offset", job.Message.Offset))
	}
}

// Shutdown stops all workers and waits for them to finish
func (p *Pool) Shutdown(ctx context.Context) error {
	close(p.inputChan)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
