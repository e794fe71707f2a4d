package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/internal/ingest"
	"github.com/caldweld/TowerScoreBoardBot/internal/tracker"
	"github.com/caldweld/TowerScoreBoardBot/pkg/config"
	"github.com/caldweld/TowerScoreBoardBot/pkg/consumer"
	"github.com/caldweld/TowerScoreBoardBot/pkg/extract"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/merge"
	"github.com/caldweld/TowerScoreBoardBot/pkg/parser"
	"github.com/caldweld/TowerScoreBoardBot/pkg/retry"
	"github.com/caldweld/TowerScoreBoardBot/pkg/server"
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/views"
	"github.com/caldweld/TowerScoreBoardBot/pkg/worker"
)

func main() {
	// 1. Load config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	l, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "ingestor",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	l.Info("ingestor initializing", zap.String("env", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize PostgreSQL
	pg, err := store.NewPGStore(ctx, store.Config{
		URI:      cfg.Postgres.URI,
		MinConns: int32(cfg.Postgres.MinConns),
		MaxConns: int32(cfg.Postgres.MaxConns),
	}, l)
	if err != nil {
		l.Fatal("failed to connect to postgres", err)
	}
	defer pg.Close()

	// 4. Initialize extraction client
	extractor := extract.WithTimeout(
		extract.NewHTTPClient(cfg.Extract.Endpoint, &http.Client{}),
		cfg.Extract.Timeout,
	)

	// 5. Initialize merge coordinator and upload service
	coordinator := merge.NewCoordinator(pg, l, cfg.Ingest.LockTimeout)
	svc := tracker.NewService(coordinator, pg, views.NewService(pg), extractor, cfg.Extract.MinConfidence, l)

	// 6. Initialize Consumer
	kafkaConsumer := consumer.NewKafkaConsumer(consumer.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	// 7. Initialize worker pool
	retryOpts := retry.DefaultOptions()
	retryOpts.Classifier = func(err error) bool {
		var storageErr *store.StorageError
		return errors.As(err, &storageErr) || errors.Is(err, merge.ErrLockTimeout)
	}

	pool := worker.NewPool(l,
		func(ctx context.Context, event parser.UploadEvent) error {
			_, err := svc.IngestUpload(ctx, event)
			return err
		},
		kafkaConsumer,
		cfg.Ingest.WorkerCount,
		cfg.Ingest.QueueSize,
		worker.Options{
			Retry:   retryOpts,
			Discard: tracker.IsValidationError,
		},
	)

	// 8. Create service
	ingestSvc := ingest.NewService(l, kafkaConsumer, pool)

	// 9. Start observability server
	obsServer := server.New(":8081", l)
	go func() {
		if err := obsServer.Start(); err != nil {
			l.Error("observability server failed", err)
		}
	}()

	// 10. Start service
	l.Info("ingestor starting")
	if err := ingestSvc.Start(ctx); err != nil {
		if err == context.Canceled {
			l.Info("ingestor stopping")
		} else {
			l.Error("ingestor failed", err)
		}
	}

	// Clean up observability server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	obsServer.Shutdown(shutdownCtx)
}
