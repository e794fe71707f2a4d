package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/pkg/cache"
	"github.com/caldweld/TowerScoreBoardBot/pkg/config"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/server"
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/views"
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
		ServiceName: "api",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	l.Info("api initializing", zap.String("env", cfg.Environment))

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

	// 4. Leaderboard cache (optional; the API works without Redis)
	var responseCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			l.Warn("redis unreachable, serving without leaderboard cache", zap.Error(err))
		} else {
			responseCache = cache.NewRedisCache(client, "leaderboard:", cfg.Redis.CacheTTL)
		}
	}

	// 5. Wire the read API
	api := server.NewAPI(pg, views.NewService(pg), responseCache, l)
	srv := server.NewAPIServer(cfg.API.Addr, l, api)

	go func() {
		if err := srv.Start(); err != nil {
			l.Error("api server failed", err)
		}
	}()

	l.Info("api started", zap.String("addr", cfg.API.Addr))
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
