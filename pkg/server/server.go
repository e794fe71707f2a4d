// Package server exposes the HTTP surface: health and metrics on every
// binary, plus the read-only player API on cmd/api. All writes go through the
// Kafka ingest path; nothing here mutates player state.
package server

import (
	"context"
	"net/http"

	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server handles health checks, metrics, and (optionally) the read API
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New creates a server with only the observability endpoints. Ingest
// processes use this form.
func New(addr string, l *logger.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger: l,
	}

	registerBase(mux, s)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// NewAPIServer creates a server that also carries the player read API.
func NewAPIServer(addr string, l *logger.Logger, api *API) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger: l,
	}

	registerBase(mux, s)
	api.register(mux)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

func registerBase(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Start runs the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
