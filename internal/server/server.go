// internal/server/server.go

// Package server wires the NL-to-SQL pipeline behind the HTTP interface:
// rule engine first, model fallback plus extraction second, then a single
// statement execution, with the response reporting which method produced the
// SQL.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/Violet0725/NLtoSQL/internal/common/errors"
	"github.com/Violet0725/NLtoSQL/internal/common/logger"
	"github.com/Violet0725/NLtoSQL/internal/common/observability"
)

// Generator is the process-wide model handle used for the fallback path.
type Generator interface {
	Ready() bool
	Complete(ctx context.Context, prompt string) (string, error)
	Tokenize(ctx context.Context, text string) ([]int, error)
}

// SchemaReader supplies table definitions for prompt context and /schema.
type SchemaReader interface {
	Read(ctx context.Context) (string, error)
}

// QueryExecutor runs a single SQL statement and returns its rows.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlText string) ([]map[string]interface{}, error)
}

// Config holds server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	config   *Config
	model    Generator
	schema   SchemaReader
	executor QueryExecutor
	obs      *observability.Observability
	logger   logger.Logger

	httpServer *http.Server
}

func New(config *Config, model Generator, schema SchemaReader, executor QueryExecutor, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		config:   config,
		model:    model,
		schema:   schema,
		executor: executor,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}

	s.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Routes builds the HTTP mux. Exposed for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.config.Addr,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	s.writeJSON(w, stdErr.HTTPStatus(), map[string]interface{}{
		"error": stdErr,
	})
}
