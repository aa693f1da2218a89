// Package server provides the HTTP API for Shinsa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/shinsa/internal/config"
	"github.com/hyperjump/shinsa/internal/dataset"
	"github.com/hyperjump/shinsa/internal/mutate"
	"github.com/hyperjump/shinsa/internal/section"
	"github.com/hyperjump/shinsa/internal/storage"
)

// Server is the HTTP server for the Shinsa API.
type Server struct {
	locator   *section.Locator
	estimator *section.Estimator
	engine    *mutate.Engine
	generator *dataset.Generator
	store     storage.ResultStore
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. The result store
// may be nil; the status endpoint then omits result counts.
func NewServer(
	registry *section.Registry,
	engine *mutate.Engine,
	generator *dataset.Generator,
	store storage.ResultStore,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		locator:   section.NewLocator(registry),
		estimator: section.NewEstimator(nil, 0),
		engine:    engine,
		generator: generator,
		store:     store,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/locate", s.handleLocate)
	r.Post("/api/v1/mutate", s.handleMutate)
	r.Post("/api/v1/variants", s.handleVariants)
	r.Post("/api/v1/attacks", s.handleAttacks)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
