// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/filter"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/storage"
)

// Server is the HTTP server for the Kotae API.
type Server struct {
	engine        *retrieval.Engine
	registry      *storage.Registry
	extractor     *extract.Extractor
	generator     generation.Generator
	filter        *filter.Filter
	config        *config.ServerConfig
	contextChunks int
	logger        *zap.Logger
	server        *http.Server
}

// NewServer creates a server with the given dependencies. contextChunks
// bounds how many retrieved chunks feed answer generation.
func NewServer(
	engine *retrieval.Engine,
	registry *storage.Registry,
	extractor *extract.Extractor,
	generator generation.Generator,
	responseFilter *filter.Filter,
	cfg *config.ServerConfig,
	contextChunks int,
	logger *zap.Logger,
) *Server {
	if contextChunks <= 0 {
		contextChunks = 3
	}
	return &Server{
		engine:        engine,
		registry:      registry,
		extractor:     extractor,
		generator:     generator,
		filter:        responseFilter,
		config:        cfg,
		contextChunks: contextChunks,
		logger:        logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/documents", s.handleIngestDocument)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/stats", s.handleStats)
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
