// Package api provides the REST API server for dewpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/config"
	"github.com/wxkit/dewpoint/internal/export"
	"github.com/wxkit/dewpoint/internal/meteo"
	"github.com/wxkit/dewpoint/internal/storage"
)

// Server represents the HTTP API server.
type Server struct {
	config      *config.Config
	storage     storage.Storage
	exporter    *export.InfluxExporter
	defaultUnit meteo.Unit
	logger      *zap.Logger
	router      chi.Router
	httpServer  *http.Server
}

// NewServer creates a new API server instance. exporter may be nil when
// InfluxDB export is not configured.
func NewServer(cfg *config.Config, store storage.Storage, exporter *export.InfluxExporter, defaultUnit meteo.Unit, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:      cfg,
		storage:     store,
		exporter:    exporter,
		defaultUnit: defaultUnit,
		logger:      logger,
	}

	s.setupRouter()
	return s, nil
}

// setupRouter configures the Chi router with all routes and middleware.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Basic Auth (if configured)
	if s.config.Webserver.Auth != nil && s.config.Webserver.Auth.Username != "" {
		r.Use(s.basicAuthMiddleware)
	}

	// Health check (no auth required)
	r.Get("/health", s.handleHealth)

	// API v1 routes (Read-Only)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dewpoint", s.handleDewPoint)

		r.Get("/history", s.handleGetHistory)
		r.Get("/history/stats", s.handleGetStats)
		r.Get("/history/{id}", s.handleGetComputation)

		r.Get("/metrics", s.handlePrometheusMetrics)
	})

	s.router = r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Webserver.Listen,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting API server",
		zap.String("listen", s.config.Webserver.Listen),
		zap.String("default_unit", s.defaultUnit.String()),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router (useful for testing).
func (s *Server) Router() chi.Router {
	return s.router
}
