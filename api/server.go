package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/generate"
	"github.com/NastasiaHalabi/CertificateGenerator/jobs"
)

// Generator runs one generation request.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) (*generate.Response, error)
}

// JobReader looks up email jobs by id.
type JobReader interface {
	Get(id string) (*jobs.Job, error)
}

// Config holds the HTTP listener settings.
type Config struct {
	ListenAddr   string
	MaxBodyBytes int64
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	generator  Generator
	jobs       JobReader
	config     Config
	logger     *zap.Logger
	startTime  time.Time
}

// NewServer creates a new API server
func NewServer(gen Generator, jr JobReader, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 25 << 20
	}
	s := &Server{
		router:    chi.NewRouter(),
		generator: gen,
		jobs:      jr,
		config:    cfg,
		logger:    logger.With(zap.String("component", "api")),
		startTime: time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/pdf", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Get("/email-status", s.handleEmailStatus)
		r.Get("/email-status/{jobId}", s.handleEmailStatus)
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // 1000 行批次渲染耗时较长
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", zap.String("addr", s.config.ListenAddr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
