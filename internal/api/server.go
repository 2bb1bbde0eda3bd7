// Package api provides the HTTP API server and handlers for custody documentation.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodylog/custodylog-server/internal/blob"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/store"
)

// Options holds HTTP-level settings.
type Options struct {
	Version        string
	CORSOrigins    []string
	MaxUploadBytes int64
	// RequestLogging enables chi's access log. Tests turn it off.
	RequestLogging bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	blobs    blob.Store
	services *Services
	verifier session.TokenVerifier
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
	opts     Options

	submitLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, blobs blob.Store, services *Services, verifier session.TokenVerifier, opts Options, logger *slog.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadSize
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		store:         st,
		blobs:         blobs,
		services:      services,
		verifier:      verifier,
		router:        chi.NewRouter(),
		logger:        logger,
		opts:          opts,
		submitLimiter: NewRateLimiter(SubmitsPerMinute, time.Minute, SubmitsPerMinute),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Custody Log API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI dumps.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown stops background limiter cleanup.
func (s *Server) Shutdown() error {
	return s.submitLimiter.Shutdown()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if s.opts.RequestLogging {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.verifier))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerEntryRoutes()
	s.registerDashboardRoutes()
	s.registerExportRoutes()

	// Multipart uploads and blob downloads use chi directly; huma does not
	// model either well.
	s.router.With(RateLimitMiddleware(s.submitLimiter, s.logger)).Post("/api/v1/entries", s.handleSubmitEntry)
	s.router.Get("/api/v1/photos/*", s.handleGetPhoto)

	s.router.Handle("/metrics", promhttp.Handler())
}
