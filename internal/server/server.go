// Package server provides the HTTP server and routing for the scanning
// engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/modules/technicals"
)

// Config holds server configuration
type Config struct {
	Port          int
	Log           zerolog.Logger
	DevMode       bool
	Scanner       ScanService
	Opportunities OpportunityReader
	Alerts        AlertStore
	Technicals    *technicals.Handler
	Events        *EventsStreamHandler
	System        *SystemHandlers
}

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	server        *http.Server
	log           zerolog.Logger
	scanner       ScanService
	opportunities OpportunityReader
	alerts        AlertStore
	technicals    *technicals.Handler
	events        *EventsStreamHandler
	system        *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		scanner:       cfg.Scanner,
		opportunities: cfg.Opportunities,
		alerts:        cfg.Alerts,
		technicals:    cfg.Technicals,
		events:        cfg.Events,
		system:        cfg.System,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Scan runs can exceed the default middleware timeout when the
		// providers are slow, so the timeout wraps everything except
		// the SSE stream.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/scan", s.handleRunScan)

			r.Route("/opportunities", func(r chi.Router) {
				r.Get("/", s.handleGetOpportunities)
				r.Patch("/{id}", s.handleUpdateOpportunity)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/unread", s.handleGetUnreadAlerts)
				r.Post("/{id}/read", s.handleMarkAlertRead)
			})

			r.Get("/technicals/{symbol}", s.technicals.HandleGetSnapshot)

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.system.HandleStatus)
			})
		})

		r.Get("/events/stream", s.events.ServeHTTP)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
