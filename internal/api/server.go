package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/propclear/propclear/internal/domain"
)

// Server is the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	config  domain.ServerConfig
	srv     *http.Server
}

// NewServer creates a new API server with all routes registered.
func NewServer(handler *Handler, config domain.ServerConfig) *Server {
	r := chi.NewRouter()

	r.Use(CORSMiddleware)
	r.Use(RecoverMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)

	r.Route("/properties", func(r chi.Router) {
		r.Post("/", handler.SubmitProperty)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetProperty)
			r.Get("/encumbrance", handler.GetEncumbranceCertificate)
			r.Get("/title", handler.GetTitleVerification)
			r.Get("/fraud", handler.GetFraudScore)
			r.Get("/land", handler.GetLandRecord)
			r.Get("/litigation", handler.ListPropertyLitigation)
			r.Get("/documents", handler.ListPropertyDocuments)
		})
	})

	r.Route("/litigation", func(r chi.Router) {
		r.Get("/", handler.ListLitigation)
		r.Get("/high-risk", handler.ListHighRiskLitigation)
		r.Get("/{caseNumber}", handler.GetLitigationCase)
	})

	r.Get("/market/{city}", handler.GetMarket)

	r.Post("/documents/verify", handler.VerifyDocument)

	r.Route("/rera/projects", func(r chi.Router) {
		r.Get("/", handler.ListReraProjects)
		r.Post("/", handler.CreateReraProject)
		r.Get("/{registrationNumber}", handler.GetReraProject)
	})

	r.Route("/developers/{id}/audit", func(r chi.Router) {
		r.Get("/", handler.GetDeveloperAudit)
		r.Post("/", handler.RunDeveloperAudit)
	})

	r.Route("/alert-rules", func(r chi.Router) {
		r.Get("/", handler.ListAlertRules)
		r.Post("/", handler.CreateAlertRule)
		r.Post("/reload", handler.ReloadAlertRules)
	})

	return &Server{
		router:  r,
		handler: handler,
		config:  config,
	}
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("API server starting", "addr", addr)

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	slog.Info("API server shutting down")
	return s.srv.Shutdown(ctx)
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
