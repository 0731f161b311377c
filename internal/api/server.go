package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/shohag/hookbridge/internal/config"
	"github.com/shohag/hookbridge/internal/storage"
)

type Server struct {
	cfg     config.ServerConfig
	webhook config.WebhookConfig
	store   storage.Storage
	router  *chi.Mux
	log     zerolog.Logger
	http    *http.Server
}

func NewServer(cfg config.ServerConfig, webhook config.WebhookConfig, store storage.Storage, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		webhook: webhook,
		store:   store,
		log:     log,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.log))

	whHandler := NewWebhookHandler(s.store, s.log)
	evHandler := NewEventHandler(s.store)

	// Health check — no auth
	r.Get("/health", evHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(BasicAuthMiddleware(s.webhook))
		r.Use(SignatureMiddleware(s.webhook.SigningSecret))

		// Paths must match the provisioned connection destinations.
		r.Post("/webhooks/chargebee/customer", whHandler.Customer)
		r.Post("/webhooks/chargebee/subscription", whHandler.Subscription)
		r.Post("/webhooks/chargebee/payments", whHandler.Payment)
	})

	r.Group(func(r chi.Router) {
		r.Use(BasicAuthMiddleware(s.webhook))

		r.Get("/events", evHandler.List)
		r.Get("/events/counts", evHandler.Counts)
		r.Get("/events/{id}", evHandler.Get)
	})

	return r
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.Info().Str("addr", addr).Msg("starting HTTP server")
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
