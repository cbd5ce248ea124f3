package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iventshq/ivents/internal/auth"
	"github.com/iventshq/ivents/internal/lifecycle"
	"github.com/iventshq/ivents/internal/ratelimit"
	"github.com/iventshq/ivents/internal/search"
	"github.com/iventshq/ivents/internal/service/events"
)

// Server is the ivents HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): Limiter, Searcher.
type ServerConfig struct {
	// Required dependencies.
	Store    Store
	JWTMgr   *auth.JWTManager
	EventSvc *events.Service
	Engine   *lifecycle.Engine
	Logger   *slog.Logger

	// Optional dependencies (nil = disabled).
	Limiter  ratelimit.Limiter
	Searcher search.Searcher

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		Store:               cfg.Store,
		JWTMgr:              cfg.JWTMgr,
		EventSvc:            cfg.EventSvc,
		Engine:              cfg.Engine,
		Searcher:            cfg.Searcher,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Request ID extractor for rate limit error responses.
	reqIDFunc := func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	}

	// All client-facing limits are keyed by IP: the platform serves
	// anonymous browsers and logged-in creators through the same routes.
	ipRL := ratelimit.Middleware(cfg.Limiter, ratelimit.IPKeyFunc, reqIDFunc)

	mux := http.NewServeMux()

	// Account endpoints (no auth required for signup/login, rate limited by IP).
	mux.Handle("POST /auth/signup", ipRL(http.HandlerFunc(h.HandleSignup)))
	mux.Handle("POST /auth/login", ipRL(http.HandlerFunc(h.HandleLogin)))
	mux.Handle("POST /auth/password", ipRL(http.HandlerFunc(h.HandleChangePassword)))

	// Event catalog. Reads are public; mutations require auth (enforced
	// by authMiddleware's public-route rules).
	mux.Handle("GET /v1/events", ipRL(http.HandlerFunc(h.HandleListEvents)))
	mux.Handle("POST /v1/events", ipRL(http.HandlerFunc(h.HandleCreateEvent)))
	mux.Handle("GET /v1/events/mine", ipRL(http.HandlerFunc(h.HandleMyEvents)))
	mux.Handle("GET /v1/events/{event_id}", ipRL(http.HandlerFunc(h.HandleGetEvent)))
	mux.Handle("PATCH /v1/events/{event_id}", ipRL(http.HandlerFunc(h.HandleUpdateEvent)))
	mux.Handle("DELETE /v1/events/{event_id}", ipRL(http.HandlerFunc(h.HandleDeleteEvent)))

	// Live chat.
	mux.Handle("GET /v1/events/{event_id}/messages", ipRL(http.HandlerFunc(h.HandleListChatMessages)))
	mux.Handle("POST /v1/events/{event_id}/messages", ipRL(http.HandlerFunc(h.HandlePostChatMessage)))
	mux.Handle("DELETE /v1/events/{event_id}/messages/{message_id}", ipRL(http.HandlerFunc(h.HandleDeleteChatMessage)))

	// Semantic search and tag autocomplete.
	mux.Handle("GET /v1/search", ipRL(http.HandlerFunc(h.HandleSearch)))
	mux.Handle("GET /v1/tags/autocomplete", ipRL(http.HandlerFunc(h.HandleTagAutocomplete)))

	// Operational: run the status engine on demand (authenticated).
	mux.Handle("POST /v1/admin/status-refresh", http.HandlerFunc(h.HandleStatusRefresh))

	// Health (no auth, no rate limit).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → auth → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
