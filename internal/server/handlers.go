package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iventshq/ivents/internal/auth"
	"github.com/iventshq/ivents/internal/lifecycle"
	"github.com/iventshq/ivents/internal/model"
	"github.com/iventshq/ivents/internal/search"
	"github.com/iventshq/ivents/internal/service/events"
)

// Store is the persistence surface the HTTP layer needs directly:
// accounts, chat, and a liveness probe. Event persistence is reached
// through the events service, never from handlers. *storage.DB satisfies
// this interface.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	CreateChatMessage(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error)
	ListChatMessages(ctx context.Context, eventID uuid.UUID, limit int) ([]model.ChatMessage, error)
	GetChatMessage(ctx context.Context, id uuid.UUID) (model.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id uuid.UUID) error
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	store               Store
	jwtMgr              *auth.JWTManager
	eventSvc            *events.Service
	engine              *lifecycle.Engine
	searcher            search.Searcher
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
// Optional (nil-safe): Searcher.
type HandlersDeps struct {
	Store               Store
	JWTMgr              *auth.JWTManager
	EventSvc            *events.Service
	Engine              *lifecycle.Engine
	Searcher            search.Searcher
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		store:               d.Store,
		jwtMgr:              d.JWTMgr,
		eventSvc:            d.EventSvc,
		engine:              d.Engine,
		searcher:            d.Searcher,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
	}
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	pgStatus := "connected"
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		pgStatus = "disconnected"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	resp := model.HealthResponse{
		Status:   status,
		Version:  h.version,
		Postgres: pgStatus,
		Uptime:   int64(time.Since(h.startedAt).Seconds()),
	}

	// Qdrant being down degrades search but not the service: listing and
	// the local ranking fallback keep working.
	if h.searcher != nil {
		if err := h.searcher.Healthy(r.Context()); err == nil {
			resp.Qdrant = "connected"
		} else {
			resp.Qdrant = "disconnected"
			if status == "healthy" {
				resp.Status = "degraded"
			}
		}
	}

	writeJSON(w, r, httpStatus, resp)
}

// writeInternalError logs the error and responds with a generic 500.
func (h *Handlers) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err, "request_id", RequestIDFromContext(r.Context()))
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, msg)
}

// writeEventError maps service-layer errors to HTTP responses.
func (h *Handlers) writeEventError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	switch {
	case events.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "event not found")
	case events.IsDuplicate(err):
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "an event with this title already exists")
	case errors.Is(err, events.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, events.ErrForbidden):
		writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "you do not own this event")
	case errors.Is(err, events.ErrSearchUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeSearchUnavailable, "semantic search is temporarily unavailable")
	default:
		h.writeInternalError(w, r, fallbackMsg, err)
	}
}

// --- Shared helpers ---

func parseEventID(r *http.Request) (uuid.UUID, error) {
	idStr := r.PathValue("event_id")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("event_id is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid event_id: %s", idStr)
	}
	return id, nil
}

// maxQueryLimit is the maximum allowed value for limit query parameters.
const maxQueryLimit = 500

func queryInt(r *http.Request, key string, defaultVal int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// queryLimit returns a bounded limit value from query params.
// Values are clamped to [1, maxQueryLimit].
func queryLimit(r *http.Request, defaultVal int) int {
	limit := queryInt(r, "limit", defaultVal)
	if limit < 1 {
		return 1
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
