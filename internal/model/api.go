package model

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is the standard response envelope for all HTTP API responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeSearchUnavailable = "SEARCH_UNAVAILABLE"
)

// SignupRequest is the request body for POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthTokenResponse is the response for successful signup/login.
type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
}

// ChangePasswordRequest is the request body for POST /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateEventRequest is the request body for POST /v1/events.
// Status is not accepted: new events always start as scheduled.
type CreateEventRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	ScheduledDate time.Time `json:"scheduled_date"`
	MaxViewers    *int      `json:"max_viewers,omitempty"`
	IsFeatured    bool      `json:"is_featured"`
	Tags          string    `json:"tags"`
	StreamURL     *string   `json:"stream_url,omitempty"`
	Thumbnail     *string   `json:"thumbnail,omitempty"`
}

// UpdateEventRequest is the request body for PATCH /v1/events/{event_id}.
// Nil fields are left unchanged.
type UpdateEventRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	MaxViewers    *int       `json:"max_viewers,omitempty"`
	IsFeatured    *bool      `json:"is_featured,omitempty"`
	Tags          *string    `json:"tags,omitempty"`
	StreamURL     *string    `json:"stream_url,omitempty"`
	Thumbnail     *string    `json:"thumbnail,omitempty"`
}

// PageMeta describes one page of an ordered collection.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// EventListResponse is the response for GET /v1/events.
type EventListResponse struct {
	Events   []Event    `json:"events"`
	Page     PageMeta   `json:"page_info"`
	TagCloud []TagCount `json:"tag_cloud,omitempty"`
}

// EventDetailResponse is the response for GET /v1/events/{event_id}.
type EventDetailResponse struct {
	Event     Event  `json:"event"`
	EmbedURL  string `json:"embed_url,omitempty"`
	Thumbnail string `json:"thumbnail_url"`
	IsCreator bool   `json:"is_creator"`
}

// MyEventsStats holds per-status counts for a creator's events.
type MyEventsStats struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Live      int `json:"live"`
	Finished  int `json:"finished"`
	Cancelled int `json:"cancelled"`
}

// MyEventsResponse is the response for GET /v1/events/mine.
type MyEventsResponse struct {
	Events []Event       `json:"events"`
	Stats  MyEventsStats `json:"stats"`
}

// SearchHit is a single semantic search result.
type SearchHit struct {
	Event Event   `json:"event"`
	Score float64 `json:"score"`
}

// SemanticSearchResponse is the response for GET /v1/search.
type SemanticSearchResponse struct {
	Query          string      `json:"query"`
	EmbeddingModel string      `json:"embedding_model"`
	Results        []SearchHit `json:"results"`
}

// StatusRefreshResponse reports transition counts from a status engine run.
type StatusRefreshResponse struct {
	ScheduledToLive int `json:"scheduled_to_live"`
	LiveToFinished  int `json:"live_to_finished"`
}

// PostChatMessageRequest is the request body for POST /v1/events/{event_id}/messages.
type PostChatMessageRequest struct {
	Content string `json:"content"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Postgres string `json:"postgres"`
	Qdrant   string `json:"qdrant,omitempty"`
	Uptime   int64  `json:"uptime_seconds"`
}
