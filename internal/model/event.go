package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Status represents the lifecycle state of an event.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

// Statuses lists all valid statuses in lifecycle order.
var Statuses = []Status{StatusScheduled, StatusLive, StatusFinished, StatusCancelled}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusLive, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Category is one of the fixed event categories.
type Category string

const (
	CategoryGaming        Category = "Gaming"
	CategoryMusica        Category = "Música"
	CategoryXerrades      Category = "Xerrades"
	CategoryEducacio      Category = "Educació"
	CategoryEsports       Category = "Esports"
	CategoryEntreteniment Category = "Entreteniment"
	CategoryTecnologia    Category = "Tecnologia"
	CategoryArt           Category = "Art i Creativitat"
	CategoryAltres        Category = "Altres"
)

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryGaming,
	CategoryMusica,
	CategoryXerrades,
	CategoryEducacio,
	CategoryEsports,
	CategoryEntreteniment,
	CategoryTecnologia,
	CategoryArt,
	CategoryAltres,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultDurationMinutes is the estimated live duration for categories
// absent from the duration table.
const DefaultDurationMinutes = 90

// categoryDurationMinutes maps each category to its estimated live
// duration in minutes. Immutable process-wide constant.
var categoryDurationMinutes = map[Category]int{
	CategoryGaming:        180,
	CategoryMusica:        90,
	CategoryXerrades:      60,
	CategoryEducacio:      120,
	CategoryEsports:       150,
	CategoryEntreteniment: 120,
	CategoryTecnologia:    90,
	CategoryArt:           120,
	CategoryAltres:        90,
}

// EstimatedDuration returns the estimated live duration for a category.
// Unknown categories fall back to DefaultDurationMinutes.
func EstimatedDuration(c Category) time.Duration {
	minutes, ok := categoryDurationMinutes[c]
	if !ok {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Limits on event fields.
const (
	MaxTitleLen       = 200
	MaxTagsLen        = 500
	MaxStreamURLLen   = 500
	MinViewers        = 1
	MaxViewers        = 1000
	DefaultMaxViewers = 100
)

// Event is a scheduled livestream with lifecycle status.
//
// Tags is the raw comma-separated string exactly as entered; TagList derives
// the cleaned slice on demand. The raw string, not a stored structure, is the
// source of truth for tag queries.
type Event struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      Category         `json:"category"`
	ScheduledDate time.Time        `json:"scheduled_date"`
	Status        Status           `json:"status"`
	MaxViewers    int              `json:"max_viewers"`
	IsFeatured    bool             `json:"is_featured"`
	Tags          string           `json:"tags"`
	StreamURL     *string          `json:"stream_url,omitempty"`
	Thumbnail     *string          `json:"thumbnail,omitempty"`
	CreatorID     uuid.UUID        `json:"creator_id"`
	Embedding     *pgvector.Vector `json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsLive reports whether the event is currently live.
func (e Event) IsLive() bool {
	return e.Status == StatusLive
}

// IsUpcoming reports whether the event is scheduled for the future
// relative to now.
func (e Event) IsUpcoming(now time.Time) bool {
	if e.ScheduledDate.IsZero() {
		return false
	}
	return e.Status == StatusScheduled && e.ScheduledDate.After(now)
}

// EndTime returns the estimated end of the live window.
func (e Event) EndTime() time.Time {
	return e.ScheduledDate.Add(EstimatedDuration(e.Category))
}

// TagList derives the cleaned tag slice from the raw comma-separated string:
// split on commas, trim whitespace, drop empties. Duplicates are kept and
// order is preserved.
func (e Event) TagList() []string {
	return SplitTags(e.Tags)
}

// SplitTags splits a raw comma-separated tag string into trimmed, non-empty
// tags, preserving order and duplicates.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// TagCount is a derived (tag, occurrence count) pair. Never persisted.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// allowedStreamHosts are the host suffixes accepted for stream URLs.
var allowedStreamHosts = []string{"youtube.com", "youtu.be", "twitch.tv"}

// ValidateStreamURL checks that a stream URL resolves to a YouTube or
// Twitch host. Empty URLs are valid (the field is optional).
func ValidateStreamURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if len(rawURL) > MaxStreamURLLen {
		return fmt.Errorf("stream_url exceeds maximum length of %d characters", MaxStreamURLLen)
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid stream_url: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range allowedStreamHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("stream_url must be a YouTube or Twitch URL")
}

// ValidateMaxViewers checks the viewer cap bounds.
func ValidateMaxViewers(n int) error {
	if n < MinViewers || n > MaxViewers {
		return fmt.Errorf("max_viewers must be between %d and %d", MinViewers, MaxViewers)
	}
	return nil
}

// StreamEmbedURL converts the stored stream URL into an embeddable player
// URL for YouTube (video and playlist) and Twitch (channel). Unrecognized
// shapes are returned unchanged; an absent stream URL yields "".
func (e Event) StreamEmbedURL() string {
	if e.StreamURL == nil || *e.StreamURL == "" {
		return ""
	}

	raw := strings.TrimSpace(*e.StreamURL)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		q := u.Query()
		if u.Path == "/watch" {
			if videoID := q.Get("v"); videoID != "" {
				return "https://www.youtube.com/embed/" + videoID
			}
		}
		if u.Path == "/playlist" {
			if listID := q.Get("list"); listID != "" {
				return "https://www.youtube.com/embed/videoseries?list=" + listID
			}
		}

	case host == "youtu.be":
		if videoID := strings.TrimPrefix(u.Path, "/"); videoID != "" {
			return "https://www.youtube.com/embed/" + videoID
		}

	case host == "twitch.tv" || strings.HasSuffix(host, ".twitch.tv"):
		if channel := strings.TrimPrefix(u.Path, "/"); channel != "" {
			return "https://player.twitch.tv/?channel=" + channel + "&parent=localhost"
		}
	}

	return raw
}

// defaultThumbnails maps each category to a static fallback image path.
var defaultThumbnails = map[Category]string{
	CategoryGaming:        "/static/ivents/img/default_gaming.jpg",
	CategoryMusica:        "/static/ivents/img/default_music.jpg",
	CategoryXerrades:      "/static/ivents/img/default_talk.jpg",
	CategoryEducacio:      "/static/ivents/img/default_education.jpg",
	CategoryEsports:       "/static/ivents/img/default_sports.jpg",
	CategoryEntreteniment: "/static/ivents/img/default_entertainment.jpg",
	CategoryTecnologia:    "/static/ivents/img/default_technology.jpg",
	CategoryArt:           "/static/ivents/img/default_art.jpg",
	CategoryAltres:        "/static/ivents/img/default_other.jpg",
}

// ThumbnailURL returns the URL to render for the event's thumbnail:
// the stored reference when present, otherwise the category default.
func (e Event) ThumbnailURL() string {
	if e.Thumbnail != nil && *e.Thumbnail != "" {
		return *e.Thumbnail
	}
	if path, ok := defaultThumbnails[e.Category]; ok {
		return path
	}
	return defaultThumbnails[CategoryAltres]
}

// EmbeddingText composes the text embedded for semantic search: title,
// description, and tags joined so that all searchable signals contribute
// to the vector.
func (e Event) EmbeddingText() string {
	parts := []string{e.Title, e.Description}
	if tags := e.TagList(); len(tags) > 0 {
		parts = append(parts, strings.Join(tags, " "))
	}
	return strings.Join(parts, "\n")
}
