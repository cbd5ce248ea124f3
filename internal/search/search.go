// Package search ranks events by vector similarity. The in-process ranker
// is the reference scorer; the Qdrant index is an optional candidate
// source for large collections, with results re-ranked locally so that
// both paths produce identical ordering semantics.
package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/iventshq/ivents/internal/model"
)

// Item pairs an event with its embedding vector. A nil vector marks the
// event as unscorable; it is excluded from ranking rather than scored.
type Item struct {
	Event  model.Event
	Vector []float32
}

// Scored is a ranked (event, similarity) pair produced by TopK.
type Scored struct {
	Event model.Event
	Score float64
}

// Result is a (event id, score) hit returned by a candidate index.
type Result struct {
	EventID uuid.UUID
	Score   float32
}

// Filter restricts a candidate query. Zero values mean no restriction.
type Filter struct {
	Category       model.Category
	Status         model.Status
	ScheduledAfter int64 // unix seconds; 0 means unrestricted
}

// Searcher is a remote vector index used as a candidate source.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, filter Filter, limit int) ([]Result, error)
	Healthy(ctx context.Context) error
}
