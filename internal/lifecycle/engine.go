// Package lifecycle drives automatic event status transitions:
// scheduled → live when the scheduled time arrives, live → finished when
// the category's estimated duration has elapsed. Cancelled events are
// never touched; cancellation is an explicit user action only.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iventshq/ivents/internal/model"
)

// Store is the persistence surface the engine needs. Reads return a
// materialized snapshot; writes persist one event's status at a time.
type Store interface {
	// ListEvents returns all events as an in-memory snapshot.
	ListEvents(ctx context.Context) ([]model.Event, error)

	// UpdateEventStatus persists a new status and modification timestamp
	// for a single event.
	UpdateEventStatus(ctx context.Context, id uuid.UUID, status model.Status, updatedAt time.Time) error
}

// Stats reports the transition counts from one engine run.
type Stats struct {
	ScheduledToLive int `json:"scheduled_to_live"`
	LiveToFinished  int `json:"live_to_finished"`
}

// Engine applies the status state machine across the event collection.
// Invocations are serialized: overlapping runs are not designed for, so a
// mutex guarantees at most one active run per process.
type Engine struct {
	store  Store
	logger *slog.Logger

	mu sync.Mutex
}

// NewEngine creates a status engine backed by the given store.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// AdvanceStatuses runs both transition passes against a single snapshot of
// the event collection, using the supplied clock value.
//
// The two passes are independent scans over the same snapshot: an event
// that crosses its live-start boundary in this call moves only to live,
// never through to finished in the same call, even when its estimated
// duration has already elapsed.
//
// A persistence failure for one event is logged and skipped — the event's
// read-side predicate still holds, so the transition is retried on the next
// run. Only persisted transitions are counted.
func (e *Engine) AdvanceStatuses(ctx context.Context, now time.Time) (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats Stats

	snapshot, err := e.store.ListEvents(ctx)
	if err != nil {
		return stats, fmt.Errorf("lifecycle: list events: %w", err)
	}

	// Pass 1: scheduled → live once the scheduled time has arrived.
	for _, ev := range snapshot {
		if ev.Status != model.StatusScheduled || ev.ScheduledDate.IsZero() {
			continue
		}
		if ev.ScheduledDate.After(now) {
			continue
		}
		if err := e.store.UpdateEventStatus(ctx, ev.ID, model.StatusLive, now); err != nil {
			e.logger.Warn("lifecycle: persist scheduled→live failed",
				"event_id", ev.ID, "error", err)
			continue
		}
		stats.ScheduledToLive++
	}

	// Pass 2: live → finished once the estimated duration has elapsed.
	// Uses the snapshot's statuses, so events advanced in pass 1 are not
	// seen as live here.
	for _, ev := range snapshot {
		if ev.Status != model.StatusLive || ev.ScheduledDate.IsZero() {
			continue
		}
		if ev.EndTime().After(now) {
			continue
		}
		if err := e.store.UpdateEventStatus(ctx, ev.ID, model.StatusFinished, now); err != nil {
			e.logger.Warn("lifecycle: persist live→finished failed",
				"event_id", ev.ID, "error", err)
			continue
		}
		stats.LiveToFinished++
	}

	return stats, nil
}

// Run invokes AdvanceStatuses on a fixed interval until the context is
// cancelled. Transition counts are logged for operational visibility.
func (e *Engine) Run(ctx context.Context, interval time.Duration, clock func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := e.AdvanceStatuses(ctx, clock())
			if err != nil {
				e.logger.Warn("lifecycle: status refresh failed", "error", err)
				continue
			}
			if stats.ScheduledToLive > 0 || stats.LiveToFinished > 0 {
				e.logger.Info("lifecycle: statuses advanced",
					"scheduled_to_live", stats.ScheduledToLive,
					"live_to_finished", stats.LiveToFinished)
			}
		}
	}
}
