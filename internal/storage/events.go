package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/iventshq/ivents/internal/model"
)

const eventColumns = `id, title, description, category, scheduled_date, status,
	max_viewers, is_featured, tags, stream_url, thumbnail, creator_id,
	embedding, created_at, updated_at`

func scanEvent(row pgx.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.ScheduledDate, &e.Status,
		&e.MaxViewers, &e.IsFeatured, &e.Tags, &e.StreamURL, &e.Thumbnail, &e.CreatorID,
		&e.Embedding, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// CreateEvent inserts a new event. A (creator_id, title) uniqueness
// violation is reported as ErrDuplicate.
func (db *DB) CreateEvent(ctx context.Context, event model.Event) (model.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO events (id, title, description, category, scheduled_date, status,
		 max_viewers, is_featured, tags, stream_url, thumbnail, creator_id,
		 embedding, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.ID, event.Title, event.Description, string(event.Category),
		event.ScheduledDate, string(event.Status), event.MaxViewers, event.IsFeatured,
		event.Tags, event.StreamURL, event.Thumbnail, event.CreatorID,
		event.Embedding, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Event{}, fmt.Errorf("storage: event %q by creator %s: %w",
				event.Title, event.CreatorID, ErrDuplicate)
		}
		return model.Event{}, fmt.Errorf("storage: create event: %w", err)
	}
	return event, nil
}

// GetEvent retrieves an event by ID.
func (db *DB) GetEvent(ctx context.Context, id uuid.UUID) (model.Event, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, fmt.Errorf("storage: event %s: %w", id, ErrNotFound)
		}
		return model.Event{}, fmt.Errorf("storage: get event: %w", err)
	}
	return e, nil
}

// ListEvents returns the full event collection as an in-memory snapshot.
// The filter/sort pipeline and the status engine operate on this snapshot
// rather than pushing predicates into SQL; created_at ordering here only
// gives downstream stable sorts a deterministic starting order.
func (db *DB) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListEventsByCreator returns all events created by one user, newest first.
func (db *DB) ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Event, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE creator_id = $1
		 ORDER BY created_at DESC, id`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("storage: list events by creator: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListEventsByIDs returns the events for the given IDs. Missing IDs are
// silently absent from the result; the caller preserves its own ordering.
func (db *DB) ListEventsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("storage: list events by ids: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateEvent writes the full mutable row for an event. The caller is
// expected to have loaded the current row and applied its changes.
func (db *DB) UpdateEvent(ctx context.Context, event model.Event) (model.Event, error) {
	event.UpdatedAt = time.Now().UTC()

	tag, err := db.pool.Exec(ctx,
		`UPDATE events
		 SET title = $1, description = $2, category = $3, scheduled_date = $4,
		     status = $5, max_viewers = $6, is_featured = $7, tags = $8,
		     stream_url = $9, thumbnail = $10, embedding = $11, updated_at = $12
		 WHERE id = $13`,
		event.Title, event.Description, string(event.Category), event.ScheduledDate,
		string(event.Status), event.MaxViewers, event.IsFeatured, event.Tags,
		event.StreamURL, event.Thumbnail, event.Embedding, event.UpdatedAt, event.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Event{}, fmt.Errorf("storage: event %q by creator %s: %w",
				event.Title, event.CreatorID, ErrDuplicate)
		}
		return model.Event{}, fmt.Errorf("storage: update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Event{}, fmt.Errorf("storage: event %s: %w", event.ID, ErrNotFound)
	}
	return event, nil
}

// UpdateEventStatus persists a status transition for a single event.
func (db *DB) UpdateEventStatus(ctx context.Context, id uuid.UUID, status model.Status, updatedAt time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("storage: update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: event %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateEventEmbedding stores a freshly computed embedding vector.
func (db *DB) UpdateEventEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE events SET embedding = $1 WHERE id = $2`, embedding, id)
	if err != nil {
		return fmt.Errorf("storage: update event embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: event %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteEvent removes an event. Chat messages cascade at the schema level.
func (db *DB) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: event %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountEventsByStatus returns per-status counts for one creator's events.
func (db *DB) CountEventsByStatus(ctx context.Context, creatorID uuid.UUID) (model.MyEventsStats, error) {
	var s model.MyEventsStats
	err := db.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'scheduled'),
		       count(*) FILTER (WHERE status = 'live'),
		       count(*) FILTER (WHERE status = 'finished'),
		       count(*) FILTER (WHERE status = 'cancelled')
		FROM events WHERE creator_id = $1`,
		creatorID,
	).Scan(&s.Total, &s.Scheduled, &s.Live, &s.Finished, &s.Cancelled)
	if err != nil {
		return s, fmt.Errorf("storage: count events by status: %w", err)
	}
	return s, nil
}
