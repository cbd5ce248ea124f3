// Package events implements the application service for event listing,
// lifecycle, and semantic search. It orchestrates storage snapshots through
// the in-memory catalog pipeline and keeps the optional vector index in
// sync with event mutations.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iventshq/ivents/internal/catalog"
	"github.com/iventshq/ivents/internal/embedding"
	"github.com/iventshq/ivents/internal/model"
	"github.com/iventshq/ivents/internal/search"
	"github.com/iventshq/ivents/internal/storage"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrInvalidInput      = errors.New("events: invalid input")
	ErrForbidden         = errors.New("events: forbidden")
	ErrSearchUnavailable = errors.New("events: search unavailable")
)

// Store is the persistence surface the service needs.
type Store interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (model.Event, error)
	CreateEvent(ctx context.Context, event model.Event) (model.Event, error)
	UpdateEvent(ctx context.Context, event model.Event) (model.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Event, error)
	ListEventsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Event, error)
	CountEventsByStatus(ctx context.Context, creatorID uuid.UUID) (model.MyEventsStats, error)
}

// VectorIndex is an optional remote candidate source kept in sync with
// event mutations. All index calls are best-effort: Postgres remains the
// source of truth, and search falls back to in-process ranking.
type VectorIndex interface {
	search.Searcher
	Upsert(ctx context.Context, points []search.Point) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// Options tune the service's listing and search behavior.
type Options struct {
	PageSize      int
	SearchTopK    int
	TagCloudLimit int
}

// Service implements the event application operations.
type Service struct {
	store    Store
	embedder embedding.Provider
	index    VectorIndex // nil when no remote index is configured
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
}

// New creates an event service. index may be nil.
func New(store Store, embedder embedding.Provider, index VectorIndex, logger *slog.Logger, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = catalog.DefaultPageSize
	}
	if opts.SearchTopK <= 0 {
		opts.SearchTopK = 20
	}
	if opts.TagCloudLimit <= 0 {
		opts.TagCloudLimit = 30
	}
	return &Service{
		store:    store,
		embedder: embedder,
		index:    index,
		logger:   logger,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns one page of the filtered, sorted event collection along
// with the tag cloud derived from the full collection.
func (s *Service) List(ctx context.Context, criteria model.SearchCriteria, page int) (model.EventListResponse, error) {
	snapshot, err := s.store.ListEvents(ctx)
	if err != nil {
		return model.EventListResponse{}, fmt.Errorf("events: list: %w", err)
	}

	filtered := catalog.FilterAndSort(snapshot, criteria)
	pageEvents, meta := catalog.Paginate(filtered, page, s.opts.PageSize)

	return model.EventListResponse{
		Events:   pageEvents,
		Page:     meta,
		TagCloud: catalog.TagCloud(snapshot, s.opts.TagCloudLimit),
	}, nil
}

// Get returns one event with its derived presentation fields.
func (s *Service) Get(ctx context.Context, id, viewerID uuid.UUID) (model.EventDetailResponse, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return model.EventDetailResponse{}, err
	}
	return model.EventDetailResponse{
		Event:     event,
		EmbedURL:  event.StreamEmbedURL(),
		Thumbnail: event.ThumbnailURL(),
		IsCreator: viewerID != uuid.Nil && viewerID == event.CreatorID,
	}, nil
}

// Create validates and stores a new event. Status always starts as
// scheduled. Embedding and index sync are best-effort.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req model.CreateEventRequest) (model.Event, error) {
	event := model.Event{
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Category:      req.Category,
		ScheduledDate: req.ScheduledDate,
		Status:        model.StatusScheduled,
		MaxViewers:    model.DefaultMaxViewers,
		IsFeatured:    req.IsFeatured,
		Tags:          req.Tags,
		StreamURL:     req.StreamURL,
		Thumbnail:     req.Thumbnail,
		CreatorID:     creatorID,
	}
	if req.MaxViewers != nil {
		event.MaxViewers = *req.MaxViewers
	}

	if err := s.validateEvent(event, true); err != nil {
		return model.Event{}, err
	}

	s.attachEmbedding(ctx, &event)

	created, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return model.Event{}, err
	}

	s.syncIndex(ctx, created)
	return created, nil
}

// Update applies a partial update to an event owned by actorID.
// Re-embeds and re-syncs the index when searchable text changed.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req model.UpdateEventRequest) (model.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	if event.CreatorID != actorID {
		return model.Event{}, fmt.Errorf("event %s: %w", id, ErrForbidden)
	}

	textChanged := false
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
		textChanged = true
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
		textChanged = true
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.ScheduledDate != nil {
		if event.Status == model.StatusLive {
			return model.Event{}, fmt.Errorf("%w: scheduled_date cannot change while the event is live", ErrInvalidInput)
		}
		event.ScheduledDate = *req.ScheduledDate
	}
	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			return model.Event{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		event.Status = *req.Status
	}
	if req.MaxViewers != nil {
		event.MaxViewers = *req.MaxViewers
	}
	if req.IsFeatured != nil {
		event.IsFeatured = *req.IsFeatured
	}
	if req.Tags != nil {
		event.Tags = *req.Tags
		textChanged = true
	}
	if req.StreamURL != nil {
		event.StreamURL = req.StreamURL
	}
	if req.Thumbnail != nil {
		event.Thumbnail = req.Thumbnail
	}

	if err := s.validateEvent(event, false); err != nil {
		return model.Event{}, err
	}

	if textChanged {
		s.attachEmbedding(ctx, &event)
	}

	updated, err := s.store.UpdateEvent(ctx, event)
	if err != nil {
		return model.Event{}, err
	}

	s.syncIndex(ctx, updated)
	return updated, nil
}

// Delete removes an event owned by actorID.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatorID != actorID {
		return fmt.Errorf("event %s: %w", id, ErrForbidden)
	}

	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteByIDs(ctx, []uuid.UUID{id}); err != nil {
			s.logger.Warn("events: index delete failed", "event_id", id, "error", err)
		}
	}
	return nil
}

// MyEvents returns a creator's own events with per-status counts.
func (s *Service) MyEvents(ctx context.Context, creatorID uuid.UUID) (model.MyEventsResponse, error) {
	events, err := s.store.ListEventsByCreator(ctx, creatorID)
	if err != nil {
		return model.MyEventsResponse{}, err
	}
	stats, err := s.store.CountEventsByStatus(ctx, creatorID)
	if err != nil {
		return model.MyEventsResponse{}, err
	}
	return model.MyEventsResponse{Events: events, Stats: stats}, nil
}

// TagAutocomplete returns tag strings matching the prefix, by frequency.
func (s *Service) TagAutocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	snapshot, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("events: tag autocomplete: %w", err)
	}
	return catalog.SearchTags(snapshot, prefix, limit), nil
}

// Search ranks events by semantic similarity to the query. An embedder
// failure surfaces as ErrSearchUnavailable; the ranker is never invoked
// without a query vector. When a healthy remote index is configured it
// supplies candidates, which are hydrated from storage and re-ranked with
// the local scorer so both paths share ordering semantics.
func (s *Service) Search(ctx context.Context, query string, onlyFuture bool) (model.SemanticSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SemanticSearchResponse{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return model.SemanticSearchResponse{}, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}
	queryVec := vec.Slice()

	candidates, err := s.searchCandidates(ctx, queryVec, onlyFuture)
	if err != nil {
		return model.SemanticSearchResponse{}, err
	}

	ranked := search.TopK(queryVec, candidates, s.opts.SearchTopK)
	hits := make([]model.SearchHit, len(ranked))
	for i, r := range ranked {
		hits[i] = model.SearchHit{Event: r.Event, Score: r.Score}
	}

	return model.SemanticSearchResponse{
		Query:          query,
		EmbeddingModel: s.embedder.ModelName(),
		Results:        hits,
	}, nil
}

// searchCandidates assembles the items to rank: remote index candidates
// when available, otherwise the full storage snapshot.
func (s *Service) searchCandidates(ctx context.Context, queryVec []float32, onlyFuture bool) ([]search.Item, error) {
	if s.index != nil && s.index.Healthy(ctx) == nil {
		filter := search.Filter{}
		if onlyFuture {
			filter.ScheduledAfter = s.now().Unix()
		}
		results, err := s.index.Search(ctx, queryVec, filter, s.opts.SearchTopK)
		if err == nil {
			return s.hydrate(ctx, results)
		}
		s.logger.Warn("events: index search failed, falling back to local ranking", "error", err)
	}

	snapshot, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("events: search: %w", err)
	}

	items := make([]search.Item, 0, len(snapshot))
	for _, ev := range snapshot {
		if onlyFuture && !ev.ScheduledDate.After(s.now()) {
			continue
		}
		items = append(items, search.Item{Event: ev, Vector: embeddingSlice(ev)})
	}
	return items, nil
}

// hydrate loads full events for index hits, preserving scorability rules.
func (s *Service) hydrate(ctx context.Context, results []search.Result) ([]search.Item, error) {
	ids := make([]uuid.UUID, len(results))
	for i, r := range results {
		ids[i] = r.EventID
	}
	events, err := s.store.ListEventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("events: hydrate search results: %w", err)
	}

	byID := make(map[uuid.UUID]model.Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	// Keep the index's candidate order; stale index entries whose rows are
	// gone from Postgres are dropped.
	items := make([]search.Item, 0, len(results))
	for _, r := range results {
		ev, ok := byID[r.EventID]
		if !ok {
			continue
		}
		items = append(items, search.Item{Event: ev, Vector: embeddingSlice(ev)})
	}
	return items, nil
}

func embeddingSlice(ev model.Event) []float32 {
	if ev.Embedding == nil {
		return nil
	}
	return ev.Embedding.Slice()
}

// validateEvent checks all field constraints. requireFuture applies the
// creation rule that an event must be scheduled ahead of time; edits may
// keep a past date (the event may already be live).
func (s *Service) validateEvent(event model.Event, requireFuture bool) error {
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(event.Title) > model.MaxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, model.MaxTitleLen)
	}
	if !model.ValidCategory(event.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, event.Category)
	}
	if event.ScheduledDate.IsZero() {
		return fmt.Errorf("%w: scheduled_date is required", ErrInvalidInput)
	}
	if requireFuture && !event.ScheduledDate.After(s.now()) {
		return fmt.Errorf("%w: scheduled_date must be in the future", ErrInvalidInput)
	}
	if err := model.ValidateMaxViewers(event.MaxViewers); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if len(event.Tags) > model.MaxTagsLen {
		return fmt.Errorf("%w: tags exceed %d characters", ErrInvalidInput, model.MaxTagsLen)
	}
	if event.StreamURL != nil {
		if err := model.ValidateStreamURL(*event.StreamURL); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}
	return nil
}

// attachEmbedding computes the event's embedding in place. Failures are
// logged, not fatal: an event without a vector is excluded from semantic
// ranking but remains fully functional otherwise.
func (s *Service) attachEmbedding(ctx context.Context, event *model.Event) {
	vec, err := s.embedder.Embed(ctx, event.EmbeddingText())
	if err != nil {
		s.logger.Warn("events: embedding failed, storing without vector",
			"title", event.Title, "error", err)
		event.Embedding = nil
		return
	}
	event.Embedding = &vec
}

// syncIndex upserts the event into the remote index, best-effort.
func (s *Service) syncIndex(ctx context.Context, event model.Event) {
	if s.index == nil || event.Embedding == nil {
		return
	}
	err := s.index.Upsert(ctx, []search.Point{{
		ID:            event.ID,
		Category:      event.Category,
		Status:        event.Status,
		ScheduledDate: event.ScheduledDate,
		CreatorID:     event.CreatorID,
		Embedding:     event.Embedding.Slice(),
	}})
	if err != nil {
		s.logger.Warn("events: index upsert failed", "event_id", event.ID, "error", err)
	}
}

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, storage.ErrDuplicate)
}
