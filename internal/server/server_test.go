package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iventshq/ivents/internal/auth"
	"github.com/iventshq/ivents/internal/embedding"
	"github.com/iventshq/ivents/internal/lifecycle"
	"github.com/iventshq/ivents/internal/model"
	"github.com/iventshq/ivents/internal/service/events"
	"github.com/iventshq/ivents/internal/storage"
)

// stubStore is an in-memory Store that also backs the events service and
// the lifecycle engine, so the whole HTTP stack runs without Postgres.
type stubStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]model.User
	events  map[uuid.UUID]model.Event
	msgs    map[uuid.UUID]model.ChatMessage
	pingErr error
	seq     int
}

func newStubStore() *stubStore {
	return &stubStore{
		users:  make(map[uuid.UUID]model.User),
		events: make(map[uuid.UUID]model.Event),
		msgs:   make(map[uuid.UUID]model.ChatMessage),
	}
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func (s *stubStore) CreateUser(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return model.User{}, fmt.Errorf("stub: user %q: %w", user.Username, storage.ErrDuplicate)
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return user, nil
}

func (s *stubStore) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("stub: user %s: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (s *stubStore) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("stub: user %q: %w", username, storage.ErrNotFound)
}

func (s *stubStore) UpdateUserPassword(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("stub: user %s: %w", id, storage.ErrNotFound)
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *stubStore) ListEvents(context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubStore) GetEvent(_ context.Context, id uuid.UUID) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, fmt.Errorf("stub: event %s: %w", id, storage.ErrNotFound)
	}
	return ev, nil
}

func (s *stubStore) CreateEvent(_ context.Context, ev model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.CreatorID == ev.CreatorID && existing.Title == ev.Title {
			return model.Event{}, fmt.Errorf("stub: event %q: %w", ev.Title, storage.ErrDuplicate)
		}
	}
	ev.ID = uuid.New()
	s.seq++
	ev.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	ev.UpdatedAt = ev.CreatedAt
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *stubStore) UpdateEvent(_ context.Context, ev model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[ev.ID]; !ok {
		return model.Event{}, fmt.Errorf("stub: event %s: %w", ev.ID, storage.ErrNotFound)
	}
	ev.UpdatedAt = time.Now().UTC()
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *stubStore) DeleteEvent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("stub: event %s: %w", id, storage.ErrNotFound)
	}
	delete(s.events, id)
	return nil
}

func (s *stubStore) ListEventsByCreator(_ context.Context, creatorID uuid.UUID) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, ev := range s.events {
		if ev.CreatorID == creatorID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *stubStore) ListEventsByIDs(_ context.Context, ids []uuid.UUID) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, id := range ids {
		if ev, ok := s.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *stubStore) CountEventsByStatus(_ context.Context, creatorID uuid.UUID) (model.MyEventsStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats model.MyEventsStats
	for _, ev := range s.events {
		if ev.CreatorID != creatorID {
			continue
		}
		stats.Total++
		switch ev.Status {
		case model.StatusScheduled:
			stats.Scheduled++
		case model.StatusLive:
			stats.Live++
		case model.StatusFinished:
			stats.Finished++
		case model.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (s *stubStore) UpdateEventStatus(_ context.Context, id uuid.UUID, status model.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return fmt.Errorf("stub: event %s: %w", id, storage.ErrNotFound)
	}
	ev.Status = status
	ev.UpdatedAt = updatedAt
	s.events[id] = ev
	return nil
}

func (s *stubStore) CreateChatMessage(_ context.Context, msg model.ChatMessage) (model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		s.seq++
		msg.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	}
	s.msgs[msg.ID] = msg
	return msg, nil
}

func (s *stubStore) ListChatMessages(_ context.Context, eventID uuid.UUID, limit int) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var out []model.ChatMessage
	for _, m := range s.msgs {
		if m.EventID != eventID {
			continue
		}
		if u, ok := s.users[m.UserID]; ok {
			m.Username = u.Username
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubStore) GetChatMessage(_ context.Context, id uuid.UUID) (model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.msgs[id]
	if !ok {
		return model.ChatMessage{}, fmt.Errorf("stub: chat message %s: %w", id, storage.ErrNotFound)
	}
	if u, ok := s.users[m.UserID]; ok {
		m.Username = u.Username
	}
	return m, nil
}

func (s *stubStore) DeleteChatMessage(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.msgs[id]; !ok {
		return fmt.Errorf("stub: chat message %s: %w", id, storage.ErrNotFound)
	}
	delete(s.msgs, id)
	return nil
}

type testServer struct {
	handler http.Handler
	store   *stubStore
	jwtMgr  *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	jwtMgr, err := auth.NewJWTManager("", "", time.Hour)
	require.NoError(t, err)

	store := newStubStore()
	svc := events.New(store, embedding.NewNoopProvider(4), nil, logger, events.Options{PageSize: 12})
	engine := lifecycle.NewEngine(store, logger)

	srv := New(ServerConfig{
		Store:               store,
		JWTMgr:              jwtMgr,
		EventSvc:            svc,
		Engine:              engine,
		Logger:              logger,
		Version:             "test",
		MaxRequestBodyBytes: 1 << 20,
	})
	return &testServer{handler: srv.Handler(), store: store, jwtMgr: jwtMgr}
}

// newUser registers a user directly in the store and returns a valid token.
func (ts *testServer) newUser(t *testing.T, username string) (model.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user, err := ts.store.CreateUser(context.Background(), model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	token, _, err := ts.jwtMgr.IssueToken(user)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of the standard envelope.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage    `json:"data"`
		Meta model.ResponseMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Meta.RequestID)
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope model.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func validCreateRequest(title string) model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:         title,
		Description:   "a test stream",
		Category:      model.CategoryGaming,
		ScheduledDate: time.Now().UTC().Add(24 * time.Hour),
		Tags:          "gaming, live",
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.HealthResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Postgres)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/signup", "", model.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tok model.AuthTokenResponse
	decodeData(t, rec, &tok)
	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, "alice", tok.Username)

	// Duplicate username.
	rec = ts.do(t, http.MethodPost, "/auth/signup", "", model.SignupRequest{
		Username: "alice", Email: "other@example.com", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Invalid email.
	rec = ts.do(t, http.MethodPost, "/auth/signup", "", model.SignupRequest{
		Username: "bob", Email: "not-an-email", Password: "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login with wrong password.
	rec = ts.do(t, http.MethodPost, "/auth/login", "", model.LoginRequest{
		Username: "alice", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Login with the right password.
	rec = ts.do(t, http.MethodPost, "/auth/login", "", model.LoginRequest{
		Username: "alice", Password: "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &tok)
	assert.NotEmpty(t, tok.Token)
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.newUser(t, "carol")

	rec := ts.do(t, http.MethodPost, "/auth/password", token, model.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/password", token, model.ChangePasswordRequest{
		CurrentPassword: "password123", NewPassword: "newpassword1",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", "", model.LoginRequest{
		Username: "carol", Password: "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateEvent(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.newUser(t, "creator")

	// Unauthenticated mutation is rejected.
	rec := ts.do(t, http.MethodPost, "/v1/events", "", validCreateRequest("Anon Stream"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/v1/events", token, validCreateRequest("Ranked Night"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Event
	decodeData(t, rec, &created)
	assert.Equal(t, "Ranked Night", created.Title)
	assert.Equal(t, model.StatusScheduled, created.Status)
	assert.Equal(t, model.DefaultMaxViewers, created.MaxViewers)
	assert.Equal(t, user.ID, created.CreatorID)

	// Validation failure surfaces as 400 INVALID_INPUT.
	bad := validCreateRequest("Bad Category")
	bad.Category = "Knitting"
	rec = ts.do(t, http.MethodPost, "/v1/events", token, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeInvalidInput, decodeErrorCode(t, rec))

	// Duplicate title for the same creator is a conflict.
	rec = ts.do(t, http.MethodPost, "/v1/events", token, validCreateRequest("Ranked Night"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListEventsPublicAndFiltered(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.newUser(t, "creator")

	gaming := validCreateRequest("Valorant Finals")
	music := validCreateRequest("Jazz Session")
	music.Category = model.CategoryMusica
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/v1/events", token, gaming).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/v1/events", token, music).Code)

	// Anonymous listing works.
	rec := ts.do(t, http.MethodGet, "/v1/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list model.EventListResponse
	decodeData(t, rec, &list)
	assert.Len(t, list.Events, 2)
	assert.Equal(t, 1, list.Page.Page)
	assert.NotEmpty(t, list.TagCloud)

	// Category filter narrows the result.
	rec = ts.do(t, http.MethodGet, "/v1/events?category=Música", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &list)
	require.Len(t, list.Events, 1)
	assert.Equal(t, "Jazz Session", list.Events[0].Title)

	// Invalid criteria degrade to the unfiltered collection, not an error.
	rec = ts.do(t, http.MethodGet, "/v1/events?category=Knitting", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &list)
	assert.Len(t, list.Events, 2)
}

func TestGetUpdateDeleteEvent(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.newUser(t, "owner")
	_, otherToken := ts.newUser(t, "other")

	rec := ts.do(t, http.MethodPost, "/v1/events", ownerToken, validCreateRequest("Speedrun Marathon"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Event
	decodeData(t, rec, &created)

	// Owner sees is_creator; anonymous does not.
	rec = ts.do(t, http.MethodGet, "/v1/events/"+created.ID.String(), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail model.EventDetailResponse
	decodeData(t, rec, &detail)
	assert.True(t, detail.IsCreator)

	rec = ts.do(t, http.MethodGet, "/v1/events/"+created.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &detail)
	assert.False(t, detail.IsCreator)

	// Non-owner cannot edit or delete.
	newTitle := "Hijacked"
	rec = ts.do(t, http.MethodPatch, "/v1/events/"+created.ID.String(), otherToken,
		model.UpdateEventRequest{Title: &newTitle})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/v1/events/"+created.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner edits and deletes.
	rec = ts.do(t, http.MethodPatch, "/v1/events/"+created.ID.String(), ownerToken,
		model.UpdateEventRequest{Title: &newTitle})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Event
	decodeData(t, rec, &updated)
	assert.Equal(t, "Hijacked", updated.Title)

	rec = ts.do(t, http.MethodDelete, "/v1/events/"+created.ID.String(), ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/events/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeNotFound, decodeErrorCode(t, rec))

	// Bad UUID in the path.
	rec = ts.do(t, http.MethodGet, "/v1/events/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyEvents(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.newUser(t, "creator")

	// Requires auth even though it lives under /v1/events/.
	rec := ts.do(t, http.MethodGet, "/v1/events/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/v1/events", token, validCreateRequest("Mine A")).Code)
	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/v1/events", token, validCreateRequest("Mine B")).Code)

	rec = ts.do(t, http.MethodGet, "/v1/events/mine", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine model.MyEventsResponse
	decodeData(t, rec, &mine)
	assert.Len(t, mine.Events, 2)
	assert.Equal(t, 2, mine.Stats.Total)
	assert.Equal(t, 2, mine.Stats.Scheduled)
}

func TestChatMessages(t *testing.T) {
	ts := newTestServer(t)
	_, creatorToken := ts.newUser(t, "creator")
	_, viewerToken := ts.newUser(t, "viewer")
	_, strangerToken := ts.newUser(t, "stranger")

	rec := ts.do(t, http.MethodPost, "/v1/events", creatorToken, validCreateRequest("Chat Stream"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var event model.Event
	decodeData(t, rec, &event)
	base := "/v1/events/" + event.ID.String() + "/messages"

	// Posting requires auth.
	rec = ts.do(t, http.MethodPost, base, "", model.PostChatMessageRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, base, viewerToken, model.PostChatMessageRequest{Content: "  hello there  "})
	require.Equal(t, http.StatusCreated, rec.Code)
	var msg model.ChatMessage
	decodeData(t, rec, &msg)
	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, "viewer", msg.Username)

	// Empty content is rejected.
	rec = ts.do(t, http.MethodPost, base, viewerToken, model.PostChatMessageRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// History is public.
	rec = ts.do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []model.ChatMessage
	decodeData(t, rec, &msgs)
	require.Len(t, msgs, 1)

	// A stranger cannot delete someone else's message.
	msgPath := base + "/" + msg.ID.String()
	rec = ts.do(t, http.MethodDelete, msgPath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The event creator can moderate.
	rec = ts.do(t, http.MethodDelete, msgPath, creatorToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, msgPath, creatorToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Messages to unknown events 404.
	rec = ts.do(t, http.MethodPost, "/v1/events/"+uuid.NewString()+"/messages", viewerToken,
		model.PostChatMessageRequest{Content: "void"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusRefresh(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.newUser(t, "operator")

	// Seed one event whose scheduled time has already passed. The API
	// rejects past dates on create, so write directly to the store.
	past, err := ts.store.CreateEvent(context.Background(), model.Event{
		Title:         "Started Already",
		Category:      model.CategoryXerrades,
		ScheduledDate: time.Now().UTC().Add(-10 * time.Minute),
		Status:        model.StatusScheduled,
		MaxViewers:    50,
		CreatorID:     user.ID,
	})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/v1/admin/status-refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/v1/admin/status-refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.StatusRefreshResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 1, resp.ScheduledToLive)
	assert.Equal(t, 0, resp.LiveToFinished)

	got, err := ts.store.GetEvent(context.Background(), past.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusLive, got.Status)
}

func TestTagAutocomplete(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.newUser(t, "creator")

	req := validCreateRequest("Tagged Stream")
	req.Tags = "valorant, music, val"
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/v1/events", token, req).Code)

	rec := ts.do(t, http.MethodGet, "/v1/tags/autocomplete?q=val", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Bare shape, no envelope.
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"valorant", "val"}, resp["results"])

	// Empty prefix yields an empty list.
	rec = ts.do(t, http.MethodGet, "/v1/tags/autocomplete", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp["results"])
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.newUser(t, "creator")
	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/v1/events", token, validCreateRequest("Searchable")).Code)

	// Missing query is invalid input.
	rec := ts.do(t, http.MethodGet, "/v1/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/search?q=gaming", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.SemanticSearchResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "gaming", resp.Query)
	assert.Equal(t, "noop", resp.EmbeddingModel)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownFieldRejected(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.newUser(t, "creator")

	body := []byte(`{"title":"X","bogus_field":true}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeInvalidInput, decodeErrorCode(t, rec))
}
