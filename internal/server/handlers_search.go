package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/iventshq/ivents/internal/model"
)

// HandleSearch handles GET /v1/search?q=...&future=true.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	onlyFuture := r.URL.Query().Get("future") == "true"

	resp, err := h.eventSvc.Search(r.Context(), q, onlyFuture)
	if err != nil {
		h.writeEventError(w, r, err, "search failed")
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleTagAutocomplete handles GET /v1/tags/autocomplete?q=...&limit=N.
//
// Returns a bare {"results": [...]} body instead of the standard envelope:
// this endpoint is hit on every keystroke by the tag input widget, which
// expects the minimal shape.
func (h *Handlers) HandleTagAutocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	limit := queryLimit(r, 10)

	tags, err := h.eventSvc.TagAutocomplete(r.Context(), prefix, limit)
	if err != nil {
		h.writeInternalError(w, r, "tag autocomplete failed", err)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string][]string{"results": tags})
}

// HandleStatusRefresh handles POST /v1/admin/status-refresh (authenticated).
//
// Runs the status engine immediately instead of waiting for the next tick.
// Intended for operational use (deploy hooks, cron fallback); the engine
// is idempotent, so concurrent or repeated calls are harmless.
func (h *Handlers) HandleStatusRefresh(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.AdvanceStatuses(r.Context(), time.Now().UTC())
	if err != nil {
		h.writeInternalError(w, r, "status refresh failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, model.StatusRefreshResponse{
		ScheduledToLive: stats.ScheduledToLive,
		LiveToFinished:  stats.LiveToFinished,
	})
}
