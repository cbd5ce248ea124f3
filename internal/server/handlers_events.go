package server

import (
	"net/http"
	"time"

	"github.com/iventshq/ivents/internal/model"
)

// HandleListEvents handles GET /v1/events.
//
// Filter criteria come from query parameters: search, category, status,
// tag, date_from, date_to (dates as YYYY-MM-DD), plus page. Invalid
// criteria degrade gracefully — the full sorted collection is returned
// instead of an error, matching the service-layer contract.
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	criteria := parseCriteria(r)
	page := queryInt(r, "page", 1)

	resp, err := h.eventSvc.List(r.Context(), criteria, page)
	if err != nil {
		h.writeInternalError(w, r, "failed to list events", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// parseCriteria builds SearchCriteria from query parameters. Unparseable
// dates are dropped rather than rejected; validity of the assembled
// criteria is judged downstream.
func parseCriteria(r *http.Request) model.SearchCriteria {
	q := r.URL.Query()
	criteria := model.SearchCriteria{
		Search:   q.Get("search"),
		Category: model.Category(q.Get("category")),
		Status:   model.Status(q.Get("status")),
		Tag:      q.Get("tag"),
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			criteria.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			criteria.DateTo = &t
		}
	}
	return criteria
}

// HandleGetEvent handles GET /v1/events/{event_id}.
func (h *Handlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	resp, err := h.eventSvc.Get(r.Context(), id, userIDFromContext(r.Context()))
	if err != nil {
		h.writeEventError(w, r, err, "failed to get event")
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleCreateEvent handles POST /v1/events (authenticated).
func (h *Handlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	event, err := h.eventSvc.Create(r.Context(), userIDFromContext(r.Context()), req)
	if err != nil {
		h.writeEventError(w, r, err, "failed to create event")
		return
	}
	writeJSON(w, r, http.StatusCreated, event)
}

// HandleUpdateEvent handles PATCH /v1/events/{event_id} (authenticated, owner only).
func (h *Handlers) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	var req model.UpdateEventRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	event, err := h.eventSvc.Update(r.Context(), userIDFromContext(r.Context()), id, req)
	if err != nil {
		h.writeEventError(w, r, err, "failed to update event")
		return
	}
	writeJSON(w, r, http.StatusOK, event)
}

// HandleDeleteEvent handles DELETE /v1/events/{event_id} (authenticated, owner only).
func (h *Handlers) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	if err := h.eventSvc.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.writeEventError(w, r, err, "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMyEvents handles GET /v1/events/mine (authenticated).
func (h *Handlers) HandleMyEvents(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eventSvc.MyEvents(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.writeInternalError(w, r, "failed to list own events", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}
