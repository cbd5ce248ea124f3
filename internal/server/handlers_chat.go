package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iventshq/ivents/internal/model"
	"github.com/iventshq/ivents/internal/storage"
)

// HandleListChatMessages handles GET /v1/events/{event_id}/messages.
// Chat history is public, like the event page it belongs to.
func (h *Handlers) HandleListChatMessages(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	// 404 for unknown events rather than an empty list.
	if _, err := h.eventSvc.Get(r.Context(), eventID, uuid.Nil); err != nil {
		h.writeEventError(w, r, err, "failed to load event")
		return
	}

	msgs, err := h.store.ListChatMessages(r.Context(), eventID, queryLimit(r, 100))
	if err != nil {
		h.writeInternalError(w, r, "failed to list chat messages", err)
		return
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	writeJSON(w, r, http.StatusOK, msgs)
}

// HandlePostChatMessage handles POST /v1/events/{event_id}/messages (authenticated).
func (h *Handlers) HandlePostChatMessage(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	var req model.PostChatMessageRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	if err := model.ValidateChatContent(req.Content); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	detail, err := h.eventSvc.Get(r.Context(), eventID, uuid.Nil)
	if err != nil {
		h.writeEventError(w, r, err, "failed to load event")
		return
	}
	if detail.Event.Status == model.StatusCancelled {
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "chat is closed for cancelled events")
		return
	}

	claims := ClaimsFromContext(r.Context())
	msg, err := h.store.CreateChatMessage(r.Context(), model.ChatMessage{
		EventID: eventID,
		UserID:  userIDFromContext(r.Context()),
		Content: strings.TrimSpace(req.Content),
	})
	if err != nil {
		h.writeInternalError(w, r, "failed to post chat message", err)
		return
	}
	msg.Username = claims.Username

	writeJSON(w, r, http.StatusCreated, msg)
}

// HandleDeleteChatMessage handles DELETE /v1/events/{event_id}/messages/{message_id}.
// The message author may delete their own message; the event creator may
// moderate any message in their event's chat.
func (h *Handlers) HandleDeleteChatMessage(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	msgID, err := uuid.Parse(r.PathValue("message_id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid message_id")
		return
	}

	msg, err := h.store.GetChatMessage(r.Context(), msgID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "message not found")
			return
		}
		h.writeInternalError(w, r, "failed to load chat message", err)
		return
	}
	if msg.EventID != eventID {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "message not found")
		return
	}

	actorID := userIDFromContext(r.Context())
	if msg.UserID != actorID {
		detail, err := h.eventSvc.Get(r.Context(), eventID, actorID)
		if err != nil || !detail.IsCreator {
			writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "only the author or the event creator can delete a message")
			return
		}
	}

	if err := h.store.DeleteChatMessage(r.Context(), msgID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "message not found")
			return
		}
		h.writeInternalError(w, r, "failed to delete chat message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
