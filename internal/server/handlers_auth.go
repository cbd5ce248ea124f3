package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iventshq/ivents/internal/auth"
	"github.com/iventshq/ivents/internal/model"
	"github.com/iventshq/ivents/internal/storage"
)

// HandleSignup handles POST /auth/signup. A successful signup logs the
// user in immediately by returning a token.
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := model.ValidateUsername(req.Username); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	if err := model.ValidateEmail(req.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeInternalError(w, r, "failed to hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "username or email already taken")
			return
		}
		h.writeInternalError(w, r, "failed to create user", err)
		return
	}

	h.issueToken(w, r, user, http.StatusCreated)
}

// HandleLogin handles POST /auth/login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		// Burn a hash so response timing does not reveal whether the
		// username exists.
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	valid, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	h.issueToken(w, r, user, http.StatusOK)
}

// HandleChangePassword handles POST /auth/password (authenticated).
func (h *Handlers) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req model.ChangePasswordRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	if err := model.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		h.writeInternalError(w, r, "failed to load user", err)
		return
	}

	valid, err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !valid {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeInternalError(w, r, "failed to hash password", err)
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		h.writeInternalError(w, r, "failed to update password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) issueToken(w http.ResponseWriter, r *http.Request, user model.User, status int) {
	token, expiresAt, err := h.jwtMgr.IssueToken(user)
	if err != nil {
		h.writeInternalError(w, r, "failed to issue token", err)
		return
	}
	writeJSON(w, r, status, model.AuthTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
	})
}
