package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/gateway/middleware"
	"github.com/notifeed/notifeed/internal/modules/security/domain"
	"github.com/notifeed/notifeed/internal/shared/utils"
)

type SessionHandler struct {
	store domain.SessionStore
}

func NewSessionHandler(store domain.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

// List returns the caller's active sessions, newest first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	sessions, err := h.store.List(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to list sessions", err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": sessions})
}

// Revoke kills one session. The blacklisted token id is rejected by the
// auth middleware from the next request on.
func (h *SessionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	tokenID := r.PathValue("tokenID")
	if tokenID == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing token id", nil)
		return
	}

	if err := h.store.Revoke(r.Context(), userID, tokenID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			utils.WriteError(w, http.StatusNotFound, "session not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to revoke session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
