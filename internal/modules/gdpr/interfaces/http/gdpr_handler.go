package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/gateway/middleware"
	"github.com/notifeed/notifeed/internal/modules/gdpr/application"
	"github.com/notifeed/notifeed/internal/modules/gdpr/domain"
	"github.com/notifeed/notifeed/internal/shared/utils"
)

type GdprHandler struct {
	service *application.GdprService
}

func NewGdprHandler(service *application.GdprService) *GdprHandler {
	return &GdprHandler{service: service}
}

func (h *GdprHandler) RequestExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	export, err := h.service.RequestExport(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to request export", err)
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, export)
}

func (h *GdprHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}
	exportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid export id", err)
		return
	}

	status, err := h.service.GetExport(r.Context(), exportID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrExportNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Export request not found", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get export", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, status)
}

func (h *GdprHandler) RequestErasure(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.service.RequestErasure(r.Context(), userID); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to request account erasure", err)
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "Account erasure scheduled",
	})
}

func (h *GdprHandler) identity(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return uuid.Nil, false
	}
	return userID, true
}
