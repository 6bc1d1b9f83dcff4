package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/theme/application"
	"github.com/notifeed/notifeed/internal/modules/theme/domain"
	"github.com/notifeed/notifeed/internal/shared/utils"
)

type ThemeHandler struct {
	service *application.ThemeService
}

func NewThemeHandler(service *application.ThemeService) *ThemeHandler {
	return &ThemeHandler{service: service}
}

func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	theme, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, theme)
}

func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid company id", err)
		return
	}

	themes, err := h.service.ListByCompany(r.Context(), companyID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list themes", err)
		return
	}
	if themes == nil {
		themes = []domain.Theme{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": themes})
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	theme, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, theme)
}

func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req application.UpdateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	theme, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, theme)
}

func (h *ThemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ThemeHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	theme, err := h.service.SetDefault(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, theme)
}

// CSS serves the theme as a stylesheet rather than JSON.
func (h *ThemeHandler) CSS(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	css, err := h.service.CSS(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(css))
}

func (h *ThemeHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid theme id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ThemeHandler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	var colorErr *application.InvalidColorError
	switch {
	case errors.As(err, &validationErrs):
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.As(err, &colorErr):
		utils.WriteError(w, http.StatusBadRequest, "Invalid color value", err)
	case errors.Is(err, domain.ErrThemeNotFound):
		utils.WriteError(w, http.StatusNotFound, "Theme not found", err)
	case errors.Is(err, domain.ErrThemeNameTaken):
		utils.WriteError(w, http.StatusConflict, "Theme name already taken", err)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
