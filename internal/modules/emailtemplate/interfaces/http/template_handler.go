package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/application"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/domain"
	"github.com/notifeed/notifeed/internal/shared/utils"
)

const defaultPageSize = 20

type TemplateHandler struct {
	service *application.TemplateService
}

func NewTemplateHandler(service *application.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

type listMetadata struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasMore bool `json:"has_more"`
}

type listResponse struct {
	Data     []domain.EmailTemplate `json:"data"`
	Metadata listMetadata           `json:"metadata"`
}

type renderRequest struct {
	Data map[string]any `json:"data"`
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tmpl, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, tmpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.TemplateFilter{Search: q.Get("search")}
	if raw := q.Get("company_id"); raw != "" {
		companyID, err := uuid.Parse(raw)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid company id", err)
			return
		}
		filter.CompanyID = &companyID
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	offset := (page - 1) * limit

	templates, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list email templates", err)
		return
	}
	if templates == nil {
		templates = []domain.EmailTemplate{}
	}

	utils.WriteJSON(w, http.StatusOK, listResponse{
		Data: templates,
		Metadata: listMetadata{
			Total:   total,
			Page:    page,
			PerPage: limit,
			HasMore: offset+len(templates) < total,
		},
	})
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	tmpl, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req application.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tmpl, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Render previews a stored template against caller-supplied sample data.
func (h *TemplateHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req renderRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	rendered, err := h.service.Render(r.Context(), id, req.Data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rendered)
}

func (h *TemplateHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid template id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *TemplateHandler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	var renderErr *application.RenderError
	switch {
	case errors.As(err, &validationErrs):
		utils.WriteError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.As(err, &renderErr):
		utils.WriteError(w, http.StatusUnprocessableEntity, "Template rendering failed", err)
	case errors.Is(err, domain.ErrTemplateNotFound):
		utils.WriteError(w, http.StatusNotFound, "Email template not found", err)
	case errors.Is(err, domain.ErrTemplateNameTaken):
		utils.WriteError(w, http.StatusConflict, "Email template name already taken", err)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
