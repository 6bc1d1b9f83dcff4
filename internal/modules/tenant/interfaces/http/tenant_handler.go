package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/tenant/application"
	"github.com/notifeed/notifeed/internal/modules/tenant/domain"
	"github.com/notifeed/notifeed/internal/shared/utils"
)

const defaultPageSize = 20

type TenantHandler struct {
	service *application.TenantService
}

func NewTenantHandler(service *application.TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

type listMetadata struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasMore bool `json:"has_more"`
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req application.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	company, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, company)
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.CompanyFilter{
		Search: query.Get("search"),
		Plan:   domain.Plan(query.Get("plan")),
	}
	if a := query.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			filter.Active = &v
		}
	}

	page := 1
	limit := defaultPageSize
	if p := query.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := query.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	offset := (page - 1) * limit

	companies, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to list companies", err)
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"data": companies,
		"metadata": listMetadata{
			Total:   total,
			Page:    page,
			PerPage: limit,
			HasMore: offset+len(companies) < total,
		},
	})
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}

	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, company)
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}

	var req application.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	company, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, company)
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}

	var req application.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	member, err := h.service.AddMember(r.Context(), companyID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, member)
}

func (h *TenantHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}

	members, err := h.service.ListMembers(r.Context(), companyID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to list members", err)
		return
	}
	if members == nil {
		members = []domain.Member{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": members})
}

func (h *TenantHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id", err)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.UpdateMemberRole(r.Context(), companyID, userID, domain.MemberRole(req.Role)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid company id", err)
		return
	}
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if err := h.service.RemoveMember(r.Context(), companyID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		utils.WriteError(w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, application.ErrInvalidMemberRole):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrCompanyNotFound), errors.Is(err, domain.ErrMemberNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrSlugTaken), errors.Is(err, domain.ErrMemberAlreadyExists):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal error", err)
	}
}
