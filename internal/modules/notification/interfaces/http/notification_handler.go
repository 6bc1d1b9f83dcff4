package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/gateway/middleware"
	"github.com/notifeed/notifeed/internal/modules/notification/application"
	"github.com/notifeed/notifeed/internal/modules/notification/domain"
	"github.com/notifeed/notifeed/internal/modules/notification/infrastructure/websocket"
	"github.com/notifeed/notifeed/internal/shared/utils"
	"github.com/notifeed/notifeed/pkg/feed"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	recentLimit     = 5
)

type NotificationHandler struct {
	service  *application.NotificationService
	hub      *websocket.Hub
	validate *validator.Validate
}

func NewNotificationHandler(service *application.NotificationService, hub *websocket.Hub) *NotificationHandler {
	return &NotificationHandler{
		service:  service,
		hub:      hub,
		validate: validator.New(),
	}
}

type createNotificationRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Message string    `json:"message" validate:"required"`
	Type    string    `json:"type" validate:"required,oneof=welcome security system report feature maintenance urgent info"`
	Link    *string   `json:"link,omitempty" validate:"omitempty,url"`
}

type idsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type sendDigestRequest struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	TemplateID uuid.UUID `json:"template_id" validate:"required"`
}

type listMetadata struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasMore bool `json:"has_more"`
}

type listResponse struct {
	Data     []domain.Notification `json:"data"`
	Metadata listMetadata          `json:"metadata"`
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	websocket.ServeWs(h.hub, w, r, userID)
}

// List serves one filtered page. Filter criteria come straight from the
// shared feed query contract; page and limit ride alongside.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	query := r.URL.Query()
	filters := feed.ParseQuery(query)

	page := 1
	limit := defaultPageSize
	if p := query.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := query.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= maxPageSize {
			limit = v
		}
	}
	offset := (page - 1) * limit

	notifications, total, err := h.service.List(r.Context(), userID, filters, limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch notifications", err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	utils.WriteJSON(w, http.StatusOK, listResponse{
		Data: notifications,
		Metadata: listMetadata{
			Total:   total,
			Page:    page,
			PerPage: limit,
			HasMore: offset+len(notifications) < total,
		},
	})
}

// Recent serves the unfiltered newest-first window used by the dropdown.
func (h *NotificationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit := recentLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= maxPageSize {
			limit = v
		}
	}

	notifications, err := h.service.Recent(r.Context(), userID, limit)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch recent notifications", err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	utils.WriteJSON(w, http.StatusOK, listResponse{
		Data: notifications,
		Metadata: listMetadata{
			Total:   len(notifications),
			Page:    1,
			PerPage: limit,
			HasMore: false,
		},
	})
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	notification, err := h.service.Create(r.Context(), req.UserID, req.Message, req.Type, req.Link)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to create notification", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, notification)
}

// SendDigest queues an email digest of a user's unread notifications.
func (h *NotificationHandler) SendDigest(w http.ResponseWriter, r *http.Request) {
	var req sendDigestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := h.service.SendDigest(r.Context(), req.UserID, req.TemplateID); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to schedule digest", err)
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.MarkAsRead(r.Context(), notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notification as read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkManyAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := h.service.MarkManyAsRead(r.Context(), req.IDs, userID); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notifications as read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark all notifications as read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.Delete(r.Context(), notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := h.service.DeleteMany(r.Context(), req.IDs, userID); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete notifications", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to get unread count", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}
