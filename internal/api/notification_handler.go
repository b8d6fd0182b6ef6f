package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/middleware"
	"github.com/markpoint/backend/pkg/response"
)

// NotificationHandler handles notification history and device tokens
type NotificationHandler struct {
	notificationService *domain.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *domain.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

type UpdateFCMTokenRequest struct {
	Token string `json:"token"`
}

// GetNotifications lists the caller's notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	notifications, err := h.notificationService.GetNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("get notifications failed", zap.Error(err))
		response.InternalError(w, "failed to get notifications")
		return
	}

	response.OK(w, notifications)
}

// MarkRead flags a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "notificationId"))
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), userID, notificationID); err != nil {
		h.logger.Error("mark read failed", zap.Error(err))
		response.InternalError(w, "failed to mark notification read")
		return
	}

	response.NoContent(w)
}

// UpdateFCMToken stores the caller's device push token
func (h *NotificationHandler) UpdateFCMToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req UpdateFCMTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Token == "" {
		response.BadRequest(w, "token is required")
		return
	}

	if err := h.notificationService.UpdateFCMToken(r.Context(), userID, req.Token); err != nil {
		h.logger.Error("update fcm token failed", zap.Error(err))
		response.InternalError(w, "failed to update token")
		return
	}

	response.NoContent(w)
}
