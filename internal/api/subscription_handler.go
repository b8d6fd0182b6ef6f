package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/middleware"
	"github.com/markpoint/backend/pkg/response"
)

// SubscriptionHandler handles plan listing and subscription lifecycle
type SubscriptionHandler struct {
	subscriptionService *domain.SubscriptionService
	logger              *zap.Logger
}

func NewSubscriptionHandler(subscriptionService *domain.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

type SubscribeRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

// GetPlans lists available plans
func (h *SubscriptionHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subscriptionService.GetPlans(r.Context())
	if err != nil {
		h.logger.Error("get plans failed", zap.Error(err))
		response.InternalError(w, "failed to get plans")
		return
	}

	response.OK(w, plans)
}

// Subscribe charges the caller for a plan and activates the subscription
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.PlanID == uuid.Nil {
		response.BadRequest(w, "plan_id is required")
		return
	}

	sub, err := h.subscriptionService.Subscribe(r.Context(), userID, req.PlanID)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("subscribe failed", zap.Error(err))
		response.InternalError(w, "failed to subscribe")
		return
	}

	response.Created(w, sub)
}

// Current returns the caller's active subscription
func (h *SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	sub, err := h.subscriptionService.Current(r.Context(), userID)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("get subscription failed", zap.Error(err))
		response.InternalError(w, "failed to get subscription")
		return
	}

	response.OK(w, sub)
}

// Cancel ends the caller's active subscription
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.subscriptionService.Cancel(r.Context(), userID); err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("cancel subscription failed", zap.Error(err))
		response.InternalError(w, "failed to cancel subscription")
		return
	}

	response.NoContent(w)
}
