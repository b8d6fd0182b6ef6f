package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/middleware"
	"github.com/markpoint/backend/pkg/response"
	"github.com/markpoint/backend/pkg/validator"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *domain.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *domain.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		response.InternalError(w, "registration failed")
		return
	}

	response.Created(w, result)
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		response.InternalError(w, "login failed")
		return
	}

	response.OK(w, result)
}

// GoogleLogin handles Google ID token exchange
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	result, err := h.authService.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("google login failed", zap.Error(err))
		response.InternalError(w, "google login failed")
		return
	}

	response.OK(w, result)
}

// Refresh handles token refresh with rotation
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("token refresh failed", zap.Error(err))
		response.InternalError(w, "token refresh failed")
		return
	}

	response.OK(w, result)
}

// Logout revokes the presented refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		// Token may already be revoked; logout still succeeds.
		h.logger.Warn("logout failed", zap.Error(err))
	}

	response.NoContent(w)
}

// LogoutAll revokes every refresh token of the authenticated user
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.authService.LogoutAll(r.Context(), userID); err != nil {
		h.logger.Error("logout all failed", zap.Error(err))
		response.InternalError(w, "logout failed")
		return
	}

	response.NoContent(w)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		response.InternalError(w, "failed to get user")
		return
	}

	response.OK(w, user.ToResponse())
}
