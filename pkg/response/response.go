package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/pkg/validator"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string                     `json:"code"`
	Message string                     `json:"message"`
	Fields  validator.ValidationErrors `json:"fields,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// ValidationFailed sends a 400 with per-field details.
func ValidationFailed(w http.ResponseWriter, errs validator.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	response := Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    "VALIDATION_ERROR",
			Message: errs.Error(),
			Fields:  errs,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// DomainError maps the domain error taxonomy onto HTTP statuses. The edit
// window expiry gets its own code so clients can tell "too late" apart from
// "not found" and "not yours".
func DomainError(w http.ResponseWriter, err error) bool {
	var errs validator.ValidationErrors
	switch {
	case errors.As(err, &errs):
		ValidationFailed(w, errs)
	case errors.Is(err, domain.ErrMarkNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrChatNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, domain.ErrNotMarkOwner),
		errors.Is(err, domain.ErrNotCommentOwner),
		errors.Is(err, domain.ErrNotChatParticipant):
		Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrEditWindowExpired):
		Error(w, http.StatusBadRequest, "EDIT_WINDOW_EXPIRED", err.Error())
	case errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrEmailTaken):
		Conflict(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenRevoked):
		Unauthorized(w, err.Error())
	default:
		return false
	}
	return true
}

// BadRequest sends a 400 response
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized sends a 401 response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden sends a 403 response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound sends a 404 response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

// Conflict sends a 409 response
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

// InternalError sends a 500 response
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// Created sends a 201 response with data
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 response with data
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// NoContent sends a 204 response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
