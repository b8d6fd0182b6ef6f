package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/internal/middleware"
	"github.com/markpoint/backend/internal/storage"
	"github.com/markpoint/backend/pkg/response"
	"github.com/markpoint/backend/pkg/validator"
)

// MarkHandler handles mark CRUD and the nearby query
type MarkHandler struct {
	markService *domain.MarkService
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

func NewMarkHandler(markService *domain.MarkService, fileStorage storage.FileStorage, logger *zap.Logger) *MarkHandler {
	return &MarkHandler{
		markService: markService,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

type CreateMarkRequest struct {
	CategoryID uuid.UUID  `json:"category_id" validate:"required"`
	Name       string     `json:"name" validate:"required"`
	Info       *string    `json:"info,omitempty"`
	Latitude   float64    `json:"latitude" validate:"latitude"`
	Longitude  float64    `json:"longitude" validate:"longitude"`
	Photos     []string   `json:"photos,omitempty"`
	StartAt    *time.Time `json:"start_at,omitempty"`
	Duration   int        `json:"duration" validate:"required,oneof=12 24 36 48"`
}

type UpdateMarkRequest struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Name       *string    `json:"name,omitempty"`
	Info       *string    `json:"info,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Duration   *int       `json:"duration,omitempty"`
}

// CreateMark handles creating a new mark
func (h *MarkHandler) CreateMark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req CreateMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Struct(&req); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	input := domain.CreateMarkInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Info:       req.Info,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Photos:     req.Photos,
		Duration:   req.Duration,
		BaseURL:    requestBaseURL(r),
	}
	if req.StartAt != nil {
		input.StartAt = *req.StartAt
	}

	mark, err := h.markService.CreateMark(r.Context(), userID, input)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("create mark failed", zap.Error(err))
		response.InternalError(w, "failed to create mark")
		return
	}

	response.Created(w, mark)
}

// GetMarks runs the nearby query for the viewer's area and time window
func (h *MarkHandler) GetMarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		response.BadRequest(w, "lat and lon are required")
		return
	}

	radius, _ := strconv.ParseFloat(q.Get("radius"), 64)
	duration, _ := strconv.Atoi(q.Get("duration"))
	showEnded, _ := strconv.ParseBool(q.Get("show_ended"))

	var date time.Time
	if dateStr := q.Get("date"); dateStr != "" {
		parsed, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			response.BadRequest(w, "date must be RFC 3339")
			return
		}
		date = parsed
	}

	filter, err := h.markService.NewFilter(lat, lon, radius, date, duration, showEnded)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	marks, err := h.markService.GetMarks(r.Context(), filter)
	if err != nil {
		h.logger.Error("get marks failed", zap.Error(err))
		response.InternalError(w, "failed to get marks")
		return
	}

	response.OK(w, marks)
}

// GetMark returns a single mark by ID
func (h *MarkHandler) GetMark(w http.ResponseWriter, r *http.Request) {
	markID, err := uuid.Parse(chi.URLParam(r, "markId"))
	if err != nil {
		response.BadRequest(w, "invalid mark id")
		return
	}

	mark, err := h.markService.GetMark(r.Context(), markID)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("get mark failed", zap.Error(err))
		response.InternalError(w, "failed to get mark")
		return
	}

	response.OK(w, mark)
}

// UpdateMark applies a partial update to an owned mark
func (h *MarkHandler) UpdateMark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	markID, err := uuid.Parse(chi.URLParam(r, "markId"))
	if err != nil {
		response.BadRequest(w, "invalid mark id")
		return
	}

	var req UpdateMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	mark, err := h.markService.UpdateMark(r.Context(), userID, markID, domain.UpdateMarkInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Info:       req.Info,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Duration:   req.Duration,
		BaseURL:    requestBaseURL(r),
	})
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("update mark failed", zap.Error(err))
		response.InternalError(w, "failed to update mark")
		return
	}

	response.OK(w, mark)
}

// DeleteMark removes an owned mark
func (h *MarkHandler) DeleteMark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	markID, err := uuid.Parse(chi.URLParam(r, "markId"))
	if err != nil {
		response.BadRequest(w, "invalid mark id")
		return
	}

	if _, err := h.markService.DeleteMark(r.Context(), userID, markID); err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("delete mark failed", zap.Error(err))
		response.InternalError(w, "failed to delete mark")
		return
	}

	response.NoContent(w)
}

// UploadPhoto stores an image and returns the reference to attach to a mark
func (h *MarkHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.BadRequest(w, "invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file")
		return
	}
	defer file.Close()

	ref, err := h.fileStorage.SaveFile(r.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("photo upload failed", zap.Error(err))
		response.InternalError(w, "failed to upload photo")
		return
	}

	response.Created(w, map[string]string{"url": ref})
}

// requestBaseURL reconstructs the externally visible base URL of a request
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
