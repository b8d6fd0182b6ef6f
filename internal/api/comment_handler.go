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

// CommentHandler handles comments and reactions on marks
type CommentHandler struct {
	commentService *domain.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService *domain.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

type ReactRequest struct {
	Kind string `json:"kind"`
}

// AddComment posts a comment on a mark
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
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

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	comment, err := h.commentService.AddComment(r.Context(), userID, markID, req.Text)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("add comment failed", zap.Error(err))
		response.InternalError(w, "failed to add comment")
		return
	}

	response.Created(w, comment)
}

// GetComments lists a mark's comments
func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	markID, err := uuid.Parse(chi.URLParam(r, "markId"))
	if err != nil {
		response.BadRequest(w, "invalid mark id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	comments, err := h.commentService.GetComments(r.Context(), markID, limit, offset)
	if err != nil {
		h.logger.Error("get comments failed", zap.Error(err))
		response.InternalError(w, "failed to get comments")
		return
	}

	response.OK(w, comments)
}

// DeleteComment removes an owned comment
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "commentId"))
	if err != nil {
		response.BadRequest(w, "invalid comment id")
		return
	}

	if err := h.commentService.DeleteComment(r.Context(), userID, commentID); err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("delete comment failed", zap.Error(err))
		response.InternalError(w, "failed to delete comment")
		return
	}

	response.NoContent(w)
}

// React sets the caller's reaction on a mark
func (h *CommentHandler) React(w http.ResponseWriter, r *http.Request) {
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

	var req ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	reaction, err := h.commentService.React(r.Context(), userID, markID, req.Kind)
	if err != nil {
		if response.DomainError(w, err) {
			return
		}
		h.logger.Error("react failed", zap.Error(err))
		response.InternalError(w, "failed to react")
		return
	}

	response.OK(w, reaction)
}

// Unreact removes the caller's reaction from a mark
func (h *CommentHandler) Unreact(w http.ResponseWriter, r *http.Request) {
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

	if err := h.commentService.Unreact(r.Context(), userID, markID); err != nil {
		h.logger.Error("unreact failed", zap.Error(err))
		response.InternalError(w, "failed to remove reaction")
		return
	}

	response.NoContent(w)
}

// ReactionCounts returns per-kind reaction totals for a mark
func (h *CommentHandler) ReactionCounts(w http.ResponseWriter, r *http.Request) {
	markID, err := uuid.Parse(chi.URLParam(r, "markId"))
	if err != nil {
		response.BadRequest(w, "invalid mark id")
		return
	}

	counts, err := h.commentService.ReactionCounts(r.Context(), markID)
	if err != nil {
		h.logger.Error("reaction counts failed", zap.Error(err))
		response.InternalError(w, "failed to get reactions")
		return
	}

	response.OK(w, counts)
}
