package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
	"github.com/markpoint/backend/pkg/response"
)

// CategoryHandler serves the category catalog
type CategoryHandler struct {
	categories domain.CategoryRepository
	logger     *zap.Logger
}

func NewCategoryHandler(categories domain.CategoryRepository, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		logger:     logger,
	}
}

// GetCategories lists all categories
func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetCategories(r.Context())
	if err != nil {
		h.logger.Error("get categories failed", zap.Error(err))
		response.InternalError(w, "failed to get categories")
		return
	}

	response.OK(w, categories)
}
