package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a lookup value marks are tagged with.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      *string   `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryRepository interface {
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetCategories(ctx context.Context) ([]*Category, error)
}
