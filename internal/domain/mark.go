package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AllowedDurations are the accepted mark lifetimes in hours.
var AllowedDurations = []int{12, 24, 36, 48}

// DurationAllowed reports whether a mark duration is one of the allowed values.
func DurationAllowed(hours int) bool {
	for _, d := range AllowedDurations {
		if d == hours {
			return true
		}
	}
	return false
}

// Mark is a user-created, time-bounded geographic point of interest.
// Geohash is always derived from Latitude/Longitude at the configured
// precision; it must be recomputed whenever the point changes, since a stale
// cell silently breaks proximity filtering.
type Mark struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"user_id"`
	CategoryID uuid.UUID     `json:"category_id"`
	Name       string        `json:"name"`
	Info       *string       `json:"info,omitempty"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Geohash    string        `json:"geohash"`
	Photos     []string      `json:"photos,omitempty"`
	StartAt    time.Time     `json:"start_at"`
	Duration   int           `json:"duration"` // hours
	EndAt      time.Time     `json:"end_at"`
	IsEnded    bool          `json:"is_ended"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	User       *UserResponse `json:"user,omitempty"`
}

// CreateMarkParams is the persistence-level shape for a new mark.
type CreateMarkParams struct {
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Info       *string
	Latitude   float64
	Longitude  float64
	Geohash    string
	Photos     []string
	StartAt    time.Time
	Duration   int
	EndAt      time.Time
}

// UpdateMarkParams carries the fields to change; nil means keep.
type UpdateMarkParams struct {
	CategoryID *uuid.UUID
	Name       *string
	Info       *string
	Latitude   *float64
	Longitude  *float64
	Geohash    *string
	Duration   *int
	EndAt      *time.Time
}

// MarkRepository is the storage contract for marks.
type MarkRepository interface {
	CreateMark(ctx context.Context, params CreateMarkParams) (*Mark, error)
	GetMarkByID(ctx context.Context, id uuid.UUID) (*Mark, error)
	UpdateMark(ctx context.Context, id uuid.UUID, params UpdateMarkParams) (*Mark, error)
	DeleteMark(ctx context.Context, id uuid.UUID) (*Mark, error)
	MarkExists(ctx context.Context, id uuid.UUID) (bool, error)
	// GetMarksByArea returns marks in the given geohash cells whose active
	// window overlaps [minStart, maxEnd], newest first, capped at limit.
	// Radius refinement happens above this layer.
	GetMarksByArea(ctx context.Context, cells []string, minStart, maxEnd time.Time, showEnded bool, limit int) ([]*Mark, error)
}
