package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markpoint/backend/internal/geo"
	"github.com/markpoint/backend/pkg/validator"
)

// MarkService governs mark create/update/delete and the nearby query. Every
// successful mutation triggers exactly one event publish; the publisher is
// responsible for not blocking the write path.
type MarkService struct {
	marks      MarkRepository
	categories CategoryRepository
	events     MarkEventPublisher
	precision  int
	editWindow time.Duration
	maxResults int
}

func NewMarkService(marks MarkRepository, categories CategoryRepository, events MarkEventPublisher, precision int, editWindow time.Duration, maxResults int) *MarkService {
	if precision <= 0 {
		precision = geo.DefaultPrecision
	}
	if editWindow <= 0 {
		editWindow = 2 * time.Hour
	}
	if maxResults <= 0 {
		maxResults = 500
	}
	return &MarkService{
		marks:      marks,
		categories: categories,
		events:     events,
		precision:  precision,
		editWindow: editWindow,
		maxResults: maxResults,
	}
}

type CreateMarkInput struct {
	CategoryID uuid.UUID
	Name       string
	Info       *string
	Latitude   float64
	Longitude  float64
	Photos     []string
	StartAt    time.Time
	Duration   int
	// BaseURL is the request base used to resolve photo URLs in the push
	// payload; optional.
	BaseURL string
}

type UpdateMarkInput struct {
	CategoryID *uuid.UUID
	Name       *string
	Info       *string
	Latitude   *float64
	Longitude  *float64
	Duration   *int
	BaseURL    string
}

func (s *MarkService) CreateMark(ctx context.Context, userID uuid.UUID, input CreateMarkInput) (*Mark, error) {
	var errs validator.ValidationErrors
	if strings.TrimSpace(input.Name) == "" {
		errs.Add("name", "must not be empty")
	}
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		errs.Add("coordinates", "latitude must be in [-90,90] and longitude in [-180,180]")
	}
	if !DurationAllowed(input.Duration) {
		errs.Add("duration", "must be one of 12, 24, 36, 48")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	exists, err := s.categories.CategoryExists(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	startAt := input.StartAt
	if startAt.IsZero() {
		startAt = time.Now()
	}

	mark, err := s.marks.CreateMark(ctx, CreateMarkParams{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Name:       strings.TrimSpace(input.Name),
		Info:       input.Info,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Geohash:    geo.Encode(input.Latitude, input.Longitude, s.precision),
		Photos:     input.Photos,
		StartAt:    startAt,
		Duration:   input.Duration,
		EndAt:      startAt.Add(time.Duration(input.Duration) * time.Hour),
	})
	if err != nil {
		return nil, err
	}

	s.publish(MarkActionCreated, mark, userID, input.BaseURL)
	return mark, nil
}

func (s *MarkService) UpdateMark(ctx context.Context, userID, markID uuid.UUID, input UpdateMarkInput) (*Mark, error) {
	mark, err := s.marks.GetMarkByID(ctx, markID)
	if err != nil {
		return nil, err
	}
	if mark.UserID != userID {
		return nil, ErrNotMarkOwner
	}
	if time.Since(mark.CreatedAt) > s.editWindow {
		return nil, ErrEditWindowExpired
	}

	var errs validator.ValidationErrors
	if (input.Latitude == nil) != (input.Longitude == nil) {
		errs.Add("coordinates", "latitude and longitude must be supplied together")
	}
	if input.Latitude != nil && input.Longitude != nil && !geo.ValidCoordinates(*input.Latitude, *input.Longitude) {
		errs.Add("coordinates", "latitude must be in [-90,90] and longitude in [-180,180]")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		errs.Add("name", "must not be empty")
	}
	if input.Duration != nil && !DurationAllowed(*input.Duration) {
		errs.Add("duration", "must be one of 12, 24, 36, 48")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	if input.CategoryID != nil {
		exists, err := s.categories.CategoryExists(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCategoryNotFound
		}
	}

	params := UpdateMarkParams{
		CategoryID: input.CategoryID,
		Name:       input.Name,
		Info:       input.Info,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Duration:   input.Duration,
	}

	// The point moved, so the cell must move with it.
	if input.Latitude != nil && input.Longitude != nil {
		cell := geo.Encode(*input.Latitude, *input.Longitude, s.precision)
		params.Geohash = &cell
	}
	if input.Duration != nil {
		endAt := mark.StartAt.Add(time.Duration(*input.Duration) * time.Hour)
		params.EndAt = &endAt
	}

	updated, err := s.marks.UpdateMark(ctx, markID, params)
	if err != nil {
		return nil, err
	}

	s.publish(MarkActionUpdated, updated, userID, input.BaseURL)
	return updated, nil
}

func (s *MarkService) DeleteMark(ctx context.Context, userID, markID uuid.UUID) (*Mark, error) {
	mark, err := s.marks.GetMarkByID(ctx, markID)
	if err != nil {
		return nil, err
	}
	if mark.UserID != userID {
		return nil, ErrNotMarkOwner
	}

	deleted, err := s.marks.DeleteMark(ctx, markID)
	if err != nil {
		return nil, err
	}

	s.publish(MarkActionDeleted, deleted, userID, "")
	return deleted, nil
}

func (s *MarkService) GetMark(ctx context.Context, markID uuid.UUID) (*Mark, error) {
	return s.marks.GetMarkByID(ctx, markID)
}

// GetMarks runs the two-stage spatial query for a viewer: the repository
// narrows by geohash neighborhood and time window, then the exact distance
// check trims the candidates to the viewer's radius.
func (s *MarkService) GetMarks(ctx context.Context, filter *MarkFilter) ([]*Mark, error) {
	candidates, err := s.marks.GetMarksByArea(ctx, filter.Neighborhood(), filter.MinStart(), filter.MaxEnd(), filter.ShowEnded, s.maxResults)
	if err != nil {
		return nil, err
	}

	marks := make([]*Mark, 0, len(candidates))
	for _, m := range candidates {
		if filter.Contains(m) {
			marks = append(marks, m)
		}
	}
	return marks, nil
}

// NewFilter builds a viewer filter at the service's geohash precision.
func (s *MarkService) NewFilter(lat, lon, radius float64, date time.Time, durationHours int, showEnded bool) (*MarkFilter, error) {
	return NewMarkFilter(lat, lon, radius, date, durationHours, showEnded, s.precision)
}

func (s *MarkService) publish(action MarkAction, mark *Mark, actorID uuid.UUID, baseURL string) {
	if s.events == nil {
		return
	}
	s.events.PublishMarkEvent(MarkEvent{
		Action:  action,
		Mark:    mark,
		ActorID: actorID,
		BaseURL: baseURL,
	})
}
