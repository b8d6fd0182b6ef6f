package domain

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markpoint/backend/internal/geo"
)

// fakeMarkRepo is an in-memory MarkRepository for service tests.
type fakeMarkRepo struct {
	marks   map[uuid.UUID]*Mark
	updates int
}

func newFakeMarkRepo() *fakeMarkRepo {
	return &fakeMarkRepo{marks: make(map[uuid.UUID]*Mark)}
}

func (r *fakeMarkRepo) CreateMark(ctx context.Context, params CreateMarkParams) (*Mark, error) {
	now := time.Now()
	m := &Mark{
		ID:         uuid.New(),
		UserID:     params.UserID,
		CategoryID: params.CategoryID,
		Name:       params.Name,
		Info:       params.Info,
		Latitude:   params.Latitude,
		Longitude:  params.Longitude,
		Geohash:    params.Geohash,
		Photos:     params.Photos,
		StartAt:    params.StartAt,
		Duration:   params.Duration,
		EndAt:      params.EndAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.marks[m.ID] = m
	return m, nil
}

func (r *fakeMarkRepo) GetMarkByID(ctx context.Context, id uuid.UUID) (*Mark, error) {
	m, ok := r.marks[id]
	if !ok {
		return nil, ErrMarkNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMarkRepo) UpdateMark(ctx context.Context, id uuid.UUID, params UpdateMarkParams) (*Mark, error) {
	m, ok := r.marks[id]
	if !ok {
		return nil, ErrMarkNotFound
	}
	r.updates++
	if params.CategoryID != nil {
		m.CategoryID = *params.CategoryID
	}
	if params.Name != nil {
		m.Name = *params.Name
	}
	if params.Info != nil {
		m.Info = params.Info
	}
	if params.Latitude != nil {
		m.Latitude = *params.Latitude
	}
	if params.Longitude != nil {
		m.Longitude = *params.Longitude
	}
	if params.Geohash != nil {
		m.Geohash = *params.Geohash
	}
	if params.Duration != nil {
		m.Duration = *params.Duration
	}
	if params.EndAt != nil {
		m.EndAt = *params.EndAt
	}
	m.UpdatedAt = time.Now()
	copied := *m
	return &copied, nil
}

func (r *fakeMarkRepo) DeleteMark(ctx context.Context, id uuid.UUID) (*Mark, error) {
	m, ok := r.marks[id]
	if !ok {
		return nil, ErrMarkNotFound
	}
	delete(r.marks, id)
	return m, nil
}

func (r *fakeMarkRepo) MarkExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.marks[id]
	return ok, nil
}

func (r *fakeMarkRepo) GetMarksByArea(ctx context.Context, cells []string, minStart, maxEnd time.Time, showEnded bool, limit int) ([]*Mark, error) {
	cellSet := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		cellSet[c] = struct{}{}
	}

	var out []*Mark
	for _, m := range r.marks {
		if _, ok := cellSet[m.Geohash]; !ok {
			continue
		}
		if m.StartAt.After(maxEnd) || m.EndAt.Before(minStart) {
			continue
		}
		if !showEnded && m.IsEnded {
			continue
		}
		copied := *m
		out = append(out, &copied)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	known map[uuid.UUID]bool
}

func (r *fakeCategoryRepo) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.known[id], nil
}

func (r *fakeCategoryRepo) GetCategories(ctx context.Context) ([]*Category, error) {
	return nil, nil
}

type capturedEvents struct {
	events []MarkEvent
}

func (p *capturedEvents) PublishMarkEvent(event MarkEvent) {
	p.events = append(p.events, event)
}

func newTestMarkService(t *testing.T) (*MarkService, *fakeMarkRepo, *fakeCategoryRepo, *capturedEvents) {
	t.Helper()
	repo := newFakeMarkRepo()
	categories := &fakeCategoryRepo{known: make(map[uuid.UUID]bool)}
	events := &capturedEvents{}
	svc := NewMarkService(repo, categories, events, 5, 2*time.Hour, 500)
	return svc, repo, categories, events
}

func validCreateInput(categoryID uuid.UUID) CreateMarkInput {
	return CreateMarkInput{
		CategoryID: categoryID,
		Name:       "Street food festival",
		Latitude:   55.75,
		Longitude:  37.61,
		Duration:   24,
	}
}

func TestCreateMark(t *testing.T) {
	svc, _, categories, events := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)

	assert.Equal(t, userID, mark.UserID)
	assert.Equal(t, geo.Encode(55.75, 37.61, 5), mark.Geohash)
	assert.Equal(t, mark.StartAt.Add(24*time.Hour), mark.EndAt)

	require.Len(t, events.events, 1)
	assert.Equal(t, MarkActionCreated, events.events[0].Action)
	assert.Equal(t, mark.ID, events.events[0].Mark.ID)
}

func TestCreateMarkValidation(t *testing.T) {
	svc, repo, categories, events := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true

	cases := map[string]func(*CreateMarkInput){
		"empty name":    func(in *CreateMarkInput) { in.Name = "  " },
		"bad latitude":  func(in *CreateMarkInput) { in.Latitude = 91 },
		"bad longitude": func(in *CreateMarkInput) { in.Longitude = 181 },
		"bad duration":  func(in *CreateMarkInput) { in.Duration = 13 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validCreateInput(categoryID)
			mutate(&input)
			_, err := svc.CreateMark(context.Background(), uuid.New(), input)
			assert.Error(t, err)
		})
	}

	assert.Empty(t, repo.marks, "invalid input must not persist anything")
	assert.Empty(t, events.events, "invalid input must not publish events")
}

func TestCreateMarkUnknownCategory(t *testing.T) {
	svc, _, _, _ := newTestMarkService(t)

	_, err := svc.CreateMark(context.Background(), uuid.New(), validCreateInput(uuid.New()))
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateMarkNotOwner(t *testing.T) {
	svc, _, categories, events := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true

	mark, err := svc.CreateMark(context.Background(), uuid.New(), validCreateInput(categoryID))
	require.NoError(t, err)
	events.events = nil

	name := "hijacked"
	_, err = svc.UpdateMark(context.Background(), uuid.New(), mark.ID, UpdateMarkInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotMarkOwner)
	assert.Empty(t, events.events)
}

func TestUpdateMarkEditWindowExpired(t *testing.T) {
	svc, repo, categories, _ := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)

	// Age the mark past the two hour window.
	repo.marks[mark.ID].CreatedAt = time.Now().Add(-3 * time.Hour)

	name := "too late"
	_, err = svc.UpdateMark(context.Background(), userID, mark.ID, UpdateMarkInput{Name: &name})
	assert.ErrorIs(t, err, ErrEditWindowExpired)
}

func TestUpdateMarkPairedCoordinates(t *testing.T) {
	svc, repo, categories, _ := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)

	lat := 56.0
	_, err = svc.UpdateMark(context.Background(), userID, mark.ID, UpdateMarkInput{Latitude: &lat})
	assert.Error(t, err, "latitude without longitude must be rejected")
	assert.Zero(t, repo.updates, "rejected update must not touch storage")
}

func TestUpdateMarkRecomputesGeohash(t *testing.T) {
	svc, _, categories, events := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)
	events.events = nil

	lat, lon := 48.85, 2.35
	updated, err := svc.UpdateMark(context.Background(), userID, mark.ID, UpdateMarkInput{
		Latitude:  &lat,
		Longitude: &lon,
	})
	require.NoError(t, err)

	assert.Equal(t, geo.Encode(lat, lon, 5), updated.Geohash)
	require.Len(t, events.events, 1)
	assert.Equal(t, MarkActionUpdated, events.events[0].Action)
}

func TestUpdateMarkDurationRecomputesEndAt(t *testing.T) {
	svc, _, categories, _ := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)

	duration := 48
	updated, err := svc.UpdateMark(context.Background(), userID, mark.ID, UpdateMarkInput{Duration: &duration})
	require.NoError(t, err)

	assert.Equal(t, mark.StartAt.Add(48*time.Hour), updated.EndAt)
}

func TestDeleteMark(t *testing.T) {
	svc, repo, categories, events := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)
	events.events = nil

	_, err = svc.DeleteMark(context.Background(), uuid.New(), mark.ID)
	assert.ErrorIs(t, err, ErrNotMarkOwner)

	_, err = svc.DeleteMark(context.Background(), userID, mark.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.marks)

	require.Len(t, events.events, 1)
	assert.Equal(t, MarkActionDeleted, events.events[0].Action)
}

func TestGetMarksRefinesByRadius(t *testing.T) {
	svc, _, categories, _ := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	near := validCreateInput(categoryID)
	near.Name = "near"
	near.Latitude, near.Longitude = 55.7505, 37.6105
	_, err := svc.CreateMark(context.Background(), userID, near)
	require.NoError(t, err)

	far := validCreateInput(categoryID)
	far.Name = "far"
	far.Latitude, far.Longitude = 59.93, 30.33
	_, err = svc.CreateMark(context.Background(), userID, far)
	require.NoError(t, err)

	filter, err := svc.NewFilter(55.75, 37.61, 1000, time.Now(), 24, false)
	require.NoError(t, err)

	marks, err := svc.GetMarks(context.Background(), filter)
	require.NoError(t, err)

	require.Len(t, marks, 1)
	assert.Equal(t, "near", marks[0].Name)
}

func TestGetMarksRespectsTimeWindow(t *testing.T) {
	svc, repo, categories, _ := newTestMarkService(t)
	categoryID := uuid.New()
	categories.known[categoryID] = true
	userID := uuid.New()

	mark, err := svc.CreateMark(context.Background(), userID, validCreateInput(categoryID))
	require.NoError(t, err)

	// Shift the mark entirely before the viewer's window.
	repo.marks[mark.ID].StartAt = time.Now().Add(-80 * time.Hour)
	repo.marks[mark.ID].EndAt = time.Now().Add(-56 * time.Hour)

	filter, err := svc.NewFilter(55.75, 37.61, 1000, time.Now(), 24, false)
	require.NoError(t, err)

	marks, err := svc.GetMarks(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, marks)
}
