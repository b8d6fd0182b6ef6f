package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markpoint/backend/internal/geo"
)

func mark(lat, lon float64, precision int) *Mark {
	now := time.Now()
	return &Mark{
		Latitude:  lat,
		Longitude: lon,
		Geohash:   geo.Encode(lat, lon, precision),
		StartAt:   now,
		Duration:  24,
		EndAt:     now.Add(24 * time.Hour),
	}
}

func TestNewMarkFilterDefaults(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 0, time.Time{}, 0, false, 0)
	require.NoError(t, err)

	assert.Equal(t, float64(DefaultRadiusMeters), f.Radius)
	assert.Equal(t, DefaultLookupHours, f.Duration)
	assert.False(t, f.Date.IsZero())
	assert.Equal(t, geo.SRID, f.SRID)
	assert.Len(t, f.Neighborhood(), 9)
}

func TestNewMarkFilterClampsRadius(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 99999, time.Now(), 24, false, 5)
	require.NoError(t, err)
	assert.Equal(t, float64(MaxRadiusMeters), f.Radius)
}

func TestNewMarkFilterRejectsBadCoordinates(t *testing.T) {
	_, err := NewMarkFilter(91, 37.61, 1000, time.Now(), 24, false, 5)
	assert.Error(t, err)

	_, err = NewMarkFilter(55.75, -181, 1000, time.Now(), 24, false, 5)
	assert.Error(t, err)
}

func TestContainsNearbyMark(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 1000, time.Now(), 24, false, 5)
	require.NoError(t, err)

	// About 60 meters away, same precision-5 cell.
	m := mark(55.7505, 37.6105, 5)
	assert.True(t, f.Contains(m))
}

func TestContainsRejectsDistantMark(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 1000, time.Now(), 24, false, 5)
	require.NoError(t, err)

	// Saint Petersburg is hundreds of kilometers from Moscow.
	m := mark(59.93, 30.33, 5)
	assert.False(t, f.Contains(m))
}

func TestContainsRejectsOutsideRadiusInsideCell(t *testing.T) {
	// A precision-5 cell is roughly 4.9 x 4.9 km; a 100 m radius viewer must
	// reject marks that share the cell but sit beyond the radius.
	f, err := NewMarkFilter(55.75, 37.61, 100, time.Now(), 24, false, 5)
	require.NoError(t, err)

	m := mark(55.76, 37.61, 5)
	if _, inCell := f.neighborhood[m.Geohash]; inCell {
		assert.False(t, f.Contains(m), "mark beyond radius must fail the distance stage")
	}
}

func TestContainsNilMark(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 1000, time.Now(), 24, false, 5)
	require.NoError(t, err)
	assert.False(t, f.Contains(nil))
}

func TestContainsMalformedMarkCoordinates(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 1000, time.Now(), 24, false, 5)
	require.NoError(t, err)

	// Corrupted row: plausible geohash, impossible coordinates.
	m := mark(55.75, 37.61, 5)
	m.Latitude = 200

	assert.False(t, f.Contains(m))
}

func TestContainsGeohashStageGatesDistanceStage(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 1000, time.Now(), 24, false, 5)
	require.NoError(t, err)

	// Same point, but a geohash from a far-away cell: stage one must reject
	// regardless of the true distance being zero.
	m := mark(55.75, 37.61, 5)
	m.Geohash = geo.Encode(-10, -10, 5)

	assert.False(t, f.Contains(m))
}

func TestLookupWindowBounds(t *testing.T) {
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f, err := NewMarkFilter(55.75, 37.61, 1000, date, 24, false, 5)
	require.NoError(t, err)

	assert.Equal(t, date.Add(-24*time.Hour), f.MinStart())
	assert.Equal(t, date.Add(24*time.Hour), f.MaxEnd())
}

func TestNeighborhoodContainsOwnCell(t *testing.T) {
	f, err := NewMarkFilter(55.75, 37.61, 1000, time.Now(), 24, false, 5)
	require.NoError(t, err)

	own := geo.Encode(55.75, 37.61, 5)
	assert.Contains(t, f.Neighborhood(), own)
}
