package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownVectors(t *testing.T) {
	tests := []struct {
		name      string
		lat, lon  float64
		precision int
		want      string
	}{
		{"jutland", 57.64911, 10.40744, 11, "u4pruydqqvj"},
		{"leon", 42.6, -5.6, 5, "ezs42"},
		{"jutland short", 57.64911, 10.40744, 5, "u4pru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.lat, tt.lon, tt.precision))
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	for _, p := range []struct{ lat, lon float64 }{
		{55.75, 37.61}, {0, 0}, {-33.865, 151.209}, {89.9, -179.9},
	} {
		a := Encode(p.lat, p.lon, DefaultPrecision)
		b := Encode(p.lat, p.lon, DefaultPrecision)
		assert.Equal(t, a, b)
		assert.Len(t, a, DefaultPrecision)
	}
}

func TestEncodePrefixProperty(t *testing.T) {
	long := Encode(55.75, 37.61, 11)
	short := Encode(55.75, 37.61, 5)
	assert.Equal(t, long[:5], short)
}

func TestBoundsContainPoint(t *testing.T) {
	lat, lon := 55.75, 37.61
	cell := Encode(lat, lon, DefaultPrecision)

	minLat, minLon, maxLat, maxLon := Bounds(cell)
	assert.LessOrEqual(t, minLat, lat)
	assert.GreaterOrEqual(t, maxLat, lat)
	assert.LessOrEqual(t, minLon, lon)
	assert.GreaterOrEqual(t, maxLon, lon)
}

func TestNeighborsDistinct(t *testing.T) {
	cells := []string{
		Encode(55.75, 37.61, 5),
		Encode(42.6, -5.6, 5),
		Encode(-33.865, 151.209, 5),
		Encode(0.01, 0.01, 5),
	}

	for _, cell := range cells {
		neighbors := Neighbors(cell)
		require.Len(t, neighbors, 8)

		seen := map[string]bool{}
		for _, n := range neighbors {
			assert.NotEqual(t, cell, n)
			assert.False(t, seen[n], "duplicate neighbor %s of %s", n, cell)
			seen[n] = true
		}

		withSelf := Neighborhood(cell)
		require.Len(t, withSelf, 9)
		assert.Contains(t, withSelf, cell)
	}
}

// Each neighbor must be the cell you actually land in when stepping one
// cell-width geometrically. This pins the adjacency tables and the diagonal
// composition order against the encoder itself.
func TestNeighborsMatchGeometry(t *testing.T) {
	lat, lon := 55.75, 37.61
	cell := Encode(lat, lon, DefaultPrecision)

	minLat, minLon, maxLat, maxLon := Bounds(cell)
	cLat := (minLat + maxLat) / 2
	cLon := (minLon + maxLon) / 2
	dLat := maxLat - minLat
	dLon := maxLon - minLon

	neighbors := Neighbors(cell)
	// Order: N, NE, E, SE, S, SW, W, NW.
	steps := []struct{ dy, dx float64 }{
		{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	}

	for i, step := range steps {
		want := Encode(cLat+step.dy*dLat, cLon+step.dx*dLon, DefaultPrecision)
		assert.Equal(t, want, neighbors[i], "direction index %d", i)
	}
}

// Cells whose last character sits on a parent-cell border force the
// adjacency carry into the parent; verify against the encoder geometrically.
func TestNeighborsAcrossParentBorder(t *testing.T) {
	steps := []struct{ dy, dx float64 }{
		{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	}

	for _, cell := range []string{"u4prp", "u4prz", "ezs40", "ezs4b"} {
		minLat, minLon, maxLat, maxLon := Bounds(cell)
		cLat := (minLat + maxLat) / 2
		cLon := (minLon + maxLon) / 2
		dLat := maxLat - minLat
		dLon := maxLon - minLon

		neighbors := Neighbors(cell)
		require.Len(t, neighbors, 8)

		for i, step := range steps {
			want := Encode(cLat+step.dy*dLat, cLon+step.dx*dLon, 5)
			assert.Equal(t, want, neighbors[i], "cell %s direction index %d", cell, i)
		}
	}
}

func TestDistance(t *testing.T) {
	// Moscow city centre, ~60m apart.
	d := Distance(55.75, 37.61, 55.7505, 37.6105)
	assert.InDelta(t, 64, d, 15)

	// Same point.
	assert.InDelta(t, 0, Distance(55.75, 37.61, 55.75, 37.61), 0.001)

	// ~120km away.
	far := Distance(55.75, 37.61, 56.80, 38.0)
	assert.Greater(t, far, 100_000.0)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(0, -180.5))
}
