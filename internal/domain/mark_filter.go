package domain

import (
	"time"

	"github.com/markpoint/backend/internal/geo"
	"github.com/markpoint/backend/pkg/validator"
)

const (
	// DefaultRadiusMeters is used when a viewer omits the radius.
	DefaultRadiusMeters = 1000
	// MaxRadiusMeters caps how wide a single viewport may look.
	MaxRadiusMeters = 5000
	// DefaultLookupHours is the time window either side of the reference date.
	DefaultLookupHours = 24
)

// MarkFilter is a viewer's declared area and time window of interest.
// Construct it with NewMarkFilter so the geohash neighborhood is derived
// once and coordinates are validated up front.
type MarkFilter struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Radius    float64   `json:"radius"` // meters
	SRID      int       `json:"srid"`
	Date      time.Time `json:"date"`
	Duration  int       `json:"duration"` // hours either side of Date
	ShowEnded bool      `json:"show_ended"`

	precision    int
	neighborhood map[string]struct{}
}

// NewMarkFilter validates and normalizes viewer parameters. Zero radius,
// duration or date fall back to defaults; out-of-range coordinates are a
// validation error.
func NewMarkFilter(lat, lon, radius float64, date time.Time, durationHours int, showEnded bool, precision int) (*MarkFilter, error) {
	if !geo.ValidCoordinates(lat, lon) {
		var errs validator.ValidationErrors
		errs.Add("coordinates", "latitude must be in [-90,90] and longitude in [-180,180]")
		return nil, errs
	}

	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	if radius > MaxRadiusMeters {
		radius = MaxRadiusMeters
	}
	if durationHours <= 0 {
		durationHours = DefaultLookupHours
	}
	if date.IsZero() {
		date = time.Now()
	}
	if precision <= 0 {
		precision = geo.DefaultPrecision
	}

	f := &MarkFilter{
		Latitude:  lat,
		Longitude: lon,
		Radius:    radius,
		SRID:      geo.SRID,
		Date:      date,
		Duration:  durationHours,
		ShowEnded: showEnded,
		precision: precision,
	}

	f.neighborhood = make(map[string]struct{}, 9)
	for _, cell := range geo.Neighborhood(geo.Encode(lat, lon, precision)) {
		f.neighborhood[cell] = struct{}{}
	}

	return f, nil
}

// Neighborhood returns the 9-cell geohash set around the viewer.
func (f *MarkFilter) Neighborhood() []string {
	cells := make([]string, 0, len(f.neighborhood))
	for cell := range f.neighborhood {
		cells = append(cells, cell)
	}
	return cells
}

// MinStart is the lower bound of the viewer's lookup window.
func (f *MarkFilter) MinStart() time.Time {
	return f.Date.Add(-time.Duration(f.Duration) * time.Hour)
}

// MaxEnd is the upper bound of the viewer's lookup window.
func (f *MarkFilter) MaxEnd() time.Time {
	return f.Date.Add(time.Duration(f.Duration) * time.Hour)
}

// Contains decides whether a mark is inside the viewer's area. Stage one is
// an O(1) geohash-neighborhood membership check; only marks that pass it pay
// for the exact great-circle distance in stage two. Stage two is the
// authoritative radius check. Malformed mark coordinates exclude the mark.
func (f *MarkFilter) Contains(m *Mark) bool {
	if m == nil {
		return false
	}
	if _, ok := f.neighborhood[m.Geohash]; !ok {
		return false
	}
	if !geo.ValidCoordinates(m.Latitude, m.Longitude) {
		return false
	}
	return geo.Distance(f.Latitude, f.Longitude, m.Latitude, m.Longitude) <= f.Radius
}
