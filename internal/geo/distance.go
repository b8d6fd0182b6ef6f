package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// SRID is the only supported coordinate reference system (WGS84).
const SRID = 4326

// Distance returns the great-circle distance between two points in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// ValidCoordinates reports whether a latitude/longitude pair is in range.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
