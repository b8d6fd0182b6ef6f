package geo

import "strings"

// DefaultPrecision is the cell size used for marks and viewers alike.
// 5 characters is roughly a 4.9km cell edge; both sides must encode at
// the same precision or cell comparisons are meaningless.
const DefaultPrecision = 5

const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

type direction int

const (
	north direction = iota
	south
	east
	west
)

// Adjacency lookup tables, indexed by [direction][len(cell)%2].
// These are the standard published geohash constants.
var neighborTables = map[direction][2]string{
	north: {"p0r21436x8zb9dcf5h7kjnmqesgutwvy", "bc01fg45238967deuvhjyznpkmstqrwx"},
	south: {"14365h7k9dcfesgujnmqp0r2twvyx8zb", "238967debc01fg45kmstqrwxuvhjyznp"},
	east:  {"bc01fg45238967deuvhjyznpkmstqrwx", "p0r21436x8zb9dcf5h7kjnmqesgutwvy"},
	west:  {"238967debc01fg45kmstqrwxuvhjyznp", "14365h7k9dcfesgujnmqp0r2twvyx8zb"},
}

var borderTables = map[direction][2]string{
	north: {"prxz", "bcfguvyz"},
	south: {"028b", "0145hjnp"},
	east:  {"bcfguvyz", "prxz"},
	west:  {"0145hjnp", "028b"},
}

// Encode returns the geohash cell for a coordinate at the given precision.
func Encode(lat, lon float64, precision int) string {
	if precision <= 0 {
		precision = DefaultPrecision
	}

	minLat, maxLat := -90.0, 90.0
	minLon, maxLon := -180.0, 180.0

	var sb strings.Builder
	sb.Grow(precision)

	bit, ch := 0, 0
	evenBit := true

	for sb.Len() < precision {
		if evenBit {
			mid := (minLon + maxLon) / 2
			if lon >= mid {
				ch |= 1 << (4 - bit)
				minLon = mid
			} else {
				maxLon = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if lat >= mid {
				ch |= 1 << (4 - bit)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		evenBit = !evenBit

		if bit < 4 {
			bit++
		} else {
			sb.WriteByte(base32[ch])
			bit, ch = 0, 0
		}
	}

	return sb.String()
}

// Bounds returns the bounding box of a geohash cell.
func Bounds(cell string) (minLat, minLon, maxLat, maxLon float64) {
	minLat, maxLat = -90.0, 90.0
	minLon, maxLon = -180.0, 180.0

	evenBit := true
	for i := 0; i < len(cell); i++ {
		ch := strings.IndexByte(base32, cell[i])
		for bit := 4; bit >= 0; bit-- {
			set := ch>>bit&1 == 1
			if evenBit {
				mid := (minLon + maxLon) / 2
				if set {
					minLon = mid
				} else {
					maxLon = mid
				}
			} else {
				mid := (minLat + maxLat) / 2
				if set {
					minLat = mid
				} else {
					maxLat = mid
				}
			}
			evenBit = !evenBit
		}
	}
	return minLat, minLon, maxLat, maxLon
}

// adjacent returns the neighboring cell in one cardinal direction. Crossing
// a cell border at the current level carries into the parent cell.
func adjacent(cell string, dir direction) string {
	if cell == "" {
		return ""
	}

	last := cell[len(cell)-1]
	parent := cell[:len(cell)-1]
	idx := len(cell) % 2

	if strings.IndexByte(borderTables[dir][idx], last) != -1 && parent != "" {
		parent = adjacent(parent, dir)
	}

	return parent + string(base32[strings.IndexByte(neighborTables[dir][idx], last)])
}

// Neighbors returns the 8 cells surrounding a geohash cell. Diagonals are
// derived by stepping east/west first and then north/south from the result;
// stepping in the wrong order yields wrong cells at parent borders.
func Neighbors(cell string) []string {
	e := adjacent(cell, east)
	w := adjacent(cell, west)

	return []string{
		adjacent(cell, north),
		adjacent(e, north),
		e,
		adjacent(e, south),
		adjacent(cell, south),
		adjacent(w, south),
		w,
		adjacent(w, north),
	}
}

// Neighborhood returns the 9-cell set of a cell and its 8 neighbors.
func Neighborhood(cell string) []string {
	return append(Neighbors(cell), cell)
}
