package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MultiPolygonContains runs an even-odd ray cast against the outer ring of
// each polygon and returns on the first hit. Holes are NOT subtracted: a point
// inside a hole still counts as contained. Points exactly on an edge count as
// inside.
func MultiPolygonContains(mp orb.MultiPolygon, lat, lng float64) bool {
	p := orb.Point{lng, lat}
	for _, polygon := range mp {
		if len(polygon) == 0 {
			continue
		}
		if planar.RingContains(polygon[0], p) {
			return true
		}
	}
	return false
}
