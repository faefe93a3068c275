package geo

import "github.com/paulmach/orb"

// ComputeBounds returns the bounding box over every vertex of every ring,
// holes included. The bool is false if there are no vertices at all.
func ComputeBounds(mp orb.MultiPolygon) (orb.Bound, bool) {
	var bound orb.Bound
	found := false

	for _, polygon := range mp {
		for _, ring := range polygon {
			for _, pt := range ring {
				if !found {
					bound = orb.Bound{Min: pt, Max: pt}
					found = true
					continue
				}
				bound = bound.Extend(pt)
			}
		}
	}

	return bound, found
}

// BoundContains is inclusive on all edges.
func BoundContains(bound orb.Bound, lat, lng float64) bool {
	return bound.Contains(orb.Point{lng, lat})
}
