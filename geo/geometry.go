package geo

import (
	"github.com/paulmach/orb"
)

type GeometryKind int

const (
	KindPolygon GeometryKind = iota + 1
	KindMultiPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// Geometry is a parsed parcel geometry. Whatever shape it came from, it is
// carried as a MultiPolygon with closed rings in [lng, lat] order. Kind only
// records the source shape. Unsupported shapes never make it this far; they
// fail in ParseGeometry.
type Geometry struct {
	Kind         GeometryKind
	MultiPolygon orb.MultiPolygon
}

// Contains reports whether lat, lng is inside the outer ring of any polygon.
func (g *Geometry) Contains(lat, lng float64) bool {
	return MultiPolygonContains(g.MultiPolygon, lat, lng)
}

func (g *Geometry) Bound() (orb.Bound, bool) {
	return ComputeBounds(g.MultiPolygon)
}

// NumPoints counts all vertices, including closing vertices and holes.
func (g *Geometry) NumPoints() int {
	var n int
	for _, polygon := range g.MultiPolygon {
		for _, ring := range polygon {
			n += len(ring)
		}
	}
	return n
}

// OrbGeometry returns the geometry in its source shape.
func (g *Geometry) OrbGeometry() orb.Geometry {
	if g.Kind == KindPolygon && len(g.MultiPolygon) == 1 {
		return g.MultiPolygon[0]
	}
	return g.MultiPolygon
}
