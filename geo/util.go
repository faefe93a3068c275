package geo

import (
	venise_geo "github.com/dernise/venise/geo"
	"github.com/paulmach/orb"
	orb_geo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

func convertToVenisePolygon(orbPolygon orb.Polygon) venise_geo.Polygon {
	polygon := venise_geo.Polygon{
		Rings: make([][]venise_geo.Point, len(orbPolygon)),
	}
	for ringIdx, ring := range orbPolygon {
		ringPoints := make([]venise_geo.Point, len(ring))
		for ptsIdx, coord := range ring {
			ringPoints[ptsIdx] = venise_geo.Point(coord)
		}
		polygon.Rings[ringIdx] = ringPoints
	}
	return polygon
}

func GetLargestPolygon(mp orb.MultiPolygon) orb.Polygon {
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}

	bestPoly := mp[0]
	maxArea := orb_geo.Area(bestPoly)

	for _, poly := range mp[1:] {
		area := orb_geo.Area(poly)
		if area > maxArea {
			maxArea = area
			bestPoly = poly
		}
	}

	return bestPoly
}

// AreaM2 is the geodesic area of the outer rings, in square meters. Holes are
// not subtracted, matching Contains.
func AreaM2(geometry *Geometry) float64 {
	var area float64
	for _, polygon := range geometry.MultiPolygon {
		area += orb_geo.Area(polygon[0])
	}
	return area
}

// GetPolygonLabelPoint returns a point for placing a parcel label. The centroid
// is used when it falls inside the parcel; otherwise (L-shapes, crescents) the
// pole of inaccessibility of the largest polygon.
func GetPolygonLabelPoint(geometry *Geometry) orb.Point {
	mp := geometry.MultiPolygon
	center, _ := planar.CentroidArea(mp)
	if MultiPolygonContains(mp, center.Lat(), center.Lon()) {
		return center
	}
	bestPoly := GetLargestPolygon(mp)
	if bestPoly == nil {
		return center
	}
	point := venise_geo.Polylabel(convertToVenisePolygon(bestPoly), 0.000001, false)
	return orb.Point(point)
}

// PathFromPolygonRing flips a ring to [lat, lng] pairs for map clients.
func PathFromPolygonRing(ring orb.Ring) [][2]float64 {
	path := make([][2]float64, len(ring))
	for idx, pt := range ring {
		path[idx] = [2]float64{pt.Lat(), pt.Lon()}
	}
	return path
}

// PathsFromGeometry returns the outer ring of every polygon as a path.
func PathsFromGeometry(geometry *Geometry) [][][2]float64 {
	if len(geometry.MultiPolygon) == 0 {
		return nil
	}
	paths := make([][][2]float64, len(geometry.MultiPolygon))
	for idx, poly := range geometry.MultiPolygon {
		paths[idx] = PathFromPolygonRing(poly[0])
	}
	return paths
}
