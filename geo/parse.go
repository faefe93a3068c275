package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
)

const minRingVertices = 3

// ParseGeometry decodes a parcel geometry. Two encodings occur in live data:
//
//   - a GeoJSON geometry object: {"type": "Polygon"|"MultiPolygon", "coordinates": ...}
//   - the legacy KML-style coordinate list: "lng,lat lng,lat lng,lat ..."
//
// Anything starting with '{' (after trimming) is GeoJSON. The returned error is
// always a *GeometryError.
func ParseGeometry(raw string) (*Geometry, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil, &GeometryError{Kind: ErrEmpty}
	}

	if trimmed[0] == '{' {
		return parseGeoJSON(trimmed)
	}
	return parseLegacy(trimmed)
}

func parseGeoJSON(raw string) (*Geometry, error) {
	if !gjson.Valid(raw) {
		return nil, newGeometryError(ErrMalformed, "invalid json")
	}

	typ := gjson.Get(raw, "type")
	if !typ.Exists() {
		return nil, newGeometryError(ErrMalformed, "geojson has no type")
	}

	var kind GeometryKind

	switch typ.String() {
	case "Polygon":
		kind = KindPolygon
	case "MultiPolygon":
		kind = KindMultiPolygon
	default:
		return nil, newGeometryError(ErrUnsupportedType, "geojson type '%s'", typ.String())
	}

	jsonGeometry, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return nil, newGeometryError(ErrMalformed, "bad %s coordinates: %v", kind, err)
	}

	var polygons orb.MultiPolygon

	switch typedGeometry := jsonGeometry.Geometry().(type) {
	case orb.Polygon:
		polygons = orb.MultiPolygon{typedGeometry}
	case orb.MultiPolygon:
		polygons = typedGeometry
	default:
		return nil, newGeometryError(ErrMalformed, "type is %s but geometry decoded as %T", kind, typedGeometry)
	}

	mp := normalizeMultiPolygon(polygons)
	if len(mp) == 0 {
		return nil, newGeometryError(ErrMalformed, "no polygon with at least %d distinct vertices", minRingVertices)
	}

	return &Geometry{Kind: kind, MultiPolygon: mp}, nil
}

// parseLegacy is lenient: tokens that are not a numeric "lng,lat" pair are
// skipped. A trailing altitude ("lng,lat,alt", as KML writes it) is ignored.
func parseLegacy(raw string) (*Geometry, error) {
	tokens := strings.Fields(raw)
	ring := make(orb.Ring, 0, len(tokens)+1)

	for _, token := range tokens {
		parts := strings.Split(token, ",")
		if len(parts) < 2 {
			continue
		}
		lng, ok := parseCoordinate(parts[0])
		if !ok {
			continue
		}
		lat, ok := parseCoordinate(parts[1])
		if !ok {
			continue
		}
		ring = append(ring, orb.Point{lng, lat})
	}

	if len(ring) < minRingVertices {
		return nil, newGeometryError(ErrMalformed, "only %d usable point(s) in %d token(s)", len(ring), len(tokens))
	}

	mp := normalizeMultiPolygon(orb.MultiPolygon{orb.Polygon{ring}})
	if len(mp) == 0 {
		return nil, newGeometryError(ErrMalformed, "fewer than %d distinct points", minRingVertices)
	}

	return &Geometry{Kind: KindPolygon, MultiPolygon: mp}, nil
}

func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeMultiPolygon closes every ring and drops polygons whose outer ring
// has fewer than 3 distinct vertices. Degenerate holes are dropped too.
func normalizeMultiPolygon(polygons orb.MultiPolygon) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(polygons))
	for _, polygon := range polygons {
		if len(polygon) == 0 || !hasDistinctVertices(polygon[0]) {
			continue
		}
		normalized := make(orb.Polygon, 1, len(polygon))
		normalized[0] = closeRing(polygon[0])
		for _, hole := range polygon[1:] {
			if hasDistinctVertices(hole) {
				normalized = append(normalized, closeRing(hole))
			}
		}
		mp = append(mp, normalized)
	}
	return mp
}

func closeRing(ring orb.Ring) orb.Ring {
	l := len(ring)
	closed := make(orb.Ring, l, l+1)
	copy(closed, ring)
	if closed[0] != closed[l-1] {
		closed = append(closed, closed[0])
	}
	return closed
}

func hasDistinctVertices(ring orb.Ring) bool {
	if len(ring) < minRingVertices {
		return false
	}
	seen := make(map[orb.Point]struct{}, minRingVertices)
	for _, pt := range ring {
		seen[pt] = struct{}{}
		if len(seen) >= minRingVertices {
			return true
		}
	}
	return false
}
