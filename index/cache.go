package index

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/UnownHash/ParcelFinder/geo"
)

type parseResult struct {
	geometry *geo.Geometry
	err      error
}

// GeometryCache remembers ParseGeometry results by raw string so that a
// rebuild after editing one parcel does not re-parse the other thousands.
// Failures are cached too. Entries are costed by vertex count.
//
// Sets are buffered by ristretto, so a value may not be visible to an
// immediately following Get. That only costs a re-parse.
type GeometryCache struct {
	cache *ristretto.Cache[string, parseResult]
}

func (gc *GeometryCache) Parse(raw string) (*geo.Geometry, error) {
	if gc == nil {
		return geo.ParseGeometry(raw)
	}

	if res, ok := gc.cache.Get(raw); ok {
		return res.geometry, res.err
	}

	geometry, err := geo.ParseGeometry(raw)

	cost := int64(1)
	if geometry != nil {
		cost = int64(geometry.NumPoints())
	}
	gc.cache.Set(raw, parseResult{geometry: geometry, err: err}, cost)

	return geometry, err
}

// Wait blocks until buffered sets are applied.
func (gc *GeometryCache) Wait() {
	if gc != nil {
		gc.cache.Wait()
	}
}

func (gc *GeometryCache) Close() {
	if gc != nil {
		gc.cache.Close()
	}
}

// NewGeometryCache returns nil (a valid, pass-through cache) when
// maxPoints is 0.
func NewGeometryCache(maxPoints, numCounters int64) (*GeometryCache, error) {
	if maxPoints <= 0 {
		return nil, nil
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, parseResult]{
		NumCounters: numCounters,
		MaxCost:     maxPoints,
		BufferItems: 64,
		// cost is vertices, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &GeometryCache{cache: cache}, nil
}
