package geo

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// FenceRTree maps bounding boxes to values. It has no locking: fill it
// completely, then only search it. ParcelIndex relies on that by never
// touching a tree again once it has been published.
type FenceRTree[V any] struct {
	rtree rtree.RTreeG[V]
}

func (rt *FenceRTree[V]) Insert(bound orb.Bound, value V) {
	rt.rtree.Insert(bound.Min, bound.Max, value)
}

// Search calls fn for every value whose box contains lat, lon, in tree order,
// until fn returns false.
func (rt *FenceRTree[V]) Search(lat, lon float64, fn func(V) bool) {
	p := orb.Point{lon, lat}
	rt.rtree.Search(p, p, func(min, max [2]float64, value V) bool {
		return fn(value)
	})
}

// GetMatches returns every value whose box contains lat, lon.
func (rt *FenceRTree[V]) GetMatches(lat, lon float64) []V {
	matches := make([]V, 0, 2)
	rt.Search(lat, lon, func(value V) bool {
		matches = append(matches, value)
		return true
	})
	return matches
}

func (rt *FenceRTree[V]) Len() int {
	return rt.rtree.Len()
}

func NewFenceRTree[V any]() *FenceRTree[V] {
	return &FenceRTree[V]{}
}
