package index

import (
	"slices"
	"time"

	"github.com/paulmach/orb"

	"github.com/UnownHash/ParcelFinder/geo"
	"github.com/UnownHash/ParcelFinder/parcels"
)

type indexedParcel struct {
	geometry *geo.Geometry
	bound    orb.Bound
}

// SkippedParcel is a parcel that was left out of a snapshot because its
// geometry could not be used.
type SkippedParcel struct {
	Ref    parcels.Ref `json:"ref"`
	Kind   string      `json:"kind"`
	Reason string      `json:"reason"`
}

// Snapshot is one complete, immutable build of the index. Nothing in it
// changes after it is published, so any number of goroutines can search it.
type Snapshot struct {
	Id            string
	BuiltAt       time.Time
	BuildDuration time.Duration

	rtree   *geo.FenceRTree[parcels.Ref]
	parcels map[parcels.Ref]indexedParcel
	skipped []SkippedParcel
}

// Search returns every parcel whose bounding box contains the point, in
// tree order. Absence means the parcel cannot contain the point; presence
// means nothing more.
func (snap *Snapshot) Search(lat, lng float64) []parcels.Ref {
	return snap.rtree.GetMatches(lat, lng)
}

// FindContainingParcel returns the first candidate, in tree order, whose
// geometry contains the point. When parcels overlap, which one wins is
// whatever the tree yields first.
func (snap *Snapshot) FindContainingParcel(lat, lng float64) (match parcels.Ref, found bool, numCandidates int) {
	snap.rtree.Search(lat, lng, func(ref parcels.Ref) bool {
		numCandidates++
		entry, ok := snap.parcels[ref]
		if ok && entry.geometry.Contains(lat, lng) {
			match = ref
			found = true
			return false
		}
		return true
	})
	return
}

// Geometry returns the parsed geometry and bounding box of an indexed parcel.
func (snap *Snapshot) Geometry(ref parcels.Ref) (*geo.Geometry, orb.Bound, bool) {
	entry, ok := snap.parcels[ref]
	if !ok {
		return nil, orb.Bound{}, false
	}
	return entry.geometry, entry.bound, true
}

// Len is the number of indexed parcels.
func (snap *Snapshot) Len() int {
	return snap.rtree.Len()
}

// Skipped returns a copy of the skipped-parcel report.
func (snap *Snapshot) Skipped() []SkippedParcel {
	return slices.Clone(snap.skipped)
}
