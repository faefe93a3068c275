package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/UnownHash/ParcelFinder/geo"
	"github.com/UnownHash/ParcelFinder/parcels"
)

// ParcelIndex answers "which parcel contains this point". Queries read the
// current Snapshot through an atomic pointer and never wait on a Rebuild.
// A Rebuild builds a whole new Snapshot and swaps it in; if two rebuilds
// race, the last one to finish wins.
type ParcelIndex struct {
	logger *logrus.Logger
	config Config
	cache  *GeometryCache

	snapshot atomic.Pointer[Snapshot]
}

// Snapshot returns the current snapshot, or nil if nothing has been built
// yet. Hold on to the result for the duration of a query.
func (idx *ParcelIndex) Snapshot() *Snapshot {
	return idx.snapshot.Load()
}

// Search returns the bounding box candidates for the point.
func (idx *ParcelIndex) Search(lat, lng float64) []parcels.Ref {
	snap := idx.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap.Search(lat, lng)
}

// FindContainingParcel returns the parcel containing the point, if any. An
// empty or never-built index is simply no match.
func (idx *ParcelIndex) FindContainingParcel(lat, lng float64) (parcels.Ref, bool) {
	ref, found, _ := idx.findContainingParcel(lat, lng)
	return ref, found
}

// FindContainingParcelWithStats is FindContainingParcel plus the number of
// bounding box candidates that were examined.
func (idx *ParcelIndex) FindContainingParcelWithStats(lat, lng float64) (parcels.Ref, bool, int) {
	return idx.findContainingParcel(lat, lng)
}

func (idx *ParcelIndex) findContainingParcel(lat, lng float64) (parcels.Ref, bool, int) {
	snap := idx.snapshot.Load()
	if snap == nil {
		return parcels.Ref{}, false, 0
	}
	return snap.FindContainingParcel(lat, lng)
}

// Rebuild indexes parcelList from scratch and publishes the result. Parcels
// whose geometry fails to parse are skipped and logged. The only error is
// ctx being cancelled, in which case nothing is published.
func (idx *ParcelIndex) Rebuild(ctx context.Context, parcelList []*parcels.Parcel) (*Snapshot, error) {
	start := time.Now()
	snapshotId := uuid.NewString()

	results := make([]parseResult, len(parcelList))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.config.parseConcurrency())

	for i, parcel := range parcelList {
		if parcel == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			geometry, err := idx.cache.Parse(parcel.GeometryRaw)
			results[i] = parseResult{geometry: geometry, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rebuild %s aborted: %w", snapshotId, err)
	}

	snap := &Snapshot{
		Id:      snapshotId,
		rtree:   geo.NewFenceRTree[parcels.Ref](),
		parcels: make(map[parcels.Ref]indexedParcel, len(parcelList)),
	}

	// first occurrence of a ref wins, even if it is then skipped.
	seen := make(map[parcels.Ref]struct{}, len(parcelList))

	for i, parcel := range parcelList {
		if parcel == nil {
			continue
		}

		ref := parcel.Ref()

		if _, ok := seen[ref]; ok {
			idx.logger.Warnf("INDEX-BUILD[%s]: parcel already seen (skipping this one).", ref)
			continue
		}
		seen[ref] = struct{}{}

		res := results[i]
		if res.err != nil {
			skipped := SkippedParcel{Ref: ref, Kind: "unknown", Reason: res.err.Error()}
			var geomErr *geo.GeometryError
			if errors.As(res.err, &geomErr) {
				skipped.Kind = geomErr.KindName()
			}
			snap.skipped = append(snap.skipped, skipped)
			idx.logger.Warnf("INDEX-BUILD[%s]: skipping parcel: %v", parcel.FullName(), res.err)
			continue
		}

		bound, ok := res.geometry.Bound()
		if !ok {
			snap.skipped = append(snap.skipped, SkippedParcel{Ref: ref, Kind: "malformed", Reason: "geometry has no vertices"})
			idx.logger.Warnf("INDEX-BUILD[%s]: skipping parcel: geometry has no vertices", parcel.FullName())
			continue
		}

		snap.rtree.Insert(bound, ref)
		snap.parcels[ref] = indexedParcel{geometry: res.geometry, bound: bound}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rebuild %s aborted: %w", snapshotId, err)
	}

	snap.BuiltAt = time.Now()
	snap.BuildDuration = snap.BuiltAt.Sub(start)

	idx.snapshot.Store(snap)

	idx.logger.Infof(
		"INDEX-BUILD[]: snapshot %s published: %d parcel(s) indexed, %d skipped, took %s",
		snap.Id,
		snap.Len(),
		len(snap.skipped),
		snap.BuildDuration,
	)

	return snap, nil
}

func (idx *ParcelIndex) LogConfiguration(prefix string) {
	var buf bytes.Buffer

	buf.WriteString(prefix)
	idx.config.writeConfiguration(&buf)

	idx.logger.Info(buf.String())
}

func (idx *ParcelIndex) Close() {
	idx.cache.Close()
}

func NewParcelIndex(logger *logrus.Logger, config Config) (*ParcelIndex, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cache, err := NewGeometryCache(config.CacheMaxPoints, config.CacheNumCounters)
	if err != nil {
		return nil, fmt.Errorf("failed to create geometry cache: %w", err)
	}

	return &ParcelIndex{
		logger: logger,
		config: config,
		cache:  cache,
	}, nil
}
