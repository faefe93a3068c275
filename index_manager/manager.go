package index_manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/UnownHash/ParcelFinder/geo"
	"github.com/UnownHash/ParcelFinder/index"
	"github.com/UnownHash/ParcelFinder/parcel_loader"
	"github.com/UnownHash/ParcelFinder/parcels"
	"github.com/UnownHash/ParcelFinder/stats_collector"
)

var ErrNotLoaded = errors.New("no parcels have been loaded yet")

type IndexManagerConfig struct {
	Logger         *logrus.Logger
	ParcelLoader   parcel_loader.ParcelLoader
	ParcelIndex    *index.ParcelIndex
	StatsCollector stats_collector.StatsCollector
}

// Match is a query result. Ref and Parcel always come from the same load.
type Match struct {
	Ref    parcels.Ref
	Parcel *parcels.Parcel
}

// IndexManager owns the current parcel collection and keeps the index in
// sync with it. Reload runs a load+rebuild synchronously; RequestRebuild
// queues one for Run to pick up, which is how data-change events should
// trigger rebuilds.
type IndexManager struct {
	logger         *logrus.Logger
	parcelLoader   parcel_loader.ParcelLoader
	parcelIndex    *index.ParcelIndex
	statsCollector stats_collector.StatsCollector

	rebuildCh   chan struct{}
	reloadMutex sync.Mutex
	limiter     *rate.Limiter

	configMutex sync.Mutex
	config      Config

	current atomic.Pointer[generation]

	queryCount atomic.Uint64
	matchCount atomic.Uint64
}

// generation is one load: the collection and the snapshot built from it.
// They are published together so a query never sees one without the other.
type generation struct {
	collection *parcels.Collection
	snapshot   *index.Snapshot
}

func (mgr *IndexManager) GetConfig() Config {
	mgr.configMutex.Lock()
	defer mgr.configMutex.Unlock()
	return mgr.config
}

// LoadConfig applies a (re)loaded config. Takes effect on the next
// background rebuild.
func (mgr *IndexManager) LoadConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	mgr.configMutex.Lock()
	defer mgr.configMutex.Unlock()

	mgr.config = config
	mgr.limiter.SetLimit(limitFromInterval(config.MinRebuildInterval()))

	var buf bytes.Buffer
	buf.WriteString("Index manager config loaded: ")
	config.writeConfiguration(&buf)
	mgr.logger.Info(buf.String())

	return nil
}

func limitFromInterval(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}

// Collection returns the parcels behind the current snapshot, or nil.
func (mgr *IndexManager) Collection() *parcels.Collection {
	if gen := mgr.current.Load(); gen != nil {
		return gen.collection
	}
	return nil
}

// Snapshot returns the current snapshot, or nil.
func (mgr *IndexManager) Snapshot() *index.Snapshot {
	if gen := mgr.current.Load(); gen != nil {
		return gen.snapshot
	}
	return nil
}

// FindContainingParcel never fails: no data and no match are both (nil, false).
func (mgr *IndexManager) FindContainingParcel(lat, lng float64) (*Match, bool) {
	var (
		ref           parcels.Ref
		found         bool
		numCandidates int
		parcel        *parcels.Parcel
	)

	if gen := mgr.current.Load(); gen != nil {
		ref, found, numCandidates = gen.snapshot.FindContainingParcel(lat, lng)
		if found {
			parcel = gen.collection.Get(ref)
		}
	}

	mgr.queryCount.Add(1)
	mgr.statsCollector.AddQuery(found, numCandidates)

	if !found {
		return nil, false
	}

	mgr.matchCount.Add(1)

	return &Match{Ref: ref, Parcel: parcel}, true
}

// Search returns the bounding box candidates for a point.
func (mgr *IndexManager) Search(lat, lng float64) []parcels.Ref {
	gen := mgr.current.Load()
	if gen == nil {
		return nil
	}
	return gen.snapshot.Search(lat, lng)
}

// ParcelInfo is a parcel plus what the current snapshot knows about it.
// Geometry is nil if the parcel was not indexed.
type ParcelInfo struct {
	Parcel   *parcels.Parcel
	Geometry *geo.Geometry
	Bound    orb.Bound
}

func (mgr *IndexManager) GetParcel(ref parcels.Ref) *ParcelInfo {
	gen := mgr.current.Load()
	if gen == nil {
		return nil
	}
	parcel := gen.collection.Get(ref)
	if parcel == nil {
		return nil
	}
	info := &ParcelInfo{Parcel: parcel}
	if geometry, bound, ok := gen.snapshot.Geometry(ref); ok {
		info.Geometry = geometry
		info.Bound = bound
	}
	return info
}

// Reload loads every expediente from the loader and rebuilds the index
// from them. On error the previous collection and snapshot stay in place.
func (mgr *IndexManager) Reload(ctx context.Context) error {
	mgr.reloadMutex.Lock()
	defer mgr.reloadMutex.Unlock()

	config := mgr.GetConfig()
	ctx, cancelFn := context.WithTimeout(ctx, config.RebuildTimeout())
	defer cancelFn()

	expedientes, err := mgr.parcelLoader.LoadExpedientes(ctx)
	if err != nil {
		mgr.statsCollector.AddRebuildFailure()
		return fmt.Errorf("failed to load parcels from %s loader: %w", mgr.parcelLoader.LoaderName(), err)
	}

	collection := parcels.NewCollection(mgr.logger, expedientes)

	mgr.logger.Infof("PARCEL-LOAD[]: Got %d parcel(s) in %d expediente(s) from %s loader",
		collection.Len(),
		len(expedientes),
		mgr.parcelLoader.LoaderName(),
	)

	snap, err := mgr.parcelIndex.Rebuild(ctx, collection.All())
	if err != nil {
		mgr.statsCollector.AddRebuildFailure()
		return err
	}

	mgr.current.Store(&generation{collection: collection, snapshot: snap})
	mgr.statsCollector.AddRebuild(snap.BuildDuration, snap.Len(), len(snap.Skipped()))

	return nil
}

// RequestRebuild queues a background rebuild. It never blocks; if one is
// already queued, this is a no-op.
func (mgr *IndexManager) RequestRebuild() {
	select {
	case mgr.rebuildCh <- struct{}{}:
	default:
	}
}

// Run services rebuild requests until ctx is cancelled. Call Reload once
// before Run so queries have something to work with at startup.
func (mgr *IndexManager) Run(ctx context.Context) {
	if mgr.current.Load() == nil {
		mgr.logger.Warnf("INDEX-MANAGER: starting without a loaded index. Queueing a rebuild.")
		mgr.RequestRebuild()
	}

	config := mgr.GetConfig()
	logInterval := config.LogInterval()
	logTicker := time.NewTicker(logInterval)
	defer logTicker.Stop()

	var retryTimer *time.Timer
	var retryCh <-chan time.Time
	defer func() {
		if retryTimer != nil {
			retryTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-retryCh:
			retryTimer, retryCh = nil, nil
			mgr.RequestRebuild()
		case <-mgr.rebuildCh:
			if err := mgr.limiter.Wait(ctx); err != nil {
				return
			}
			err := mgr.Reload(ctx)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			config := mgr.GetConfig()
			retryInterval := config.RetryInterval()
			mgr.logger.Errorf("INDEX-MANAGER: rebuild failed, previous snapshot kept. Will retry in %s: %v", retryInterval, err)
			if retryTimer == nil {
				retryTimer = time.NewTimer(retryInterval)
				retryCh = retryTimer.C
			}
		case <-logTicker.C:
			queryCnt := mgr.queryCount.Swap(0)
			matchCnt := mgr.matchCount.Swap(0)
			numParcels := 0
			if snap := mgr.Snapshot(); snap != nil {
				numParcels = snap.Len()
			}
			mgr.logger.Infof("INDEX-MANAGER: last %s: %d queries, %d matched, %d parcel(s) indexed", logInterval, queryCnt, matchCnt, numParcels)
		}
	}
}

func NewIndexManager(config IndexManagerConfig, managerConfig Config) (*IndexManager, error) {
	if config.ParcelLoader == nil {
		return nil, errors.New("IndexManager: no parcel loader configured")
	}
	if config.ParcelIndex == nil {
		return nil, errors.New("IndexManager: no parcel index configured")
	}
	if err := managerConfig.Validate(); err != nil {
		return nil, err
	}

	statsCollector := config.StatsCollector
	if statsCollector == nil {
		statsCollector = stats_collector.NewNoopStatsCollector()
	}

	mgr := &IndexManager{
		logger:         config.Logger,
		parcelLoader:   config.ParcelLoader,
		parcelIndex:    config.ParcelIndex,
		statsCollector: statsCollector,
		rebuildCh:      make(chan struct{}, 1),
		limiter:        rate.NewLimiter(limitFromInterval(managerConfig.MinRebuildInterval()), 1),
		config:         managerConfig,
	}
	return mgr, nil
}
