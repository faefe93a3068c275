package stats_collector

import (
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	DEFAULT_PROMETHEUS_NAMESPACE = "parcelfinder"
)

type PrometheusConfig struct {
	Enabled    bool      `koanf:"enabled"`
	Token      string    `koanf:"token"`
	BucketSize []float64 `koanf:"bucket_size"`
	Namespace  string    `koanf:"namespace"`
}

func (cfg *PrometheusConfig) Validate() error {
	return nil
}

func GetDefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		BucketSize: []float64{.00005, .000075, .0001, .00025, .0005, .00075, .001, .0025, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		Namespace:  DEFAULT_PROMETHEUS_NAMESPACE,
	}
}

var _ StatsCollector = (*PrometheusCollector)(nil)

type PrometheusCollector struct {
	config   PrometheusConfig
	registry *prometheus.Registry

	queries         *prometheus.CounterVec
	candidates      prometheus.Counter
	rebuilds        prometheus.Counter
	rebuildFailures prometheus.Counter
	rebuildDuration prometheus.Histogram
	parcelsIndexed  prometheus.Gauge
	parcelsSkipped  prometheus.Gauge
}

func (col *PrometheusCollector) Name() string {
	return "prometheus"
}

func (col *PrometheusCollector) RegisterGinEngine(engine *gin.Engine) {
	p := ginprom.New(
		ginprom.Engine(engine),
		ginprom.Registry(col.registry),
		ginprom.Subsystem("gin"),
		ginprom.Path("/metrics"),
		ginprom.Token(col.config.Token),
		ginprom.BucketSize(col.config.BucketSize),
	)
	engine.Use(p.Instrument())
}

func (col *PrometheusCollector) AddQuery(matched bool, numCandidates int) {
	result := "miss"
	if matched {
		result = "match"
	}
	col.queries.WithLabelValues(result).Inc()
	col.candidates.Add(float64(numCandidates))
}

func (col *PrometheusCollector) AddRebuild(duration time.Duration, numIndexed, numSkipped int) {
	col.rebuilds.Inc()
	col.rebuildDuration.Observe(duration.Seconds())
	col.parcelsIndexed.Set(float64(numIndexed))
	col.parcelsSkipped.Set(float64(numSkipped))
}

func (col *PrometheusCollector) AddRebuildFailure() {
	col.rebuildFailures.Inc()
}

func NewPrometheusCollector(config PrometheusConfig) StatsCollector {
	ns := config.Namespace
	if ns == "" {
		ns = DEFAULT_PROMETHEUS_NAMESPACE
	}

	registry := prometheus.NewRegistry()
	collector := &PrometheusCollector{
		config:   config,
		registry: registry,
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "queries",
				Help:      "Total number of containing-parcel queries, by result",
			},
			[]string{"result"},
		),
		candidates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "query_candidates",
				Help:      "Total number of bounding box candidates examined by queries",
			},
		),
		rebuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "index_rebuilds",
				Help:      "Total number of published index rebuilds",
			},
		),
		rebuildFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "index_rebuild_failures",
				Help:      "Total number of rebuilds that failed to load or were aborted",
			},
		),
		rebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "index_rebuild_seconds",
				Help:      "Time taken to build an index snapshot",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		parcelsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "parcels_indexed",
				Help:      "Number of parcels in the current snapshot",
			},
		),
		parcelsSkipped: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "parcels_skipped",
				Help:      "Number of parcels left out of the current snapshot due to bad geometry",
			},
		),
	}

	processOpts := collectors.ProcessCollectorOpts{
		Namespace: ns,
	}

	registry.MustRegister(
		collectors.NewProcessCollector(processOpts),
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(
				collectors.MetricsGC,
				collectors.MetricsMemory,
			),
		),
		collector.queries,
		collector.candidates,
		collector.rebuilds,
		collector.rebuildFailures,
		collector.rebuildDuration,
		collector.parcelsIndexed,
		collector.parcelsSkipped,
	)

	return collector
}
