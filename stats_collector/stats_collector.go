package stats_collector

import (
	"time"

	"github.com/gin-gonic/gin"
)

type StatsCollector interface {
	Name() string
	RegisterGinEngine(*gin.Engine)

	AddQuery(matched bool, numCandidates int)
	AddRebuild(duration time.Duration, numIndexed, numSkipped int)
	AddRebuildFailure()
}

type Config interface {
	GetPrometheusConfig() PrometheusConfig
}

func GetStatsCollector(cfg Config) StatsCollector {
	promConfig := cfg.GetPrometheusConfig()
	if !promConfig.Enabled {
		return NewNoopStatsCollector()
	}
	return NewPrometheusCollector(promConfig)
}
