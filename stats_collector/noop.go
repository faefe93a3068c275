package stats_collector

import (
	"time"

	"github.com/gin-gonic/gin"
)

var _ StatsCollector = (*noopCollector)(nil)

type noopCollector struct {
}

func (col *noopCollector) Name() string                       { return "no-op" }
func (col *noopCollector) RegisterGinEngine(*gin.Engine)      {}
func (col *noopCollector) AddQuery(bool, int)                 {}
func (col *noopCollector) AddRebuild(time.Duration, int, int) {}
func (col *noopCollector) AddRebuildFailure()                 {}

func NewNoopStatsCollector() StatsCollector {
	return &noopCollector{}
}
