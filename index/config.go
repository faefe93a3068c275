package index

import (
	"bytes"
	"fmt"
	"runtime"
)

const (
	DEFAULT_CACHE_MAX_POINTS   = 4_000_000
	DEFAULT_CACHE_NUM_COUNTERS = 1_000_000
)

type Config struct {
	// how many parcels to parse at once during a rebuild. 0 means GOMAXPROCS.
	ParseConcurrency int `koanf:"parse_concurrency" json:"parse_concurrency"`
	// Parsed geometries are kept across rebuilds, costed by number of
	// vertices. 0 disables the cache.
	CacheMaxPoints int64 `koanf:"cache_max_points" json:"cache_max_points"`
	// ristretto admission counters. ~10x the number of expected parcels.
	CacheNumCounters int64 `koanf:"cache_num_counters" json:"cache_num_counters"`
}

func (cfg *Config) parseConcurrency() int {
	if cfg.ParseConcurrency > 0 {
		return cfg.ParseConcurrency
	}
	return runtime.GOMAXPROCS(0)
}

func (cfg *Config) writeConfiguration(buf *bytes.Buffer) {
	buf.WriteString(fmt.Sprintf("parse_concurrency: %d, ", cfg.parseConcurrency()))
	buf.WriteString(fmt.Sprintf("cache_max_points: %d, ", cfg.CacheMaxPoints))
	buf.WriteString(fmt.Sprintf("cache_num_counters: %d", cfg.CacheNumCounters))
}

func (cfg *Config) Validate() error {
	if val := cfg.ParseConcurrency; val < 0 {
		return fmt.Errorf("invalid parse_concurrency '%d': must be >= 0", val)
	}
	if val := cfg.CacheMaxPoints; val < 0 {
		return fmt.Errorf("invalid cache_max_points '%d': must be >= 0", val)
	}
	if cfg.CacheMaxPoints > 0 && cfg.CacheNumCounters <= 0 {
		return fmt.Errorf("invalid cache_num_counters '%d': must be > 0 when the cache is enabled", cfg.CacheNumCounters)
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		CacheMaxPoints:   DEFAULT_CACHE_MAX_POINTS,
		CacheNumCounters: DEFAULT_CACHE_NUM_COUNTERS,
	}
}
