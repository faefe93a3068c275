package index_manager

import (
	"bytes"
	"fmt"
	"time"
)

const (
	DEFAULT_MIN_REBUILD_INTERVAL_SECONDS = 5
	DEFAULT_RETRY_INTERVAL_SECONDS       = 60
	DEFAULT_REBUILD_TIMEOUT_SECONDS      = 120
	DEFAULT_LOG_INTERVAL_SECONDS         = 60
)

type Config struct {
	// Background rebuilds happen at most this often. Requests in between
	// are coalesced into one rebuild.
	MinRebuildIntervalSeconds int `koanf:"min_rebuild_interval_seconds" json:"min_rebuild_interval_seconds"`
	// After a failed background rebuild, try again after this long.
	RetryIntervalSeconds int `koanf:"retry_interval_seconds" json:"retry_interval_seconds"`
	// Give up on a load+rebuild after this long. The old snapshot stays.
	RebuildTimeoutSeconds int `koanf:"rebuild_timeout_seconds" json:"rebuild_timeout_seconds"`
	// How often to log query counts.
	LogIntervalSeconds int `koanf:"log_interval_seconds" json:"log_interval_seconds"`
}

func (cfg *Config) writeConfiguration(buf *bytes.Buffer) {
	buf.WriteString(fmt.Sprintf("min_rebuild_interval_seconds: %d, ", cfg.MinRebuildIntervalSeconds))
	buf.WriteString(fmt.Sprintf("retry_interval_seconds: %d, ", cfg.RetryIntervalSeconds))
	buf.WriteString(fmt.Sprintf("rebuild_timeout_seconds: %d, ", cfg.RebuildTimeoutSeconds))
	buf.WriteString(fmt.Sprintf("log_interval_seconds: %d", cfg.LogIntervalSeconds))
}

func (cfg *Config) MinRebuildInterval() time.Duration {
	return time.Second * time.Duration(cfg.MinRebuildIntervalSeconds)
}

func (cfg *Config) RetryInterval() time.Duration {
	return time.Second * time.Duration(cfg.RetryIntervalSeconds)
}

func (cfg *Config) RebuildTimeout() time.Duration {
	return time.Second * time.Duration(cfg.RebuildTimeoutSeconds)
}

func (cfg *Config) LogInterval() time.Duration {
	return time.Second * time.Duration(cfg.LogIntervalSeconds)
}

func GetDefaultConfig() Config {
	return Config{
		MinRebuildIntervalSeconds: DEFAULT_MIN_REBUILD_INTERVAL_SECONDS,
		RetryIntervalSeconds:      DEFAULT_RETRY_INTERVAL_SECONDS,
		RebuildTimeoutSeconds:     DEFAULT_REBUILD_TIMEOUT_SECONDS,
		LogIntervalSeconds:        DEFAULT_LOG_INTERVAL_SECONDS,
	}
}

func (cfg *Config) Validate() error {
	if val := cfg.MinRebuildIntervalSeconds; val < 0 {
		return fmt.Errorf("invalid min_rebuild_interval_seconds '%d': must be >= 0", val)
	}
	if val := cfg.RetryIntervalSeconds; val < 1 {
		return fmt.Errorf("invalid retry_interval_seconds '%d': must be > 0", val)
	}
	if val := cfg.RebuildTimeoutSeconds; val < 1 {
		return fmt.Errorf("invalid rebuild_timeout_seconds '%d': must be > 0", val)
	}
	if val := cfg.LogIntervalSeconds; val < 1 {
		return fmt.Errorf("invalid log_interval_seconds '%d': must be > 0", val)
	}
	return nil
}
