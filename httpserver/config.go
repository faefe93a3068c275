package httpserver

import (
	"errors"
	"time"
)

const (
	DEFAULT_HTTP_ADDR             = "127.0.0.1:9042"
	DEFAULT_SHUTDOWN_WAIT_SECONDS = 5
)

type Config struct {
	Addr                string `koanf:"addr" json:"addr"`
	ShutdownWaitSeconds int    `koanf:"shutdown_wait_seconds" json:"shutdown_wait_seconds"`
}

func (cfg *Config) ShutdownWait() time.Duration {
	return time.Second * time.Duration(cfg.ShutdownWaitSeconds)
}

func (cfg *Config) Validate() error {
	if cfg.Addr == "" {
		return errors.New("no http addr configured")
	}
	if cfg.ShutdownWaitSeconds < 0 {
		return errors.New("http shutdown_wait_seconds must be >= 0")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Addr:                DEFAULT_HTTP_ADDR,
		ShutdownWaitSeconds: DEFAULT_SHUTDOWN_WAIT_SECONDS,
	}
}
