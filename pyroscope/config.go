package pyroscope

import (
	"errors"
	"strings"
)

const DEFAULT_APPLICATION_NAME = "parcelfinder"

type Config struct {
	ApplicationName      string            `koanf:"application_name" json:"application_name"`
	ServerAddress        string            `koanf:"server_address" json:"server_address"`
	ApiKey               string            `koanf:"api_key" json:"-"`
	BasicAuthUser        string            `koanf:"basic_auth_user" json:"basic_auth_user"`
	BasicAuthPassword    string            `koanf:"basic_auth_password" json:"-"`
	Tags                 map[string]string `koanf:"tags" json:"tags"`
	MutexProfileFraction int               `koanf:"mutex_profile_fraction" json:"mutex_profile_fraction"`
	BlockProfileRate     int               `koanf:"block_profile_rate" json:"block_profile_rate"`
}

// Enabled is true when a server address is configured.
func (cfg *Config) Enabled() bool {
	return cfg.ServerAddress != ""
}

func (cfg *Config) Validate() error {
	if !cfg.Enabled() {
		return nil
	}
	if !strings.HasPrefix(cfg.ServerAddress, "http://") && !strings.HasPrefix(cfg.ServerAddress, "https://") {
		return errors.New("pyroscope server_address must be an http:// or https:// url")
	}
	if cfg.ApiKey != "" && cfg.BasicAuthUser != "" {
		return errors.New("pyroscope: only one of api_key or basic_auth_user may be set")
	}
	if cfg.MutexProfileFraction < 0 || cfg.BlockProfileRate < 0 {
		return errors.New("pyroscope profile rates must be >= 0")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		ApplicationName: DEFAULT_APPLICATION_NAME,
	}
}
