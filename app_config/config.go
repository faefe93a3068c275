package app_config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/ParcelFinder/db_store"
	"github.com/UnownHash/ParcelFinder/httpserver"
	"github.com/UnownHash/ParcelFinder/index"
	"github.com/UnownHash/ParcelFinder/index_manager"
	"github.com/UnownHash/ParcelFinder/logging"
	"github.com/UnownHash/ParcelFinder/pyroscope"
	"github.com/UnownHash/ParcelFinder/stats_collector"
)

// ParcelsFileConfig configures the JSON project file loader.
type ParcelsFileConfig struct {
	Filename string `koanf:"filename" json:"filename"`
}

type Config struct {
	Logging logging.Config    `koanf:"logging" json:"logging"`
	HTTP    httpserver.Config `koanf:"http" json:"http"`

	Index   index.Config         `koanf:"index" json:"index"`
	Manager index_manager.Config `koanf:"manager" json:"manager"`

	// exactly one of these picks the parcel loader.
	Parcels   ParcelsFileConfig  `koanf:"parcels" json:"parcels"`
	ParcelsDb *db_store.DBConfig `koanf:"parcels_db" json:"-"`

	Prometheus stats_collector.PrometheusConfig `koanf:"prometheus" json:"prometheus"`
	Pyroscope  pyroscope.Config                 `koanf:"pyroscope" json:"pyroscope"`
}

func (cfg *Config) CreateLogger(rotate bool) *logrus.Logger {
	return cfg.Logging.CreateLogger(rotate, true)
}

func (cfg *Config) GetPrometheusConfig() stats_collector.PrometheusConfig {
	return cfg.Prometheus
}

// UsesDB is true when parcels come from the database instead of a file.
func (cfg *Config) UsesDB() bool {
	return cfg.ParcelsDb != nil
}

func (cfg *Config) Validate() error {
	if err := cfg.Logging.Validate(); err != nil {
		return err
	}

	if err := cfg.HTTP.Validate(); err != nil {
		return err
	}

	if err := cfg.Index.Validate(); err != nil {
		return err
	}

	if err := cfg.Manager.Validate(); err != nil {
		return err
	}

	switch {
	case cfg.ParcelsDb != nil && cfg.Parcels.Filename != "":
		return errors.New("only one of parcels.filename or parcels_db may be configured")
	case cfg.ParcelsDb != nil:
		if err := cfg.ParcelsDb.Validate(); err != nil {
			return fmt.Errorf("parcels_db: %w", err)
		}
	case cfg.Parcels.Filename == "":
		return errors.New("no parcel source configured: set parcels.filename or parcels_db")
	}

	if err := cfg.Prometheus.Validate(); err != nil {
		return err
	}

	if err := cfg.Pyroscope.Validate(); err != nil {
		return err
	}

	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Logging: logging.GetDefaultConfig(),
		HTTP:    httpserver.GetDefaultConfig(),

		Index:   index.GetDefaultConfig(),
		Manager: index_manager.GetDefaultConfig(),

		Prometheus: stats_collector.GetDefaultPrometheusConfig(),
		Pyroscope:  pyroscope.GetDefaultConfig(),
	}
}

func LoadConfig(filename string, defaultConfig Config) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("couldn't open '%s': %w", filename, err)
	}
	f.Close()

	k := koanf.New(".")
	err = k.Load(structs.Provider(defaultConfig, "koanf"), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't load default config: %w", err)
	}

	err = k.Load(file.Provider(filename), toml.Parser())
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
