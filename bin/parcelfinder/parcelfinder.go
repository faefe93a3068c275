package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/ParcelFinder/app_config"
	"github.com/UnownHash/ParcelFinder/db_store"
	"github.com/UnownHash/ParcelFinder/httpserver"
	"github.com/UnownHash/ParcelFinder/index"
	"github.com/UnownHash/ParcelFinder/index_manager"
	"github.com/UnownHash/ParcelFinder/parcel_loader"
	"github.com/UnownHash/ParcelFinder/pyroscope"
	"github.com/UnownHash/ParcelFinder/stats_collector"
	"github.com/UnownHash/ParcelFinder/version"
)

const (
	DEFAULT_CONFIG_FILENAME = "configs/parcelfinder.toml"
	CONFIG_ENV_VAR          = "PARCELFINDER_CONFIG"
)

func usage(flagSet *flag.FlagSet, output io.Writer) {
	fmt.Fprintf(output, "** ParcelFinder version %s **\n", version.APP_VERSION)
	fmt.Fprintf(output, "Usage: %s [-debug] [-help] [-f <config-filename>]\n", os.Args[0])
	fmt.Fprint(output, "\n")
	fmt.Fprintf(output, "The config filename may also be given with %s (or in .env).\n", CONFIG_ENV_VAR)
	fmt.Fprint(output, "\n")
	fmt.Fprint(output, "Options:\n")
	flagSet.SetOutput(output)
	flagSet.PrintDefaults()
	fmt.Fprint(output, "\n")
}

func defaultConfigFilename() string {
	if filename := os.Getenv(CONFIG_ENV_VAR); filename != "" {
		return filename
	}
	return DEFAULT_CONFIG_FILENAME
}

func createParcelLoader(logger *logrus.Logger, cfg *app_config.Config) (parcel_loader.ParcelLoader, func(), error) {
	if !cfg.UsesDB() {
		return parcel_loader.NewFileParcelLoader(logger, cfg.Parcels.Filename), func() {}, nil
	}

	dbStore, err := db_store.NewParcelsDBStore(*cfg.ParcelsDb, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create parcels dbStore: %w", err)
	}

	closeFn := func() {
		if err := dbStore.Close(); err != nil {
			logger.Warnf("failed to close parcels db: %v", err)
		}
	}

	return parcel_loader.NewDBParcelLoader(logger, dbStore), closeFn, nil
}

func main() {
	// .env is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helpFlag := flagSet.Bool("help", false, "help!")
	debugFlag := flagSet.Bool("debug", false, "override config and turn on debug logging")
	flagSet.BoolVar(helpFlag, "h", false, "help!")
	configFileFlag := flagSet.String("f", defaultConfigFilename(), "config file to use")

	err := flagSet.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s", err)
		usage(flagSet, os.Stderr)
		os.Exit(2)
	}

	if *helpFlag {
		usage(flagSet, os.Stdout)
		os.Exit(0)
	}

	if len(flagSet.Args()) != 0 {
		usage(flagSet, os.Stderr)
		os.Exit(1)
	}

	defaultConfig := app_config.GetDefaultConfig()
	configFilename := *configFileFlag
	cfg, err := app_config.LoadConfig(configFilename, defaultConfig)
	if err != nil {
		log.Fatal(err)
	}

	if *debugFlag {
		cfg.Logging.Debug = true
	}

	logger := cfg.CreateLogger(true)
	logger.Infof("STARTUP: Version %s. Config loaded from '%s'.", version.APP_VERSION, configFilename)

	statsCollector := stats_collector.GetStatsCollector(cfg)
	logger.Infof("STARTUP: using %s stats collector", statsCollector.Name())

	if cfg.Pyroscope.Enabled() {
		profiler, err := pyroscope.Start(logger, cfg.Pyroscope)
		if err != nil {
			logger.Errorf("STARTUP: Failed to Initialized pyroscope: %v", err)
		} else {
			logger.Info("STARTUP: Initialized pyroscope")
			defer profiler.Stop()
		}
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			// something else told us to exit
		case sig := <-sig_ch:
			logger.Infof("received signal '%s'", sig.String())
		}
	}()

	logger.Debugf("STARTUP: signal handler installed.")

	parcelLoader, closeLoaderFn, err := createParcelLoader(logger, cfg)
	if err != nil {
		logger.Fatal(err)
	}
	defer closeLoaderFn()

	logger.Infof("STARTUP: using %s parcel loader", parcelLoader.LoaderName())

	parcelIndex, err := index.NewParcelIndex(logger, cfg.Index)
	if err != nil {
		logger.Fatalf("failed to create parcel index: %v", err)
	}
	defer parcelIndex.Close()

	parcelIndex.LogConfiguration("STARTUP: Index config: ")

	indexManager, err := index_manager.NewIndexManager(index_manager.IndexManagerConfig{
		Logger:         logger,
		ParcelLoader:   parcelLoader,
		ParcelIndex:    parcelIndex,
		StatsCollector: statsCollector,
	}, cfg.Manager)
	if err != nil {
		logger.Fatalf("failed to create index manager: %v", err)
	}

	// a failed first load is not fatal: Run keeps retrying in the background.
	if err := indexManager.Reload(ctx); err != nil {
		logger.Errorf("STARTUP: initial parcel load failed: %v", err)
	} else {
		logger.Infof("STARTUP: initial parcel load done.")
	}

	reloadFn := func() error {
		newCfg, err := app_config.LoadConfig(configFilename, defaultConfig)
		if err != nil {
			return fmt.Errorf("failed to reload config file: %w", err)
		}
		if newCfg.Parcels != cfg.Parcels || newCfg.UsesDB() != cfg.UsesDB() {
			logger.Warnf("RELOAD: parcel source changes require a restart; keeping %s loader", parcelLoader.LoaderName())
		}
		if err := indexManager.LoadConfig(newCfg.Manager); err != nil {
			return fmt.Errorf("failed to reload index manager config: %w", err)
		}
		if err := indexManager.Reload(ctx); err != nil {
			return fmt.Errorf("failed to reload parcels: %w", err)
		}
		return nil
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				// something else told us to exit
				return
			case sig := <-sig_ch:
				logger.Infof("received signal '%s' -- Reloading config and parcels.", sig.String())
				err := reloadFn()
				if err == nil {
					logger.Infof("RELOAD: config and parcels reloaded")
				} else {
					logger.Errorf("RELOAD: %v", err)
				}
			}
		}
	}()
	logger.Debugf("STARTUP: installed reload (SIGHUP) handler")

	wg.Add(1)
	go func() {
		defer wg.Done()
		// shut down everything else if this bails early
		defer cancelFn()

		indexManager.Run(ctx)
	}()

	logger.Debugf("STARTUP: index manager started.")

	httpServer, err := httpserver.NewHTTPServer(logger, indexManager, statsCollector, reloadFn)
	if err != nil {
		logger.Fatalf("failed to create http server: %v", err)
	}

	logger.Infof("STARTUP: starting http server on %s (final step)", cfg.HTTP.Addr)
	err = httpServer.Run(ctx, cfg.HTTP.Addr, cfg.HTTP.ShutdownWait())
	if err != nil {
		logger.Fatalf("failed to run http server: %v", err)
	}

	// http server could have shut down early or not started. The defers
	// above will cancel and wait for things to shutdown cleanly.
}
