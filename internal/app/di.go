package app

import (
	"log/slog"

	"github.com/google/wire"

	"us-screener/internal/provider"
	"us-screener/internal/reconcile"
	"us-screener/internal/recorder"
	"us-screener/internal/screener"
	"us-screener/internal/slogx"
	"us-screener/internal/store"
	"us-screener/internal/universe"
)

// ConfigPath is the YAML file given on the command line; empty uses CONFIG_PATH or the default.
type ConfigPath string

// ProvideConfig loads and validates config (for Wire).
func ProvideConfig(path ConfigPath) (*Config, error) {
	cfg, err := LoadConfig(string(path))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideLogger builds the logger from config and installs it as the default (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	logger := slogx.NewDefault(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

// ProvideStore creates the cache store under DATA_DIR/cache (for Wire).
func ProvideStore(cfg *Config) *store.Store {
	return store.New(cfg.CacheDir(), cfg.Format())
}

// ProvideDataProvider creates the configured DataProvider (for Wire).
// The cleanup closes it.
func ProvideDataProvider(cfg *Config, logger *slog.Logger) (provider.DataProvider, func(), error) {
	dp, err := CreateProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using data provider", "provider", dp.GetName())
	return dp, func() {
		if err := dp.Close(); err != nil {
			logger.Warn("close provider", "error", err)
		}
	}, nil
}

// ProvideUniverse creates the ticker source (for Wire).
func ProvideUniverse(cfg *Config, dp provider.DataProvider) (universe.Source, error) {
	return CreateUniverse(cfg, dp)
}

// ProvideEngine creates the screening engine over the reconciler (for Wire).
func ProvideEngine(r *reconcile.Reconciler, cfg *Config) *screener.Engine {
	return screener.NewEngine(r, cfg.Screener)
}

// ProvideRecorder opens the SQLite run history, or a no-op recorder when SQLITE_PATH is empty (for Wire).
func ProvideRecorder(cfg *Config, logger *slog.Logger) (recorder.Recorder, func(), error) {
	if cfg.SQLitePath == "" {
		return recorder.NewNoopRecorder(), func() {}, nil
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return rec, func() {
		if err := rec.Close(); err != nil {
			logger.Warn("close recorder", "error", err)
		}
	}, nil
}

// ProviderSet is everything New needs.
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideStore,
	ProvideDataProvider,
	ProvideUniverse,
	reconcile.New,
	wire.Bind(new(reconcile.SeriesStore), new(*store.Store)),
	ProvideEngine,
	ProvideRecorder,
	New,
)
