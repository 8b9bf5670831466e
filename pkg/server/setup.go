package server

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nicktill/promcheck/pkg/api"
	"github.com/nicktill/promcheck/pkg/config"
	"github.com/nicktill/promcheck/pkg/export"
	"github.com/nicktill/promcheck/pkg/server/monitor"
	"github.com/nicktill/promcheck/pkg/source"
	"github.com/nicktill/promcheck/pkg/storage"
	"github.com/nicktill/promcheck/pkg/storage/badger"
	"github.com/nicktill/promcheck/pkg/validate"
)

// Config holds server configuration.
type Config struct {
	Port         string
	DataDir      string
	StoreDir     string
	Pattern      string
	Workers      int
	Retention    time.Duration
	MaxMemoryMB  int64
	MaxStorageGB int64
	RateLimit    float64
	LogLevel     string
	LogJSON      bool
	Watch        bool
}

// MaxStorageBytes returns the store size limit in bytes
func (c Config) MaxStorageBytes() int64 {
	return c.MaxStorageGB * 1024 * 1024 * 1024
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	workers := getEnvInt64("PROMCHECK_WORKERS", config.DefaultWorkers)
	if workers < 1 || workers > config.MaxWorkers {
		slog.Warn("worker count out of range, using default", "value", workers, "default", config.DefaultWorkers)
		workers = config.DefaultWorkers
	}

	return Config{
		Port:         getEnv("PORT", config.DefaultPort),
		DataDir:      getEnv("PROMCHECK_DATA_DIR", config.DefaultDataDir),
		StoreDir:     getEnv("PROMCHECK_STORE_DIR", config.DefaultStoreDir),
		Pattern:      getEnv("PROMCHECK_PATTERN", source.DefaultPattern),
		Workers:      int(workers),
		Retention:    time.Duration(getEnvInt64("PROMCHECK_REPORT_RETENTION_HOURS", config.DefaultRetentionHours)) * time.Hour,
		MaxMemoryMB:  getEnvInt64("PROMCHECK_MAX_MEMORY_MB", config.DefaultMaxMemoryMB),
		MaxStorageGB: getEnvInt64("PROMCHECK_MAX_STORAGE_GB", config.DefaultMaxStorageGB),
		RateLimit:    getEnvFloat("PROMCHECK_RATE_LIMIT", config.DefaultRateLimit),
		LogLevel:     getEnv("PROMCHECK_LOG_LEVEL", "info"),
		LogJSON:      getEnvBool("PROMCHECK_LOG_JSON", false),
		Watch:        getEnvBool("PROMCHECK_WATCH", true),
	}
}

// EnsureDirs creates the data and store directories if missing.
func EnsureDirs(cfg Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.StoreDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// InitializeStorage opens the BadgerDB report store.
func InitializeStorage(cfg Config, logger *slog.Logger) (storage.Storage, error) {
	logger.Info("opening report store", "path", cfg.StoreDir, "max_memory_mb", cfg.MaxMemoryMB)
	store, err := badger.New(badger.Config{
		Path:        cfg.StoreDir,
		MaxMemoryMB: cfg.MaxMemoryMB,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Handlers groups the request handlers built by InitializeHandlers.
type Handlers struct {
	API     *api.Handler
	Export  *export.Handler
	Hub     *api.ReportHub
	Metrics *api.Metrics
}

// InitializeHandlers creates and wires all request handlers.
func InitializeHandlers(cfg Config, store storage.Storage, diskMonitor *monitor.DiskMonitor, logger *slog.Logger) Handlers {
	fsys := source.NewFS()
	if cfg.Pattern != "" {
		fsys.Pattern = cfg.Pattern
	}

	validator := validate.New(fsys, fsys,
		validate.WithWorkers(cfg.Workers),
		validate.WithLogger(logger),
	)

	hub := api.NewReportHub(logger)
	metrics := api.NewMetrics()
	metrics.WatchHub(hub)

	apiHandler := api.NewHandler(store, validator, fsys, cfg.DataDir)
	apiHandler.SetLogger(logger)
	apiHandler.SetHub(hub)
	apiHandler.SetMetrics(metrics)
	if diskMonitor != nil {
		apiHandler.SetCapacityChecker(diskMonitor)
	}

	logger.Debug("handlers created", "data_dir", cfg.DataDir, "workers", cfg.Workers, "pattern", cfg.Pattern)

	return Handlers{
		API:     apiHandler,
		Export:  export.NewHandler(store, logger),
		Hub:     hub,
		Metrics: metrics,
	}
}

// getEnv gets a string from environment variable or returns default.
func getEnv(key, defaultValue string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultValue
}

// getEnvInt64 gets an int64 from environment variable or returns default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
		slog.Warn("invalid environment value, using default", "key", key, "value", val, "default", defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
		slog.Warn("invalid environment value, using default", "key", key, "value", val, "default", defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		slog.Warn("invalid environment value, using default", "key", key, "value", val, "default", defaultValue)
	}
	return defaultValue
}
