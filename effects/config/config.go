package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/on-the-ground/effect_ive_engine/effects/configkeys"
	"github.com/on-the-ground/effect_ive_engine/effects/log"
	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Database backends.
const (
	BackendMemDB  = "memdb"
	BackendSQLite = "sqlite"
)

const (
	defaultSQLitePath       = "effect_engine.db"
	defaultCacheNumCounters = 1e5
	defaultCacheMaxCost     = 1 << 26
	defaultPoolBufferSize   = 64
	defaultPoolNumWorkers   = 4
	defaultConsumeTimeout   = time.Second
)

// Config holds the engine's wiring configuration.
type Config struct {
	LogLevel         log.LogLevel
	DatabaseBackend  string
	SQLitePath       string
	CacheNumCounters int64
	CacheMaxCost     int64
	// AuthSecret is empty unless configured; callers generate one.
	AuthSecret     string
	Pool           effectmodel.EffectScopeConfig
	ConsumeTimeout time.Duration
}

// Default is the configuration with nothing set.
func Default() Config {
	return Config{
		LogLevel:         log.LogInfo,
		DatabaseBackend:  BackendMemDB,
		SQLitePath:       defaultSQLitePath,
		CacheNumCounters: defaultCacheNumCounters,
		CacheMaxCost:     defaultCacheMaxCost,
		Pool:             effectmodel.NewEffectScopeConfig(defaultPoolBufferSize, defaultPoolNumWorkers),
		ConsumeTimeout:   defaultConsumeTimeout,
	}
}

// Load reads configuration through lookup, falling back to defaults for
// unset keys. Every malformed value is reported.
func Load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	if v, ok := lookup(configkeys.ConfigLogLevel); ok && v != "" {
		level, err := log.ParseLogLevel(strings.ToLower(v))
		errs = append(errs, err)
		if err == nil {
			cfg.LogLevel = level
		}
	}
	if v, ok := lookup(configkeys.ConfigDatabaseBackend); ok && v != "" {
		switch b := strings.ToLower(v); b {
		case BackendMemDB, BackendSQLite:
			cfg.DatabaseBackend = b
		default:
			errs = append(errs, fmt.Errorf("%s: unknown backend %q", configkeys.ConfigDatabaseBackend, v))
		}
	}
	if v, ok := lookup(configkeys.ConfigDatabaseSQLitePath); ok && v != "" {
		cfg.SQLitePath = v
	}
	if v, ok := lookup(configkeys.ConfigAuthSecret); ok {
		cfg.AuthSecret = v
	}

	cfg.CacheNumCounters = int64Of(lookup, configkeys.ConfigCacheNumCounters, cfg.CacheNumCounters, &errs)
	cfg.CacheMaxCost = int64Of(lookup, configkeys.ConfigCacheMaxCost, cfg.CacheMaxCost, &errs)
	cfg.Pool = effectmodel.NewEffectScopeConfig(
		int(int64Of(lookup, configkeys.ConfigPoolBufferSize, int64(cfg.Pool.BufferSize), &errs)),
		int(int64Of(lookup, configkeys.ConfigPoolNumWorkers, int64(cfg.Pool.NumWorkers), &errs)),
	)

	if v, ok := lookup(configkeys.ConfigMessagingConsumeTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", configkeys.ConfigMessagingConsumeTimeout, err))
		case d < 0:
			errs = append(errs, fmt.Errorf("%s: must not be negative", configkeys.ConfigMessagingConsumeTimeout))
		default:
			cfg.ConsumeTimeout = d
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv reads configuration from the process environment.
func LoadEnv() (Config, error) {
	return Load(os.LookupEnv)
}

func int64Of(lookup func(string) (string, bool), key string, def int64, errs *[]error) int64 {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}
