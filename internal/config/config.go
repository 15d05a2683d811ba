package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime tunables. Every value has a working default so the
// binary runs with an empty environment.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	// RetentionWindow is how long a soft-deleted note survives before the
	// sweeper purges it permanently.
	RetentionWindow time.Duration
	// DebounceInterval is the quiet period after the last edit before the
	// editor writes a dirty note.
	DebounceInterval time.Duration
	// SavedPulse is how long the transient "saved" signal stays visible.
	SavedPulse time.Duration
	// CacheCapacity is the total byte budget for cached documents.
	CacheCapacity int64
}

const (
	defaultRetentionWindow  = 30 * 24 * time.Hour
	defaultDebounceInterval = 2 * time.Second
	defaultSavedPulse       = 2 * time.Second
	defaultCacheCapacity    = 100 << 20 // 100 MiB
)

// Load reads NOTEDECK_* environment variables into a Config.
func Load() (Config, error) {
	cfg := Config{
		Port:             envOr("NOTEDECK_PORT", "8080"),
		DBPath:           envOr("NOTEDECK_DB_PATH", "notedeck.db"),
		LogLevel:         envOr("NOTEDECK_LOG_LEVEL", "info"),
		RetentionWindow:  defaultRetentionWindow,
		DebounceInterval: defaultDebounceInterval,
		SavedPulse:       defaultSavedPulse,
		CacheCapacity:    defaultCacheCapacity,
	}

	var err error
	if cfg.RetentionWindow, err = envDuration("NOTEDECK_RETENTION_WINDOW", cfg.RetentionWindow); err != nil {
		return Config{}, err
	}
	if cfg.DebounceInterval, err = envDuration("NOTEDECK_DEBOUNCE_INTERVAL", cfg.DebounceInterval); err != nil {
		return Config{}, err
	}
	if cfg.SavedPulse, err = envDuration("NOTEDECK_SAVED_PULSE", cfg.SavedPulse); err != nil {
		return Config{}, err
	}
	if raw := os.Getenv("NOTEDECK_CACHE_CAPACITY"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("NOTEDECK_CACHE_CAPACITY: invalid byte count %q", raw)
		}
		cfg.CacheCapacity = n
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %q", key, raw)
	}
	return d, nil
}
