// Package config provides configuration loading for decisiond.
//
// Precedence (highest to lowest): environment variables, YAML config
// file, hardcoded defaults. Environment variables are uppercased with
// underscore separators: LOG_LEVEL -> log.level, STORE_BACKEND ->
// store.backend, RATELIMIT_RPS -> ratelimit.rps.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the full decisiond configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Cache     CacheConfig     `koanf:"cache"`
	Session   SessionConfig   `koanf:"session"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `koanf:"backend"`

	// Path is the SQLite database file, used when Backend is sqlite.
	Path string `koanf:"path"`
}

// RateLimitConfig controls advisory per-session rate limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// CacheConfig controls the analysis report cache.
type CacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// SessionConfig controls session lifecycle housekeeping.
type SessionConfig struct {
	// TTL is the soft expiry reported by validators (default: 24h).
	TTL time.Duration `koanf:"ttl"`

	// AuditCapacity bounds the in-memory audit ring.
	AuditCapacity int `koanf:"audit_capacity"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables it.
	Addr string `koanf:"addr"`
}

// Default returns the hardcoded defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: "memory",
			Path:    defaultDBPath(),
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  5 * time.Minute,
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			AuditCapacity: 1024,
		},
		Metrics: MetricsConfig{},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "decisiond.db"
	}
	return home + "/.local/share/decisiond/sessions.db"
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid store backend %q (memory or sqlite)", c.Store.Backend)
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("ratelimit.rps must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("ratelimit.burst must be positive")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}
