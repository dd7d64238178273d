// Package cache provides a bounded TTL cache for analysis reports.
//
// It wraps hashicorp's expirable LRU: fixed capacity, per-entry TTL,
// background expiry. Entries are keyed by session revision, so cached
// reports can never outlive the snapshot they describe.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/fyrsmithlabs/decisiond/internal/decision"
)

// Config configures the report cache.
type Config struct {
	// Size is the maximum number of cached reports (default: 256).
	Size int

	// TTL is how long an entry stays valid (default: 5m).
	TTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Size: 256,
		TTL:  5 * time.Minute,
	}
}

// ReportCache memoizes comprehensive reports per session revision.
type ReportCache struct {
	lru *expirable.LRU[string, *decision.ComprehensiveReport]
}

// New creates a report cache.
func New(cfg *Config) *ReportCache {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ReportCache{
		lru: expirable.NewLRU[string, *decision.ComprehensiveReport](cfg.Size, nil, cfg.TTL),
	}
}

// Get returns the cached report for key, if present and unexpired.
func (c *ReportCache) Get(key string) (*decision.ComprehensiveReport, bool) {
	return c.lru.Get(key)
}

// Add stores a report under key.
func (c *ReportCache) Add(key string, report *decision.ComprehensiveReport) {
	c.lru.Add(key, report)
}

// Len reports the number of live entries.
func (c *ReportCache) Len() int {
	return c.lru.Len()
}
