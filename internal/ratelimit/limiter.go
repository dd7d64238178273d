// Package ratelimit provides advisory per-key rate limiting for tool
// calls. Exceeding the limit yields an error with a retry-after hint;
// nothing is queued and no backpressure is applied.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/decisiond/internal/session"
)

// Config configures the limiter.
type Config struct {
	// RPS is the sustained allowed rate per key (default: 10).
	RPS float64

	// Burst is the instantaneous allowance per key (default: 20).
	Burst int

	// SweepInterval controls housekeeping of idle per-key limiters
	// (default: 5m). Sweeping is not part of request correctness.
	SweepInterval time.Duration

	// IdleTTL is how long an unused key's limiter survives a sweep
	// (default: 10m).
	IdleTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RPS:           10,
		Burst:         20,
		SweepInterval: 5 * time.Minute,
		IdleTTL:       10 * time.Minute,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per identifier (session id, or a
// caller-chosen global key).
type Limiter struct {
	config *Config
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	done    chan struct{}
	once    sync.Once
}

// New creates a limiter and starts its background sweep.
func New(cfg *Config, logger *zap.Logger) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Limiter{
		config:  cfg,
		logger:  logger,
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow consumes one token for key. Returns a RateLimitError with a
// retry-after hint when the bucket is empty.
func (l *Limiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst)}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	l.mu.Unlock()

	if e.limiter.Allow() {
		return nil
	}

	// Reservation tells us when the next token lands; cancel it so we
	// do not actually consume it.
	res := e.limiter.Reserve()
	delay := res.Delay()
	res.Cancel()

	l.logger.Warn("rate limit exceeded",
		zap.String("key", key),
		zap.Duration("retry_after", delay),
	)
	return &session.RateLimitError{RetryAfter: delay}
}

// sweep drops limiters for keys idle past the TTL.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.config.IdleTTL)
			l.mu.Lock()
			for key, e := range l.entries {
				if e.lastSeen.Before(cutoff) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the background sweep.
func (l *Limiter) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}
