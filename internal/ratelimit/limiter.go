package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval is how often expired counters are deleted.
const DefaultSweepInterval = 60 * time.Second

// Result is the outcome of a quota check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter enforces fixed-window request quotas in process memory.
//
// Counters are keyed by (preset, identifier), so a client exhausting its AUTH
// quota keeps its STANDARD quota intact. The window is fixed, not sliding: a
// burst straddling a window boundary can briefly see up to twice the quota.
// That is an accepted policy trade-off.
//
// State is per process. In a horizontally scaled deployment each instance
// counts independently, making the limit best-effort; use RedisLimiter when a
// global quota is required.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	sweep   *time.Ticker
	stop    chan struct{}
	log     *zap.Logger
}

// New creates a limiter and starts its background sweep at
// DefaultSweepInterval. Call Close to stop the sweep and release state.
func New(log *zap.Logger) *Limiter {
	return NewWithSweepInterval(log, DefaultSweepInterval)
}

// NewWithSweepInterval creates a limiter with a custom sweep interval.
// Intended for tests that cannot wait a full minute.
func NewWithSweepInterval(log *zap.Logger, interval time.Duration) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		sweep:   time.NewTicker(interval),
		stop:    make(chan struct{}),
		log:     log,
	}
	go l.sweepLoop()
	return l
}

// Check applies the fixed-window rules for one request under the given quota.
// It never fails: the only outcomes are allowed and denied.
func (l *Limiter) Check(identifier string, maxRequests int, window time.Duration) Result {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok || !now.Before(e.resetAt) {
		// First request from this identifier, or the window has elapsed.
		e = &entry{count: 1, resetAt: now.Add(window)}
		l.entries[identifier] = e
		return Result{Allowed: true, Limit: maxRequests, Remaining: maxRequests - 1, ResetAt: e.resetAt}
	}

	if e.count < maxRequests {
		e.count++
		return Result{Allowed: true, Limit: maxRequests, Remaining: maxRequests - e.count, ResetAt: e.resetAt}
	}

	// Quota exhausted; the caller waits out the existing window.
	return Result{Allowed: false, Limit: maxRequests, Remaining: 0, ResetAt: e.resetAt}
}

// Allow checks one request against a named preset.
func (l *Limiter) Allow(identifier string, p Preset) Result {
	return l.Check(p.Name+":"+identifier, p.MaxRequests, p.Window)
}

// Len reports how many counters are currently held. Used by tests and the
// health endpoint.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close stops the background sweep and clears all counters. Safe to call
// once; intended for shutdown and test teardown.
func (l *Limiter) Close() {
	close(l.stop)
	l.sweep.Stop()
	l.mu.Lock()
	l.entries = make(map[string]*entry)
	l.mu.Unlock()
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.stop:
			return
		case <-l.sweep.C:
			l.removeExpired()
		}
	}
}

// removeExpired deletes counters whose window has already elapsed, bounding
// memory growth from abandoned identifiers.
func (l *Limiter) removeExpired() {
	now := time.Now()
	removed := 0

	l.mu.Lock()
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	remaining := len(l.entries)
	l.mu.Unlock()

	if removed > 0 {
		l.log.Debug("rate_limit_sweep",
			zap.Int("removed", removed),
			zap.Int("remaining", remaining),
		)
	}
}
