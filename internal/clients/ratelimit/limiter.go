// Package ratelimit provides per-source sliding-window call budgets for
// the market data providers.
package ratelimit

import (
	"sync"
	"time"

	"github.com/edgehunter/edgehunter/internal/clients/marketdata"
)

const window = 60 * time.Second

// Limiter tracks call timestamps per source within a trailing 60 second
// window and enforces each source's configured per-minute budget.
//
// The limiter never blocks or sleeps; callers decide whether to wait,
// retry, or abort. Multiple detectors hit the same source concurrently
// (sector laggard and crypto correlation both use yahooFinance), so the
// per-source state is guarded by a mutex.
type Limiter struct {
	mu      sync.Mutex
	calls   map[string][]time.Time
	sources map[string]marketdata.SourceConfig
	now     func() time.Time
}

// New creates a limiter over the global source registry.
func New() *Limiter {
	return NewWithSources(marketdata.Sources)
}

// NewWithSources creates a limiter with an explicit source registry.
// Used by tests to control budgets.
func NewWithSources(sources map[string]marketdata.SourceConfig) *Limiter {
	return &Limiter{
		calls:   make(map[string][]time.Time),
		sources: sources,
		now:     time.Now,
	}
}

// CanMakeCall reports whether a call to source is within budget.
// When it is, the call is recorded; when it is not, nothing is recorded.
// Sources without a configuration always report false (fail closed).
func (l *Limiter) CanMakeCall(source string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.sources[source]
	if !ok {
		return false
	}

	now := l.now()
	recent := l.prune(source, now)

	if len(recent) >= cfg.RateLimit {
		l.calls[source] = recent
		return false
	}

	l.calls[source] = append(recent, now)
	return true
}

// WaitTime returns how long until the source's window frees up.
// Zero when the source is under budget or unknown.
func (l *Limiter) WaitTime(source string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg, ok := l.sources[source]
	if !ok {
		return 0
	}

	now := l.now()
	recent := l.prune(source, now)
	l.calls[source] = recent

	if len(recent) < cfg.RateLimit || len(recent) == 0 {
		return 0
	}

	oldest := recent[0]
	wait := window - now.Sub(oldest)
	if wait < 0 {
		return 0
	}
	return wait
}

// prune drops timestamps older than the window. Timestamps are appended
// in order, so the surviving slice stays sorted and index 0 is oldest.
func (l *Limiter) prune(source string, now time.Time) []time.Time {
	history := l.calls[source]
	recent := history[:0:0]
	for _, t := range history {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}
	return recent
}
