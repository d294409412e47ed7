// Package ratelimit provides a fixed-window request counter keyed by
// client identifier. State is process-local; the limiter is advisory,
// not a security boundary across multiple instances.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is the capability handed to call sites so the in-memory
// implementation can be swapped for a shared backing store.
type Limiter interface {
	Check(identifier string) Result
}

type Config struct {
	Window      time.Duration
	MaxRequests int
}

type entry struct {
	count   int
	resetAt time.Time
}

type FixedWindow struct {
	cfg     Config
	mu      sync.Mutex
	entries map[string]*entry
	sweep   rate.Sometimes
	now     func() time.Time
}

func NewFixedWindow(cfg Config) *FixedWindow {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 60
	}

	return &FixedWindow{
		cfg:     cfg,
		entries: map[string]*entry{},
		sweep:   rate.Sometimes{Interval: time.Minute},
		now:     time.Now,
	}
}

// Check counts one request for the identifier. The first request of a
// window (or any request after the window expired) resets the counter
// and is allowed; within a window requests are allowed up to the
// configured maximum, then denied without further counting.
func (l *FixedWindow) Check(identifier string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep.Do(func() { l.pruneLocked(now) })

	e, exists := l.entries[identifier]
	if !exists || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.cfg.Window)}
		l.entries[identifier] = e
		return Result{Allowed: true, Remaining: l.cfg.MaxRequests - 1, ResetAt: e.resetAt}
	}

	if e.count >= l.cfg.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}

	e.count++
	return Result{Allowed: true, Remaining: l.cfg.MaxRequests - e.count, ResetAt: e.resetAt}
}

func (l *FixedWindow) pruneLocked(now time.Time) {
	for id, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, id)
		}
	}
}
