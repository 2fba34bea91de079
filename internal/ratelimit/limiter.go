// Package ratelimit implements a fixed-window request limiter: a window
// opens at the first request for a key and a counter increments until the
// window expires, at which point the key is treated as brand-new again.
// This is deliberately not a sliding window or token bucket.
package ratelimit

import (
	"sync"
	"time"
)

const sweepInterval = time.Minute

type Config struct {
	Window      time.Duration
	MaxRequests int
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per key. All state is process-local and
// mutex-guarded; Limiter never returns errors. The consuming layer turns
// a limited verdict into a rejection.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	entries map[string]*entry
	done    chan struct{}

	now func() time.Time
}

func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go l.sweepLoop()
	return l
}

// Check records one request for key and reports whether it exceeds the
// window's budget. Keys are independent of each other.
func (l *Limiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.cfg.Window)}
		return false
	}

	e.count++
	return e.count > l.cfg.MaxRequests
}

// Remaining reports how many requests are left in key's live window, or the
// full budget when the key is unseen or its window has expired.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || l.now().After(e.resetAt) {
		return l.cfg.MaxRequests
	}
	if remaining := l.cfg.MaxRequests - e.count; remaining > 0 {
		return remaining
	}
	return 0
}

// ResetAt returns the end of key's window, if key has a live entry.
func (l *Limiter) ResetAt(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.resetAt, true
}

// Stop terminates the background sweep goroutine.
func (l *Limiter) Stop() {
	close(l.done)
}

// sweepLoop periodically drops expired entries. This only bounds memory;
// Check handles expired entries itself.
func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}
