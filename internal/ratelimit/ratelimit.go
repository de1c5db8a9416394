// Package ratelimit throttles connection attempts per remote address.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows at most max connection attempts per remote address
// within a sliding window.
type Limiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
}

// New creates a Limiter allowing max attempts per window. A max of 0
// disables limiting.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		entries: make(map[string][]time.Time),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether addr may connect. Allowed attempts are
// recorded; denied ones are not.
func (l *Limiter) Allow(addr string) bool {
	if l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.entries[addr][:0]
	for _, t := range l.entries[addr] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.entries[addr] = recent
		return false
	}
	l.entries[addr] = append(recent, now)
	return true
}

// Prune drops addresses whose attempts have all aged out of the
// window, bounding memory for long-running servers.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for addr, times := range l.entries {
		live := false
		for _, t := range times {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.entries, addr)
		}
	}
}
