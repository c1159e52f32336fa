// Package ratelimit throttles brute-force prone endpoints (sign-in and the
// admin setup key) per client address with a sliding window.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Result describes the state of one window after a request was counted.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window frees a slot.
func (r *Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}

// Limiter counts a request against key and reports whether it fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// SanitizeKeySegment escapes the key delimiter so a crafted segment cannot
// address another bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// sweepInterval bounds how long keys that are never seen again stay resident.
const sweepInterval = time.Minute

type window struct {
	stamps []time.Time
	length time.Duration
}

// InMemory keeps request timestamps per key. Single instance only.
type InMemory struct {
	mu        sync.Mutex
	windows   map[string]*window
	clock     func() time.Time
	lastSweep time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{windows: make(map[string]*window), clock: time.Now}
}

// Allow counts one request. A limit below 1 admits nothing.
func (l *InMemory) Allow(_ context.Context, key string, limit int, length time.Duration) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	l.sweep(now)

	stamps := prune(l.windows[key], length, now)
	resetAt := now.Add(length)
	if len(stamps) > 0 {
		resetAt = stamps[0].Add(length)
	}
	if len(stamps) >= limit {
		l.store(key, stamps, length)
		return &Result{Allowed: false, Limit: limit, ResetAt: resetAt}, nil
	}

	stamps = append(stamps, now)
	l.store(key, stamps, length)
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(length),
	}, nil
}

// Len reports how many keys are resident.
func (l *InMemory) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *InMemory) store(key string, stamps []time.Time, length time.Duration) {
	if len(stamps) == 0 {
		delete(l.windows, key)
		return
	}
	l.windows[key] = &window{stamps: stamps, length: length}
}

// sweep drops every key whose window has fully elapsed.
func (l *InMemory) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if len(prune(w, w.length, now)) == 0 {
			delete(l.windows, key)
		}
	}
}

// prune drops timestamps older than the window. Stamps are sorted ascending.
func prune(w *window, length time.Duration, now time.Time) []time.Time {
	if w == nil {
		return nil
	}
	cutoff := now.Add(-length)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	return w.stamps[i:]
}
