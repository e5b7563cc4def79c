// Package ratelimit implements the two request throttles in front of the API:
// a fixed-window per-route limiter and a multi-window limiter for metered
// upstream operations.
package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Basic tier defaults.
const (
	DefaultBasicWindow = time.Minute
	DefaultBasicMax    = 30
)

// Decision is the basic tier verdict.
type Decision struct {
	OK         bool
	RetryAfter int
}

// Limiter is implemented by the basic tier.
type Limiter interface {
	Allow(r *http.Request, routeKey string) Decision
}

type basicBucket struct {
	count int
	reset time.Time
}

// Basic is a fixed-window limiter keyed by client address and route.
type Basic struct {
	Window time.Duration
	Max    int
	Clock  func() time.Time

	mu      sync.Mutex
	buckets map[string]*basicBucket
}

// NewBasic returns a basic limiter; non-positive arguments use the defaults.
func NewBasic(window time.Duration, maxHits int) *Basic {
	if window <= 0 {
		window = DefaultBasicWindow
	}
	if maxHits <= 0 {
		maxHits = DefaultBasicMax
	}
	return &Basic{Window: window, Max: maxHits, buckets: make(map[string]*basicBucket)}
}

// Allow counts the request against ip:routeKey.
func (l *Basic) Allow(r *http.Request, routeKey string) Decision {
	key := ClientIP(r) + ":" + routeKey
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.buckets == nil {
		l.buckets = make(map[string]*basicBucket)
	}

	b, ok := l.buckets[key]
	if !ok || now.After(b.reset) {
		l.buckets[key] = &basicBucket{count: 1, reset: now.Add(l.window())}
		return Decision{OK: true}
	}

	if b.count >= l.max() {
		return Decision{OK: false, RetryAfter: ceilSeconds(b.reset.Sub(now))}
	}

	b.count++
	return Decision{OK: true}
}

// Prune drops expired buckets and returns how many were removed.
func (l *Basic) Prune() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if now.After(b.reset) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartJanitor prunes expired buckets every interval until ctx is done.
func (l *Basic) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Prune()
			}
		}
	}()
}

func (l *Basic) window() time.Duration {
	if l.Window <= 0 {
		return DefaultBasicWindow
	}
	return l.Window
}

func (l *Basic) max() int {
	if l.Max <= 0 {
		return DefaultBasicMax
	}
	return l.Max
}

func (l *Basic) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}
