package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"
)

// DefaultSweepProbability is the chance that a check also sweeps stale buckets.
const DefaultSweepProbability = 0.001

// Store persists AI-tier buckets. Get returns nil, nil for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (*Bucket, error)
	Set(ctx context.Context, key string, b *Bucket) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// AILimiter applies per-minute, per-hour and per-day caps with escalating
// cooldowns for repeat offenders.
type AILimiter struct {
	Store      Store
	Operations map[Operation]OperationConfig
	Clock      func() time.Time
	// Rand returns a value in [0,1); it decides when to sweep.
	Rand             func() float64
	SweepProbability float64
	// OnSweepError receives failures of the sweep that rides along with a
	// check. The check itself proceeds.
	OnSweepError func(error)

	mu sync.Mutex
}

// NewAILimiter returns a limiter over store using the given table, or
// DefaultOperations when table is nil.
func NewAILimiter(store Store, table map[Operation]OperationConfig) *AILimiter {
	if store == nil {
		store = NewMemoryStore()
	}
	if table == nil {
		table = DefaultOperations
	}
	return &AILimiter{
		Store:            store,
		Operations:       table,
		SweepProbability: DefaultSweepProbability,
	}
}

// Key returns the bucket key for a client and operation.
func Key(ip string, op Operation) string {
	return fmt.Sprintf("ai:%s:%s", ip, op)
}

// Check counts the request against the caller's bucket for op.
func (l *AILimiter) Check(ctx context.Context, r *http.Request, op Operation) (*Result, error) {
	return l.CheckIP(ctx, AIClientIP(r), op)
}

// CheckIP is Check for an already resolved client address.
func (l *AILimiter) CheckIP(ctx context.Context, ip string, op Operation) (*Result, error) {
	cfg, err := l.config(op)
	if err != nil {
		return nil, err
	}

	if l.random() < l.sweepProbability() {
		if _, err := l.Sweep(ctx); err != nil && l.OnSweepError != nil {
			l.OnSweepError(fmt.Errorf("sweep buckets: %w", err))
		}
	}

	key := Key(ip, op)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load bucket: %w", err)
	}
	if b == nil {
		b = NewBucket(now)
	}

	Roll(b, now)
	res := Evaluate(b, cfg, now)

	if err := l.Store.Set(ctx, key, b); err != nil {
		return nil, fmt.Errorf("store bucket: %w", err)
	}
	return &res, nil
}

// Sweep deletes buckets whose day window expired more than a day ago.
func (l *AILimiter) Sweep(ctx context.Context) (int, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	keys, err := l.Store.Keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		b, err := l.Store.Get(ctx, key)
		if err != nil {
			return removed, err
		}
		if b == nil || !Expired(b, now) {
			continue
		}
		if err := l.Store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// WindowUsage is the count and cap of one window.
type WindowUsage struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Usage reports a client's consumption of one operation.
type Usage struct {
	Minute     WindowUsage `json:"minute"`
	Hour       WindowUsage `json:"hour"`
	Day        WindowUsage `json:"day"`
	Violations int         `json:"violations"`
	TotalCost  int         `json:"totalCost"`
}

// Usage returns the stored usage for ip and op, or nil when the client has no
// bucket yet.
func (l *AILimiter) Usage(ctx context.Context, ip string, op Operation) (*Usage, error) {
	cfg, err := l.config(op)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	b, err := l.Store.Get(ctx, Key(ip, op))
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	return &Usage{
		Minute:     WindowUsage{Current: b.MinuteCount, Max: cfg.PerMinute},
		Hour:       WindowUsage{Current: b.HourCount, Max: cfg.PerHour},
		Day:        WindowUsage{Current: b.DayCount, Max: cfg.PerDay},
		Violations: b.Violations,
		TotalCost:  b.TotalCost,
	}, nil
}

// FormatMessage renders a result as a sentence suitable for end users.
func FormatMessage(res *Result) string {
	if res == nil {
		return ""
	}
	if res.Allowed {
		return fmt.Sprintf("Request successful. %d requests remaining this minute.", res.Remaining.Minute)
	}

	unit := "day"
	switch res.Limit.Window {
	case "minute", "hour":
		unit = res.Limit.Window
	}

	msg := fmt.Sprintf("Rate limit exceeded. You've made %d requests this %s (limit: %d). Please try again in %d seconds.",
		res.Limit.Current, unit, res.Limit.Max, res.RetryAfter)
	if res.Violation != nil && res.Violation.Count > 1 {
		msg += fmt.Sprintf(" Additional %ds penalty applied for repeated violations.", res.Violation.Penalty)
	}
	return msg
}

func (l *AILimiter) config(op Operation) (OperationConfig, error) {
	table := l.Operations
	if table == nil {
		table = DefaultOperations
	}
	cfg, ok := table[op]
	if !ok {
		return OperationConfig{}, &UnknownOperationError{Operation: op}
	}
	return cfg, nil
}

func (l *AILimiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}

func (l *AILimiter) random() float64 {
	if l.Rand != nil {
		return l.Rand()
	}
	return rand.Float64()
}

func (l *AILimiter) sweepProbability() float64 {
	if l.SweepProbability < 0 {
		return 0
	}
	return l.SweepProbability
}
