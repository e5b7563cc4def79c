package ratelimit

import (
	"math"
	"time"
)

// Window lengths for the AI tier.
const (
	MinuteWindow = time.Minute
	HourWindow   = time.Hour
	DayWindow    = 24 * time.Hour
)

// WindowPenalty is reported when a client is inside its violation cooldown.
const WindowPenalty = "violation_penalty"

// Bucket is the per-client, per-operation counter state.
type Bucket struct {
	MinuteCount   int       `json:"minuteCount"`
	MinuteReset   time.Time `json:"minuteReset"`
	HourCount     int       `json:"hourCount"`
	HourReset     time.Time `json:"hourReset"`
	DayCount      int       `json:"dayCount"`
	DayReset      time.Time `json:"dayReset"`
	Violations    int       `json:"violations"`
	LastViolation time.Time `json:"lastViolation"`
	TotalCost     int       `json:"totalCost"`
}

// NewBucket returns an empty bucket whose windows start at now.
func NewBucket(now time.Time) *Bucket {
	return &Bucket{
		MinuteReset: now.Add(MinuteWindow),
		HourReset:   now.Add(HourWindow),
		DayReset:    now.Add(DayWindow),
	}
}

// Roll resets every window whose reset instant has passed. Rolling the day
// window also clears the cost accumulator and forgives two violations.
func Roll(b *Bucket, now time.Time) {
	if now.After(b.MinuteReset) {
		b.MinuteCount = 0
		b.MinuteReset = now.Add(MinuteWindow)
	}
	if now.After(b.HourReset) {
		b.HourCount = 0
		b.HourReset = now.Add(HourWindow)
	}
	if now.After(b.DayReset) {
		b.DayCount = 0
		b.DayReset = now.Add(DayWindow)
		b.TotalCost = 0
		b.Violations = max(0, b.Violations-2)
	}
}

// Penalty is the cooldown applied after repeated violations.
func Penalty(violations int) time.Duration {
	switch {
	case violations <= 1:
		return 0
	case violations <= 3:
		return 30 * time.Second
	case violations <= 5:
		return 120 * time.Second
	case violations <= 10:
		return 300 * time.Second
	default:
		return 600 * time.Second
	}
}

// Limit names the window that decided a result.
type Limit struct {
	Current int    `json:"current"`
	Max     int    `json:"max"`
	Window  string `json:"window"`
}

// Remaining is the headroom left in each window.
type Remaining struct {
	Minute int `json:"minute"`
	Hour   int `json:"hour"`
	Day    int `json:"day"`
}

// Violation describes the repeat-offender state attached to a rejection.
type Violation struct {
	Count   int `json:"count"`
	Penalty int `json:"penalty"`
}

// Result is the outcome of an AI-tier check.
type Result struct {
	Allowed    bool       `json:"allowed"`
	RetryAfter int        `json:"retryAfter"`
	Limit      Limit      `json:"limit"`
	Remaining  Remaining  `json:"remaining"`
	ResetTime  time.Time  `json:"resetTime"`
	Violation  *Violation `json:"violation,omitempty"`
}

// Evaluate decides whether one more request fits in b and mutates b
// accordingly. b must already be rolled to now.
func Evaluate(b *Bucket, cfg OperationConfig, now time.Time) Result {
	penalty := Penalty(b.Violations)
	cooldown := b.LastViolation.Add(penalty)
	if now.Before(cooldown) {
		return Result{
			RetryAfter: ceilSeconds(cooldown.Sub(now)),
			Limit:      Limit{Current: b.Violations, Max: 0, Window: WindowPenalty},
			Remaining:  remaining(b, cfg),
			ResetTime:  cooldown,
			Violation:  &Violation{Count: b.Violations, Penalty: int(penalty / time.Second)},
		}
	}

	var (
		window  string
		current int
		limit   int
		reset   time.Time
	)
	switch {
	case b.MinuteCount >= cfg.PerMinute:
		window, current, limit, reset = "minute", b.MinuteCount, cfg.PerMinute, b.MinuteReset
	case b.HourCount >= cfg.PerHour:
		window, current, limit, reset = "hour", b.HourCount, cfg.PerHour, b.HourReset
	case b.DayCount >= cfg.PerDay:
		window, current, limit, reset = "day", b.DayCount, cfg.PerDay, b.DayReset
	}

	if window != "" {
		b.Violations++
		b.LastViolation = now
		res := Result{
			RetryAfter: ceilSeconds(reset.Sub(now)),
			Limit:      Limit{Current: current, Max: limit, Window: window},
			Remaining:  remaining(b, cfg),
			ResetTime:  reset,
		}
		if b.Violations > 1 {
			// the penalty reported is the one in force before this violation
			res.Violation = &Violation{Count: b.Violations, Penalty: int(penalty / time.Second)}
		}
		return res
	}

	b.MinuteCount++
	b.HourCount++
	b.DayCount++
	b.TotalCost += cfg.CostWeight

	return Result{
		Allowed:   true,
		Limit:     Limit{Current: b.MinuteCount, Max: cfg.PerMinute, Window: "minute"},
		Remaining: remaining(b, cfg),
		ResetTime: b.MinuteReset,
	}
}

// Expired reports whether a bucket has been idle long enough to drop.
func Expired(b *Bucket, now time.Time) bool {
	return now.After(b.DayReset.Add(DayWindow))
}

func remaining(b *Bucket, cfg OperationConfig) Remaining {
	return Remaining{
		Minute: max(0, cfg.PerMinute-b.MinuteCount),
		Hour:   max(0, cfg.PerHour-b.HourCount),
		Day:    max(0, cfg.PerDay-b.DayCount),
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
