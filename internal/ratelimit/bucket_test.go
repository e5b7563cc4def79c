package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestPenaltySchedule(t *testing.T) {
	cases := map[int]time.Duration{
		0:  0,
		1:  0,
		2:  30 * time.Second,
		3:  30 * time.Second,
		4:  120 * time.Second,
		5:  120 * time.Second,
		6:  300 * time.Second,
		10: 300 * time.Second,
		11: 600 * time.Second,
		50: 600 * time.Second,
	}
	for violations, want := range cases {
		assert.Equal(t, want, Penalty(violations), "violations=%d", violations)
	}

	prev := Penalty(0)
	for v := 1; v <= 40; v++ {
		cur := Penalty(v)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestEvaluateMinuteWindow(t *testing.T) {
	cfg := DefaultOperations[OpDomainsGenerate]
	b := NewBucket(t0)

	for i := 1; i <= cfg.PerMinute; i++ {
		res := Evaluate(b, cfg, t0)
		require.True(t, res.Allowed)
		assert.Equal(t, Limit{Current: i, Max: cfg.PerMinute, Window: "minute"}, res.Limit)
		assert.Equal(t, cfg.PerMinute-i, res.Remaining.Minute)
		assert.Equal(t, 0, res.RetryAfter)
	}
	assert.Equal(t, cfg.PerMinute*cfg.CostWeight, b.TotalCost)

	res := Evaluate(b, cfg, t0)
	require.False(t, res.Allowed)
	assert.Equal(t, "minute", res.Limit.Window)
	assert.Equal(t, cfg.PerMinute, res.Limit.Current)
	assert.Equal(t, 60, res.RetryAfter)
	assert.Equal(t, 0, res.Remaining.Minute)
	assert.Equal(t, cfg.PerHour-cfg.PerMinute, res.Remaining.Hour)
	assert.Nil(t, res.Violation)
	assert.Equal(t, 1, b.Violations)
	assert.Equal(t, t0, b.LastViolation)
}

func TestEvaluateRepeatViolationsTriggerCooldown(t *testing.T) {
	cfg := OperationConfig{PerMinute: 1, PerHour: 10, PerDay: 10, CostWeight: 1}
	b := NewBucket(t0)

	require.True(t, Evaluate(b, cfg, t0).Allowed)

	first := Evaluate(b, cfg, t0.Add(time.Second))
	require.False(t, first.Allowed)
	assert.Nil(t, first.Violation)

	second := Evaluate(b, cfg, t0.Add(2*time.Second))
	require.False(t, second.Allowed)
	assert.Equal(t, "minute", second.Limit.Window)
	require.NotNil(t, second.Violation)
	assert.Equal(t, Violation{Count: 2, Penalty: 0}, *second.Violation)

	cooling := Evaluate(b, cfg, t0.Add(12*time.Second))
	require.False(t, cooling.Allowed)
	assert.Equal(t, WindowPenalty, cooling.Limit.Window)
	assert.Equal(t, Limit{Current: 2, Max: 0, Window: WindowPenalty}, cooling.Limit)
	assert.Equal(t, 20, cooling.RetryAfter)
	require.NotNil(t, cooling.Violation)
	assert.Equal(t, 30, cooling.Violation.Penalty)
	assert.Equal(t, 2, b.Violations, "cooldown rejections do not add violations")
}

func TestEvaluateHourAndDayWindows(t *testing.T) {
	cfg := OperationConfig{PerMinute: 100, PerHour: 2, PerDay: 3, CostWeight: 1}
	b := NewBucket(t0)

	require.True(t, Evaluate(b, cfg, t0).Allowed)
	require.True(t, Evaluate(b, cfg, t0).Allowed)

	res := Evaluate(b, cfg, t0.Add(10*time.Minute))
	require.False(t, res.Allowed)
	assert.Equal(t, "hour", res.Limit.Window)
	assert.Equal(t, 50*60, res.RetryAfter)

	later := t0.Add(61 * time.Minute)
	Roll(b, later)
	require.True(t, Evaluate(b, cfg, later).Allowed)

	res = Evaluate(b, cfg, later)
	require.False(t, res.Allowed)
	assert.Equal(t, "day", res.Limit.Window)
}

func TestRollResetsExpiredWindows(t *testing.T) {
	b := NewBucket(t0)
	b.MinuteCount, b.HourCount, b.DayCount = 3, 10, 50
	b.TotalCost = 500
	b.Violations = 3

	Roll(b, t0.Add(30*time.Second))
	assert.Equal(t, 3, b.MinuteCount)

	at := t0.Add(61 * time.Second)
	Roll(b, at)
	assert.Equal(t, 0, b.MinuteCount)
	assert.Equal(t, at.Add(time.Minute), b.MinuteReset)
	assert.Equal(t, 10, b.HourCount)

	at = t0.Add(25 * time.Hour)
	Roll(b, at)
	assert.Equal(t, 0, b.HourCount)
	assert.Equal(t, 0, b.DayCount)
	assert.Equal(t, 0, b.TotalCost)
	assert.Equal(t, 1, b.Violations)

	b.DayReset = at
	Roll(b, at.Add(time.Second))
	assert.Equal(t, 0, b.Violations, "violations never go negative")
}

func TestExpired(t *testing.T) {
	b := NewBucket(t0)
	assert.False(t, Expired(b, t0.Add(47*time.Hour)))
	assert.True(t, Expired(b, t0.Add(48*time.Hour+time.Second)))
}

func TestMergeOperations(t *testing.T) {
	table := MergeOperations(map[string]OperationConfig{
		"domains-generate": {PerMinute: 6},
		"bulk-export":      {PerMinute: 1, PerHour: 2, PerDay: 3, CostWeight: 4},
	})

	gen := table[OpDomainsGenerate]
	assert.Equal(t, 6, gen.PerMinute)
	assert.Equal(t, 20, gen.PerHour)
	assert.Equal(t, 10, gen.CostWeight)
	assert.Equal(t, OperationConfig{PerMinute: 1, PerHour: 2, PerDay: 3, CostWeight: 4}, table["bulk-export"])
	assert.Equal(t, 3, DefaultOperations[OpDomainsGenerate].PerMinute, "defaults are not mutated")

	assert.Equal(t, []Operation{"bulk-export", OpDomainsGenerate, OpDomainsValidate, OpPromptImprove}, SortedOperations(table))
}
