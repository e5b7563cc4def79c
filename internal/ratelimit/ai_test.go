package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(store Store, clock *fakeClock) *AILimiter {
	l := NewAILimiter(store, nil)
	l.Clock = clock.Now
	l.Rand = func() float64 { return 1 }
	return l
}

func requestFrom(ip string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/domains/generate", nil)
	r.Header.Set("X-Forwarded-For", ip)
	return r
}

func TestAILimiterAllowsExactlyMax(t *testing.T) {
	clock := &fakeClock{now: t0}
	l := newTestLimiter(NewMemoryStore(), clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Check(ctx, requestFrom("198.51.100.7"), OpDomainsGenerate)
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d", i+1)
	}

	clock.Advance(20 * time.Second)
	res, err := l.Check(ctx, requestFrom("198.51.100.7"), OpDomainsGenerate)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, "minute", res.Limit.Window)
	assert.InDelta(t, 40, res.RetryAfter, 1)
	assert.Equal(t, Remaining{Minute: 0, Hour: 17, Day: 97}, res.Remaining)

	other, err := l.Check(ctx, requestFrom("198.51.100.8"), OpDomainsGenerate)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "buckets are per client")

	improve, err := l.Check(ctx, requestFrom("198.51.100.7"), OpPromptImprove)
	require.NoError(t, err)
	assert.True(t, improve.Allowed, "buckets are per operation")

	clock.Advance(41 * time.Second)
	res, err = l.Check(ctx, requestFrom("198.51.100.7"), OpDomainsGenerate)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestAILimiterUnknownOperation(t *testing.T) {
	l := NewAILimiter(nil, nil)
	_, err := l.CheckIP(context.Background(), "203.0.113.1", "bulk-export")

	var opErr *UnknownOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, Operation("bulk-export"), opErr.Operation)
}

func TestAILimiterKeysByClientHeaders(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := NewMemoryStore()
	l := newTestLimiter(store, clock)

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("CF-Connecting-IP", "192.0.2.44")
	_, err := l.Check(context.Background(), r, OpDomainsValidate)
	require.NoError(t, err)

	b, err := store.Get(context.Background(), "ai:192.0.2.44:domains-validate")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.MinuteCount)
	assert.Equal(t, 1, b.TotalCost)
}

func TestAILimiterSweepsStaleBuckets(t *testing.T) {
	clock := &fakeClock{now: t0}
	store := NewMemoryStore()
	ctx := context.Background()

	stale := NewBucket(t0.Add(-72 * time.Hour))
	require.NoError(t, store.Set(ctx, "ai:old:domains-generate", stale))
	fresh := NewBucket(t0.Add(-time.Hour))
	require.NoError(t, store.Set(ctx, "ai:recent:domains-generate", fresh))

	l := newTestLimiter(store, clock)
	l.Rand = func() float64 { return 0 }

	_, err := l.CheckIP(ctx, "203.0.113.9", OpDomainsGenerate)
	require.NoError(t, err)

	got, err := store.Get(ctx, "ai:old:domains-generate")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "ai:recent:domains-generate")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 2, store.Len())
}

type keysFailStore struct {
	*MemoryStore
}

func (keysFailStore) Keys(context.Context) ([]string, error) {
	return nil, errors.New("scan interrupted")
}

func TestAILimiterCheckSurvivesSweepFailure(t *testing.T) {
	clock := &fakeClock{now: t0}
	l := newTestLimiter(keysFailStore{NewMemoryStore()}, clock)
	l.Rand = func() float64 { return 0 }
	l.SweepProbability = 1

	var sweepErrs []error
	l.OnSweepError = func(err error) { sweepErrs = append(sweepErrs, err) }

	res, err := l.CheckIP(context.Background(), "203.0.113.10", OpDomainsGenerate)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	require.Len(t, sweepErrs, 1)
	assert.ErrorContains(t, sweepErrs[0], "scan interrupted")

	l.OnSweepError = nil
	res, err = l.CheckIP(context.Background(), "203.0.113.10", OpDomainsGenerate)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Limit.Current)
}

func TestAILimiterUsage(t *testing.T) {
	clock := &fakeClock{now: t0}
	l := newTestLimiter(NewMemoryStore(), clock)
	ctx := context.Background()

	usage, err := l.Usage(ctx, "203.0.113.5", OpDomainsGenerate)
	require.NoError(t, err)
	assert.Nil(t, usage)

	for i := 0; i < 2; i++ {
		_, err := l.CheckIP(ctx, "203.0.113.5", OpDomainsGenerate)
		require.NoError(t, err)
	}

	usage, err = l.Usage(ctx, "203.0.113.5", OpDomainsGenerate)
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Equal(t, WindowUsage{Current: 2, Max: 3}, usage.Minute)
	assert.Equal(t, WindowUsage{Current: 2, Max: 20}, usage.Hour)
	assert.Equal(t, WindowUsage{Current: 2, Max: 100}, usage.Day)
	assert.Equal(t, 20, usage.TotalCost)
	assert.Equal(t, 0, usage.Violations)
}

func TestAILimiterConcurrentChecks(t *testing.T) {
	clock := &fakeClock{now: t0}
	l := newTestLimiter(NewMemoryStore(), clock)
	l.Operations = map[Operation]OperationConfig{
		"burst": {PerMinute: 10, PerHour: 100, PerDay: 100, CostWeight: 1},
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.CheckIP(context.Background(), "203.0.113.77", "burst")
			if err != nil || !res.Allowed {
				return
			}
			mu.Lock()
			allowed++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "Request successful. 2 requests remaining this minute.",
		FormatMessage(&Result{Allowed: true, Remaining: Remaining{Minute: 2}}))

	assert.Equal(t,
		"Rate limit exceeded. You've made 20 requests this hour (limit: 20). Please try again in 90 seconds.",
		FormatMessage(&Result{RetryAfter: 90, Limit: Limit{Current: 20, Max: 20, Window: "hour"}}))

	assert.Equal(t,
		"Rate limit exceeded. You've made 3 requests this day (limit: 0). Please try again in 25 seconds. "+
			"Additional 30s penalty applied for repeated violations.",
		FormatMessage(&Result{
			RetryAfter: 25,
			Limit:      Limit{Current: 3, Max: 0, Window: WindowPenalty},
			Violation:  &Violation{Count: 3, Penalty: 30},
		}))

	assert.Empty(t, FormatMessage(nil))
}
