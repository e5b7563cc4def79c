package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aveekpatra/Domain-AI/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })

	return collector
}

func TestDomainCounters(t *testing.T) {
	collector := setupTelemetry(t)

	RecordSecurityViolation("high")
	RecordRateLimited("ai", "minute")
	RecordRateLimited("basic", "window")
	Upstream{}.RecordUpstreamCall("openrouter", "ok", 120*time.Millisecond)

	assert.Equal(t, 1, collector.CountMetricsByName(SecurityViolationsTotal))
	assert.Equal(t, 2, collector.CountMetricsByName(RateLimitRejectionsTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(UpstreamCallsTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(UpstreamCallDuration))
}

func TestDomainCountersWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	defer func() { observability.TelemetrySystem = original }()

	RecordSecurityViolation("medium")
	RecordRateLimited("ai", "day")
	Upstream{}.RecordUpstreamCall("name.com", "error", time.Second)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestInstrumentTransport(t *testing.T) {
	collector := setupTelemetry(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := &http.Client{Transport: InstrumentTransport("namecom", nil)}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	failing := &http.Client{Transport: InstrumentTransport("namecom", roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}))}
	_, err = failing.Get(srv.URL)
	require.Error(t, err)

	assert.Equal(t, 2, collector.CountMetricsByName(UpstreamCallsTotal))
}

func TestStatusLabel(t *testing.T) {
	cases := map[int]string{
		http.StatusOK:                  "ok",
		http.StatusForbidden:           "auth",
		http.StatusTooManyRequests:     "rate_limited",
		http.StatusBadGateway:          "unavailable",
		http.StatusUnprocessableEntity: "bad_request",
	}
	for code, want := range cases {
		assert.Equal(t, want, statusLabel(&http.Response{StatusCode: code}, nil), "status %d", code)
	}
	assert.Equal(t, "error", statusLabel(nil, errors.New("boom")))
}

func TestErrorAndLifecycleMetrics(t *testing.T) {
	collector := setupTelemetry(t)

	RecordError("RATE_LIMITED", http.StatusTooManyRequests, "/api/domains/generate")
	RecordError("INTERNAL_ERROR", http.StatusInternalServerError, "")
	RecordPanic("/api/prompts/improve")
	RecordSuggestion("available")
	RecordSuggestion("unknown")
	RecordHealthCheck("registrar", "degraded")
	SetServerStartTime(time.Unix(1700000000, 0))

	assert.Equal(t, 2, collector.CountMetricsByName(ErrorsTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(PanicsTotal))
	assert.Equal(t, 2, collector.CountMetricsByName(SuggestionsReturnedTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(HealthCheckTotal))
	assert.Equal(t, 1, collector.CountMetricsByName(ServerStartTime))
}
