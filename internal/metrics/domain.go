package metrics

import (
	"net/http"
	"time"

	"github.com/aveekpatra/Domain-AI/internal/observability"
)

// Domain metrics
const (
	SecurityViolationsTotal  = "security_violations_total"
	RateLimitRejectionsTotal = "ratelimit_rejections_total"
	UpstreamCallsTotal       = "upstream_calls_total"
	UpstreamCallDuration     = "upstream_call_duration_ms"
	SuggestionsReturnedTotal = "suggestions_returned_total"
	HealthCheckTotal         = "health_check_total"
	ServerStartTime          = "server_start_time_seconds"
)

// RecordSecurityViolation counts a prompt rejected by screening.
func RecordSecurityViolation(risk string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			SecurityViolationsTotal,
			1,
			map[string]string{"risk": risk},
		)
	}
}

// RecordRateLimited counts a rejection. tier is "basic" or "ai"; window is
// the window that tripped (minute, hour, day, violation_penalty).
func RecordRateLimited(tier, window string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RateLimitRejectionsTotal,
			1,
			map[string]string{
				"tier":   tier,
				"window": window,
			},
		)
	}
}

// Upstream records calls to the language model and registrar.
type Upstream struct{}

// RecordUpstreamCall counts one outbound call and its latency.
func (Upstream) RecordUpstreamCall(service, status string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{
		"service": service,
		"status":  status,
	}
	_ = observability.TelemetrySystem.Counter(UpstreamCallsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(
		UpstreamCallDuration,
		duration,
		map[string]string{"service": service},
	)
}

// InstrumentTransport wraps base so every round trip is recorded as an
// upstream call for service. A nil base uses http.DefaultTransport.
func InstrumentTransport(service string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return instrumentedTransport{service: service, base: base}
}

type instrumentedTransport struct {
	service string
	base    http.RoundTripper
}

func (t instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	Upstream{}.RecordUpstreamCall(t.service, statusLabel(resp, err), time.Since(start))
	return resp, err
}

func statusLabel(resp *http.Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "auth"
	case resp.StatusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case resp.StatusCode >= 500:
		return "unavailable"
	case resp.StatusCode >= 400:
		return "bad_request"
	default:
		return "ok"
	}
}

// RecordSuggestion counts one suggestion returned by the generate endpoint.
// availability is "available", "taken" or "unknown".
func RecordSuggestion(availability string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(SuggestionsReturnedTotal, 1, map[string]string{"availability": availability})
	}
}

// RecordHealthCheck counts one checker run by outcome.
func RecordHealthCheck(check, status string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(HealthCheckTotal, 1, map[string]string{
			"check":  check,
			"status": status,
		})
	}
}

// SetServerStartTime publishes the process start as a Unix timestamp.
func SetServerStartTime(t time.Time) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(t.Unix()), nil)
	}
}
