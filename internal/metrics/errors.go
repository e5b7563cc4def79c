package metrics

import (
	"strconv"

	"github.com/aveekpatra/Domain-AI/internal/observability"
)

// Error metrics
const (
	ErrorsTotal = "errors_total"
	PanicsTotal = "panics_total"
)

// RecordError counts an error response. route is the endpoint pattern, not
// the raw path; empty means the error happened outside a request.
func RecordError(code string, httpStatus int, route string) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{
		"error_code":  code,
		"http_status": strconv.Itoa(httpStatus),
	}
	if route != "" {
		labels["route"] = route
	}
	_ = observability.TelemetrySystem.Counter(ErrorsTotal, 1, labels)
}

// RecordPanic counts a recovered handler panic.
func RecordPanic(route string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(PanicsTotal, 1, map[string]string{"route": route})
	}
}
