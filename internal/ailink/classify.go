package ailink

import (
	"context"
	"errors"

	"github.com/aveekpatra/Domain-AI/internal/ailink/driver"
)

// Upstream call outcomes, used as metric labels.
const (
	StatusOK          = "ok"
	StatusTimeout     = "timeout"
	StatusAuth        = "auth"
	StatusRateLimited = "rate_limited"
	StatusUnavailable = "unavailable"
	StatusBadRequest  = "bad_request"
	StatusError       = "error"
)

// Classify maps a driver error to a coarse outcome label.
func Classify(err error) string {
	if err == nil {
		return StatusOK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		switch {
		case status == 401 || status == 403:
			return StatusAuth
		case status == 429:
			return StatusRateLimited
		case status >= 500 && status <= 599:
			return StatusUnavailable
		case status >= 400 && status <= 499:
			return StatusBadRequest
		}
	}
	return StatusError
}
