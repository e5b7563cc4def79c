package registrar

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const legacyForbiddenHint = "Hint: Ensure Basic Auth uses username (not email) + API token, Content-Type is application/json, Two-Factor Authentication is disabled, and the base URL includes /v4 (e.g., https://api.name.com/v4)."

// StatusError is returned when the registrar answers with a non-2xx status.
type StatusError struct {
	Variant Variant
	Op      string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "registrar error"
	}
	body := strings.TrimSpace(e.Body)
	switch e.Variant {
	case VariantCore:
		return fmt.Sprintf("name.com CORE %s failed: %d - %s", e.Op, e.Status, body)
	default:
		if body == "" {
			body = "No response body"
		}
		msg := fmt.Sprintf("name.com v4 %s failed: %d - %s", e.Op, e.Status, body)
		if e.Status == http.StatusForbidden {
			msg += "\n" + legacyForbiddenHint
		}
		return msg
	}
}

// authMarkers match registrar auth failures that reached us as plain text,
// for example when an error was re-wrapped without %w.
var authMarkers = []string{
	"v4 check failed: 403",
	"v4 checkAvailability failed: 403",
	"CORE availability failed: 401",
	"CORE pricing failed: 401",
	"CORE availability failed: 403",
}

// IsAuthError reports whether err means the registrar rejected the credentials.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
	}
	msg := err.Error()
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
