package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient is the key used when no client address header is present.
const UnknownClient = "unknown"

// ClientIP resolves the caller address for the basic tier: the first
// X-Forwarded-For entry, then X-Real-IP.
func ClientIP(r *http.Request) string {
	return clientIP(r, "X-Real-IP")
}

// AIClientIP resolves the caller address for the AI tier. It also honours
// CF-Connecting-IP.
func AIClientIP(r *http.Request) string {
	return clientIP(r, "X-Real-IP", "CF-Connecting-IP")
}

func clientIP(r *http.Request, fallbacks ...string) string {
	if r == nil {
		return UnknownClient
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	for _, name := range fallbacks {
		if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
			return v
		}
	}
	return UnknownClient
}
