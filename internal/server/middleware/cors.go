package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	chicors "github.com/go-chi/cors"

	"github.com/aveekpatra/Domain-AI/internal/metrics"
)

// CORS answers preflight requests and sets CORS headers. An empty
// allowedOrigin allows every origin; otherwise only origins whose host
// matches the configured host are echoed back.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	opts := chicors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{"Retry-After", RequestIDHeader},
		MaxAge:         300,
	}

	host, err := originHost(allowedOrigin)
	switch {
	case strings.TrimSpace(allowedOrigin) == "":
		opts.AllowedOrigins = []string{"*"}
	case err != nil:
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	default:
		opts.AllowOriginFunc = func(_ *http.Request, origin string) bool {
			got, err := originHost(origin)
			return err == nil && got == host
		}
	}
	return chicors.Handler(opts)
}

// OriginGuard rejects requests whose Origin host differs from the configured
// one with 403 {"error":"Forbidden"}. Requests without an Origin header are
// same-origin or non-browser and pass. An empty allowedOrigin disables the
// guard.
func OriginGuard(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if strings.TrimSpace(allowedOrigin) == "" {
			return next
		}
		allowedHost, allowedErr := originHost(allowedOrigin)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			host, err := originHost(origin)
			if allowedErr != nil || err != nil || host != allowedHost {
				metrics.RecordError("FORBIDDEN", http.StatusForbidden, RoutePattern(r))
				writeJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// originHost returns the lowercase host[:port] of an origin. Bare hosts are
// accepted for configuration convenience.
func originHost(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errInvalidOrigin
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errInvalidOrigin
	}
	return strings.ToLower(u.Host), nil
}

type originError string

func (e originError) Error() string { return string(e) }

const errInvalidOrigin = originError("invalid origin")

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
