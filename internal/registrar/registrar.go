// Package registrar looks up domain availability and pricing at name.com.
//
// Two protocol variants are supported: the legacy v4 API and the current
// ("core") API. An optional RDAP fallback answers availability only, for
// deployments without registrar credentials.
package registrar

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aveekpatra/Domain-AI/internal/config"
)

// Variant identifies the upstream protocol.
type Variant string

const (
	VariantLegacy Variant = config.VariantLegacy
	VariantCore   Variant = config.VariantCore
	VariantRDAP   Variant = "rdap"
)

// DisplayName is reported as the registrar on enriched suggestions.
const DisplayName = "Name.com"

// Availability is the normalized lookup result for one domain. Nil pointers
// mean the upstream did not report the field.
type Availability struct {
	DomainName    string   `json:"domainName"`
	Available     *bool    `json:"available,omitempty"`
	Premium       *bool    `json:"premium,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	RegisterPrice *float64 `json:"registerPrice,omitempty"`
	RenewPrice    *float64 `json:"renewPrice,omitempty"`
}

// Client checks availability for a set of fully qualified domain names.
// Result keys are lowercase. Domains the upstream did not report are absent.
type Client interface {
	CheckAvailability(ctx context.Context, domains []string) (map[string]Availability, error)
	Variant() Variant
}

// ErrMissingCredentials is returned before any network call when the
// username or token is empty.
var ErrMissingCredentials = errors.New("missing NAMECOM_USERNAME or NAMECOM_API_TOKEN")

// BasicAuthHeader builds the Authorization value shared by both variants.
func BasicAuthHeader(username, token string) (string, error) {
	if username == "" || token == "" {
		return "", ErrMissingCredentials
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+token)), nil
}

// Option customizes a client built by New.
type Option func(*transport)

// WithHTTPClient replaces the HTTP client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) { t.http = c }
}

// WithLimiter replaces the outbound throttle. A nil limiter disables it.
func WithLimiter(l *rate.Limiter) Option {
	return func(t *transport) { t.limiter = l }
}

// New builds the client selected by cfg. Without credentials it returns the
// RDAP fallback when configured, otherwise the selected variant, which then
// fails every non-empty lookup with ErrMissingCredentials.
func New(cfg config.RegistrarConfig, opts ...Option) (Client, error) {
	if !cfg.HasCredentials() && cfg.Fallback == string(VariantRDAP) {
		return NewRDAP(cfg.Timeout), nil
	}

	t := newTransport(cfg, opts...)
	switch Variant(cfg.Variant) {
	case VariantLegacy, "":
		return &Legacy{BaseURL: cfg.BaseURL, transport: t}, nil
	case VariantCore:
		return &Current{BaseURL: cfg.CoreURL, MaxBatch: cfg.MaxBatch, transport: t}, nil
	default:
		return nil, fmt.Errorf("unsupported registrar variant: %s", cfg.Variant)
	}
}

// CredentialsHint is returned to callers when credentials are missing.
func CredentialsHint(v Variant) string {
	if v == VariantCore {
		return "For Core API: Set NAMECOM_USERNAME and NAMECOM_API_TOKEN, plus NAMECOM_USE_CORE=true"
	}
	return "For v4 API: Set NAMECOM_USERNAME and NAMECOM_API_TOKEN"
}

// AuthHint is returned to callers when the upstream rejects the credentials.
func AuthHint(v Variant) string {
	if v == VariantCore {
		return "For Core API: Ensure NAMECOM_USERNAME is your account username (not email), NAMECOM_API_TOKEN is valid, and NAMECOM_USE_CORE=true. For testing, use api.dev.name.com with test credentials."
	}
	return "For v4 API: Set NAMECOM_USERNAME to your account username (not email), NAMECOM_API_TOKEN to your API token. For testing, add -test suffix to username and use NAMECOM_API_BASE=https://api.dev.name.com"
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func chunk(domains []string, size int) [][]string {
	if size <= 0 || len(domains) <= size {
		return [][]string{domains}
	}
	var out [][]string
	for i := 0; i < len(domains); i += size {
		end := min(i+size, len(domains))
		out = append(out, domains[i:end])
	}
	return out
}

func boolPtr(v bool) *bool { return &v }

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}
