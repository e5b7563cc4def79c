package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aveekpatra/Domain-AI/internal/config"
)

// transport carries the shared HTTP plumbing of the name.com variants.
type transport struct {
	http     *http.Client
	limiter  *rate.Limiter
	username string
	token    string
	timeout  time.Duration
}

func newTransport(cfg config.RegistrarConfig, opts ...Option) *transport {
	t := &transport{
		username: cfg.Username,
		token:    cfg.Token,
		timeout:  defaultTimeout(cfg.Timeout),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type checkRequest struct {
	DomainNames []string `json:"domainNames"`
}

// post sends one checkAvailability call. Non-2xx answers come back as
// *StatusError tagged with variant.
func (t *transport) post(ctx context.Context, variant Variant, url string, domains []string, out any) error {
	auth, err := BasicAuthHeader(t.username, t.token)
	if err != nil {
		return err
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("registrar throttle: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	body, err := json.Marshal(checkRequest{DomainNames: domains})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

	client := t.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		op := "checkAvailability"
		if variant == VariantCore {
			op = "availability"
		}
		return &StatusError{Variant: variant, Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
