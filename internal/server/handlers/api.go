package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/ailink"
	apperrors "github.com/aveekpatra/Domain-AI/internal/errors"
	"github.com/aveekpatra/Domain-AI/internal/metrics"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/registrar"
	"github.com/aveekpatra/Domain-AI/internal/security"
	"github.com/aveekpatra/Domain-AI/internal/suggest"
)

// Route keys for the basic limiter.
const (
	RouteGenerate = "domains-generate"
	RouteValidate = "domains-validate"
	RouteImprove  = "prompt-improve"
)

//go:generate mockgen -source=api.go -destination=mocks_test.go -package=handlers
//go:generate mockgen -destination=mocks_registrar_test.go -package=handlers -mock_names=Client=MockRegistrarClient github.com/aveekpatra/Domain-AI/internal/registrar Client

// PromptChecker screens prompts.
type PromptChecker interface {
	Check(prompt string) security.Result
	ValidatePrompt(prompt string) security.Validation
}

// AILimiter meters upstream operations per client.
type AILimiter interface {
	Check(ctx context.Context, r *http.Request, op ratelimit.Operation) (*ratelimit.Result, error)
}

// UsageReporter exposes per-client consumption.
type UsageReporter interface {
	Usage(ctx context.Context, ip string, op ratelimit.Operation) (*ratelimit.Usage, error)
}

// SuggestionGenerator asks the model for domain ideas.
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, prompt string, tlds []string, count int) (*suggest.Response, error)
}

// PromptImprover asks the model to rewrite a prompt.
type PromptImprover interface {
	ImprovePrompt(ctx context.Context, prompt string) (string, error)
}

// Logger is the subset of the gofulmen logger used by the handlers.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// API serves the domain endpoints. Registrar is nil when no credentials are
// configured; Variant still names the configured protocol for hints.
type API struct {
	Prompts   PromptChecker
	Basic     ratelimit.Limiter
	AI        AILimiter
	Usage     UsageReporter
	Generator SuggestionGenerator
	Improver  PromptImprover
	Registrar registrar.Client
	Variant   registrar.Variant

	// FillScores computes a brandability score for unscored suggestions.
	FillScores bool
	// MeterValidate charges validation against the AI tier as well as the
	// basic limiter.
	MeterValidate bool
	// Diagnostics enables request and violation logging and error details.
	Diagnostics bool
	Logger      Logger

	bindOnce sync.Once
	binder   *binder
}

func (a *API) bind(r *http.Request, dst any) error {
	a.bindOnce.Do(func() {
		a.binder = newBinder(a.checker())
	})
	return a.binder.bindJSON(r, dst)
}

func (a *API) debug(msg string, fields ...zap.Field) {
	if a.Diagnostics && a.Logger != nil {
		a.Logger.Debug(msg, fields...)
	}
}

// allowBasic applies the per-route limiter and writes the 429 on rejection.
func (a *API) allowBasic(w http.ResponseWriter, r *http.Request, route string) bool {
	if a.Basic == nil {
		return true
	}
	d := a.Basic.Allow(r, route)
	if d.OK {
		return true
	}
	metrics.RecordRateLimited("basic", "window")
	a.debug("rate limited", zap.String("route", route), zap.Int("retry_after", d.RetryAfter))
	w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfter))
	a.respondWithError(w, r, apperrors.NewRateLimitedError("Too many requests", nil))
	return false
}

// allowAI applies the AI tier and writes the 429 on rejection.
func (a *API) allowAI(w http.ResponseWriter, r *http.Request, op ratelimit.Operation) bool {
	if a.AI == nil {
		return true
	}
	res, err := a.AI.Check(r.Context(), r, op)
	if err != nil {
		a.respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Rate limiter unavailable"))
		return false
	}
	if res.Allowed {
		return true
	}

	metrics.RecordRateLimited("ai", res.Limit.Window)
	a.debug("AI rate limited", zap.String("operation", string(op)), zap.String("window", res.Limit.Window))
	w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
	a.respondWithError(w, r, apperrors.NewRateLimitedError("AI rate limit exceeded", map[string]interface{}{
		"message":    ratelimit.FormatMessage(res),
		"limit":      res.Limit,
		"remaining":  res.Remaining,
		"retryAfter": res.RetryAfter,
	}))
	return false
}

// bindFailure renders a bind error as 400.
func (a *API) bindFailure(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *PromptRejection
	if errors.As(err, &rejection) {
		if rejection.Blocked() {
			res := rejection.Validation.Result
			metrics.RecordSecurityViolation(string(res.Risk))
			if a.Diagnostics && a.Logger != nil {
				security.LogViolation(a.Logger, ratelimit.AIClientIP(r), r.UserAgent(), res.Violations, rejection.Prompt)
			}
			a.respondWithError(w, r, apperrors.NewSecurityBlockedError(res.Violations))
			return
		}
		a.respondWithError(w, r, apperrors.NewValidationError(rejection.Validation.Error))
		return
	}

	var fieldErr *FieldError
	var bindErr *BindError
	switch {
	case errors.As(err, &fieldErr):
		a.respondWithError(w, r, apperrors.NewValidationError(fieldErr.Message))
	case errors.As(err, &bindErr):
		a.respondWithError(w, r, apperrors.NewInvalidInputError(bindErr.Message))
	default:
		a.respondWithError(w, r, apperrors.NewInvalidInputError("Invalid input"))
	}
}

// modelFailure maps a language-model error to its envelope. Deadlines keep
// the 500 status and message but carry the TIMEOUT code.
func modelFailure(ctx context.Context, err error) error {
	if ailink.Classify(err) == ailink.StatusTimeout {
		return apperrors.WrapTimeout(ctx, err, err.Error())
	}
	return apperrors.WrapModelError(ctx, err)
}

// respondWithError renders err, with envelope details when Diagnostics is on.
func (a *API) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.Responder{ExposeDetails: a.Diagnostics}.Respond(w, r, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
