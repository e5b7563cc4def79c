// Package errors maps application failures onto gofulmen error envelopes and
// renders them as flat JSON bodies: {"error": message, <public fields>}.
package errors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/metrics"
	"github.com/aveekpatra/Domain-AI/internal/observability"
	"github.com/aveekpatra/Domain-AI/internal/server/middleware"
)

// Error codes.
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeSecurityBlocked      = "SECURITY_BLOCKED"
	CodeNotFound             = "NOT_FOUND"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeRateLimited          = "RATE_LIMITED"
	CodeRegistrarAuth        = "REGISTRAR_AUTH_ERROR"
	CodeRegistrarConfig      = "REGISTRAR_CONFIG_MISSING"
	CodeRegistrarError       = "REGISTRAR_ERROR"
	CodeModelError           = "MODEL_ERROR"
	CodeModelResponseInvalid = "MODEL_RESPONSE_INVALID"
	CodeExternalService      = "EXTERNAL_SERVICE_ERROR"
	CodeTimeout              = "TIMEOUT"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeInternal             = "INTERNAL_ERROR"
)

// Responder writes error responses. ExposeDetails renders envelope context
// under "details" (development mode); it never changes the status code.
// The zero value is the production responder.
type Responder struct {
	ExposeDetails bool
}

// User Errors (400-level)
func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewValidationError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeValidationFailed, message)
}

// NewSecurityBlockedError is returned when a prompt fails screening.
// violations are kept in context so they only surface in development mode.
func NewSecurityBlockedError(violations []string) *errors.ErrorEnvelope {
	env := errors.NewErrorEnvelope(CodeSecurityBlocked, "Request blocked for security reasons")
	if len(violations) > 0 {
		env = withContext(env, map[string]interface{}{"violations": violations})
	}
	env, _ = env.WithSeverity(errors.SeverityMedium)
	return env
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

// NewRateLimitedError builds a 429. fields are rendered at the top level of
// the body next to "error".
func NewRateLimitedError(message string, fields map[string]interface{}) *errors.ErrorEnvelope {
	env := errors.NewErrorEnvelope(CodeRateLimited, message)
	if len(fields) > 0 {
		env = env.WithDetails(fields)
	}
	return env
}

// Upstream errors

// NewRegistrarAuthError carries the public code "namecom_auth_error" and a
// hint naming the active registrar variant.
func NewRegistrarAuthError(hint string) *errors.ErrorEnvelope {
	env := errors.NewErrorEnvelope(CodeRegistrarAuth, "Name.com authentication failed")
	env = env.WithDetails(map[string]interface{}{
		"hint": hint,
		"code": "namecom_auth_error",
	})
	env, _ = env.WithSeverity(errors.SeverityMedium)
	return env
}

func NewRegistrarConfigError(hint string) *errors.ErrorEnvelope {
	env := errors.NewErrorEnvelope(CodeRegistrarConfig, "Name.com credentials missing")
	return env.WithDetails(map[string]interface{}{"hint": hint})
}

func WrapRegistrarError(ctx context.Context, err error) *errors.ErrorEnvelope {
	return wrap(ctx, CodeRegistrarError, err, messageOf(err, "Validation failed"))
}

// WrapModelError reports a language-model failure with its message.
func WrapModelError(ctx context.Context, err error) *errors.ErrorEnvelope {
	return wrap(ctx, CodeModelError, err, messageOf(err, "AI request failed"))
}

func WrapModelResponseInvalid(ctx context.Context, err error) *errors.ErrorEnvelope {
	return wrap(ctx, CodeModelResponseInvalid, err, messageOf(err, "Invalid model response"))
}

// Server Errors (500-level)
func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeServiceUnavailable, message)
}

// Wrap functions for existing errors
// These functions accept a context to extract correlation/trace IDs from the request context

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeInternal, err, message)
}

func WrapExternalService(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeExternalService, err, message)
}

// WrapTimeout marks an upstream call that ran out of time. It shares the
// model failure status and differs only in code.
func WrapTimeout(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeTimeout, err, message)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return wrap(ctx, CodeConfigInvalid, err, message)
}

func wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractTraceID(ctx))
	envelope = withWrappedError(envelope, err)
	return envelope
}

func messageOf(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// extractCorrelationID gets correlation ID from context, falls back to generating new UUID
func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// extractTraceID uses the correlation ID until a tracing system is wired.
func extractTraceID(ctx context.Context) string {
	return extractCorrelationID(ctx)
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env = withContext(env, map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	if envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}

	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}

	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code corresponding to an error envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
// Model failures, deadlines included, render as 500: the caller cannot tell
// a model outage from any other server fault.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput, CodeValidationFailed, CodeSecurityBlocked:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeRegistrarAuth, CodeExternalService:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	return withContext(envelope, map[string]interface{}{
		"wrapped_error": err.Error(),
	})
}

func withContext(envelope *errors.ErrorEnvelope, ctx map[string]interface{}) *errors.ErrorEnvelope {
	updated, err := envelope.WithContext(ctx)
	if err != nil {
		return envelope
	}
	return updated
}

// Body builds the flat JSON body for an envelope. Public fields from
// Details sit next to "error"; Context goes under "details" only when
// ExposeDetails is set.
func (rs Responder) Body(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil {
		return map[string]interface{}{"error": "Internal server error"}
	}

	body := make(map[string]interface{}, len(envelope.Details)+2)
	for key, value := range envelope.Details {
		body[key] = value
	}
	body["error"] = envelope.Message

	if rs.ExposeDetails && len(envelope.Context) > 0 {
		details := make(map[string]interface{}, len(envelope.Context))
		for key, value := range envelope.Context {
			details[key] = value
		}
		body["details"] = details
	}
	return body
}

// Respond normalizes err into an envelope and writes it.
func (rs Responder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	rs.RespondEnvelope(w, r, EnsureEnvelope(err))
}

// RespondEnvelope finalizes the envelope, logs it, emits metrics and writes
// the body.
func (rs Responder) RespondEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}

	if r != nil {
		envelope = EnsureCorrelationID(envelope, r.Context())
	} else {
		envelope = EnsureCorrelationID(envelope, nil)
	}

	statusCode := HTTPStatusFromEnvelope(envelope)

	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(rs.Body(envelope))
}

// RespondWithError writes err with the production responder.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	Responder{}.Respond(w, r, err)
}

// RespondWithEnvelope writes envelope with the production responder.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	Responder{}.RespondEnvelope(w, r, envelope)
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}

	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}

	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int) {
	if envelope == nil {
		return
	}

	metrics.RecordError(envelope.Code, statusCode, middleware.RoutePattern(r))
}
