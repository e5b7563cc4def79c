package security

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	MinPromptLength = 3
	MaxPromptLength = 800
)

const (
	ErrPromptTooShort = "Prompt is too short (minimum 3 characters)"
	ErrPromptTooLong  = "Prompt is too long (maximum 800 characters)"
	ErrPromptHarmful  = "Prompt contains potentially harmful content"
)

// Validation is the outcome of ValidatePrompt.
type Validation struct {
	Valid  bool
	Error  string
	Result Result
}

// ValidatePrompt applies length bounds and then the default analyzer.
func ValidatePrompt(prompt string) Validation {
	return defaultAnalyzer.ValidatePrompt(prompt)
}

// ValidatePrompt applies length bounds and then the analyzer's rules.
func (a *Analyzer) ValidatePrompt(prompt string) Validation {
	trimmed := strings.TrimSpace(prompt)
	length := utf8.RuneCountInString(trimmed)

	if length < MinPromptLength {
		return Validation{
			Error:  ErrPromptTooShort,
			Result: Result{IsSecure: true, Risk: RiskLow, Violations: []string{}},
		}
	}

	if length > MaxPromptLength {
		return Validation{
			Error: ErrPromptTooLong,
			Result: Result{
				Confidence: 0.8,
				Violations: []string{"Excessive length may indicate injection attempt"},
				Risk:       RiskMedium,
			},
		}
	}

	res := a.Check(trimmed)
	if !res.IsSecure {
		return Validation{Error: ErrPromptHarmful, Result: res}
	}
	return Validation{Valid: true, Result: res}
}

// Logger is the subset of the structured logger used for violation reports.
type Logger interface {
	Warn(msg string, fields ...zap.Field)
}

// LogViolation reports a blocked prompt. Only the prompt length is logged,
// and the client address and user agent are truncated.
func LogViolation(logger Logger, ip, userAgent string, violations []string, prompt string) {
	if logger == nil {
		return
	}
	logger.Warn("Prompt injection attempt detected",
		zap.String("ip", truncate(ip, 10)+"..."),
		zap.String("user_agent", truncate(userAgent, 50)+"..."),
		zap.Strings("violations", violations),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
