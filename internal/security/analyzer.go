// Package security screens user prompts for injection attempts before they
// reach the language model.
package security

import (
	"math"
	"regexp"
	"strings"
)

// Result is the verdict for a single prompt.
type Result struct {
	IsSecure        bool     `json:"isSecure"`
	Confidence      float64  `json:"confidence"`
	Violations      []string `json:"violations"`
	Risk            Risk     `json:"risk"`
	SanitizedPrompt string   `json:"sanitizedPrompt,omitempty"`
}

// Hit records a rule that fired during an evaluation.
type Hit struct {
	Rule       string   `json:"rule"`
	Violations []string `json:"violations"`
}

// Analyzer evaluates an ordered rule table. The zero value is not usable;
// construct with NewAnalyzer.
type Analyzer struct {
	rules []Rule
}

// NewAnalyzer builds an analyzer. With no rules it uses DefaultRules.
func NewAnalyzer(rules ...Rule) *Analyzer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Analyzer{rules: rules}
}

var defaultAnalyzer = NewAnalyzer()

// Check evaluates prompt with the default rule table.
func Check(prompt string) Result {
	return defaultAnalyzer.Check(prompt)
}

// Rules returns a copy of the analyzer's rule table.
func (a *Analyzer) Rules() []Rule {
	out := make([]Rule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Check runs every rule and accumulates the verdict. It never fails.
func (a *Analyzer) Check(prompt string) Result {
	res, _ := a.Explain(prompt)
	return res
}

// Explain is Check plus the list of rules that fired, in order.
func (a *Analyzer) Explain(prompt string) (Result, []Hit) {
	res := Result{Risk: RiskLow, Violations: []string{}}
	var hits []Hit

	for _, rule := range a.rules {
		if rule.SkipWhenHigh && res.Risk == RiskHigh {
			continue
		}
		violations := rule.Evaluate(prompt)
		if len(violations) == 0 {
			continue
		}
		hits = append(hits, Hit{Rule: rule.Name, Violations: violations})
		for _, v := range violations {
			res.Violations = append(res.Violations, v)
			res.Risk = escalate(res.Risk, rule.Escalation)
			res.Confidence = math.Min(res.Confidence+rule.Delta, 1.0)
		}
	}

	res.IsSecure = len(res.Violations) == 0
	if !res.IsSecure {
		res.SanitizedPrompt = Sanitize(prompt)
	}
	return res, hits
}

func escalate(current Risk, e Escalation) Risk {
	switch e {
	case ForceHigh:
		return RiskHigh
	case ForceMedium:
		return RiskMedium
	default:
		if current.rank() < RiskMedium.rank() {
			return RiskMedium
		}
		return current
	}
}

var (
	specialRunPattern = regexp.MustCompile(`[^\w\s.,!?()-]{3,}`)
	delimiterPattern  = regexp.MustCompile(`---+|####+|\*\*\*+`)
	encodedPattern    = regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize strips known injection content from a prompt. The output is for
// diagnostics only and is never forwarded to the model.
func Sanitize(prompt string) string {
	out := prompt
	for _, re := range injectionPatterns {
		out = re.ReplaceAllLiteralString(out, "[REMOVED]")
	}
	out = specialRunPattern.ReplaceAllLiteralString(out, " ")
	out = delimiterPattern.ReplaceAllLiteralString(out, " ")
	out = encodedPattern.ReplaceAllLiteralString(out, "[ENCODED_CONTENT]")
	out = whitespacePattern.ReplaceAllLiteralString(out, " ")
	return strings.TrimSpace(out)
}
