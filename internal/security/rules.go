package security

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Risk grades how likely a prompt is to be an injection attempt.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func (r Risk) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// Escalation describes how a rule changes the verdict when it fires.
type Escalation int

const (
	// AtLeastMedium raises low to medium and leaves high untouched.
	AtLeastMedium Escalation = iota
	// ForceHigh sets risk to high.
	ForceHigh
	// ForceMedium sets risk to medium. Only used by rules gated on risk below high.
	ForceMedium
)

// Rule is one independent heuristic. Evaluate returns the violation messages
// the rule contributes; an empty slice means the rule did not fire.
type Rule struct {
	Name       string
	Escalation Escalation
	// Delta is added to confidence for every violation the rule reports.
	Delta float64
	// SkipWhenHigh suppresses the rule once an earlier rule has set risk high.
	SkipWhenHigh bool
	Evaluate     func(prompt string) []string
}

// injectionPatterns are evaluated case-insensitively against the raw prompt.
var injectionPatterns = compileAll([]string{
	// instruction manipulation
	`ignore\s+(all\s+)?(previous|above|prior)\s+instructions?`,
	`forget\s+(all\s+)?(previous|above|prior)\s+(instructions?|context)`,
	`disregard\s+(all\s+)?(previous|above|prior)\s+(instructions?|context)`,
	`override\s+(all\s+)?(previous|above|prior)\s+(instructions?|context)`,

	// role confusion
	`you\s+are\s+(now\s+)?(?:a\s+)?(?:helpful\s+)?(?:assistant|chatbot|ai|gpt|claude|model)`,
	`(?:act|behave|pretend)\s+(?:as|like)\s+(?:a\s+)?(?:different|new|another)`,
	`(?:your\s+)?(?:new\s+)?(?:role|task|job)\s+is\s+(?:to|now)`,
	`(?:from\s+now\s+on|starting\s+now),?\s*you\s+(?:are|will|should|must)`,

	// system prompt extraction
	`(?:show|tell|give|reveal|display)\s+me\s+(?:your\s+)?(?:system\s+)?(?:prompt|instructions?)`,
	`(?:what\s+(?:are|is)\s+your\s+)?(?:system\s+)?(?:prompt|instructions?)`,
	`(?:repeat|echo|print)\s+(?:your\s+)?(?:system\s+)?(?:prompt|instructions?)`,

	// context breaking
	`---+\s*(?:end|stop|break|new)\s*(?:prompt|context|instructions?)?`,
	`\*\*\*+\s*(?:end|stop|break|new)\s*(?:prompt|context|instructions?)?`,
	`####+\s*(?:end|stop|break|new)\s*(?:prompt|context|instructions?)?`,
	`(?:end\s+of\s+(?:prompt|context|instructions?))`,

	// special tokens and delimiters
	`<\|(?:endoftext|im_start|im_end|system|user|assistant)\|>`,
	`\[(?:SYSTEM|USER|ASSISTANT|END|START|BREAK)\]`,
	"```\\s*(?:system|prompt|instructions?)",

	// task redefinition
	`(?:instead|rather\s+than).*(?:generate|create|suggest)\s+domains?`,
	`(?:don'?t|do\s+not)\s+(?:generate|create|suggest)\s+domains?`,
	`(?:your\s+)?(?:actual|real|true)\s+(?:task|job|purpose)\s+is`,

	// output format manipulation
	`(?:output|return|give|provide)\s+(?:only|just)\s+(?:the\s+)?(?:following|this)`,
	`(?:format|structure)\s+(?:your\s+)?(?:response|output)\s+as`,
	`(?:respond|answer)\s+(?:with|in)\s+(?:the\s+)?(?:format|style)\s+of`,

	// jailbreak
	`(?:jailbreak|bypass|circumvent|hack)\s+(?:your\s+)?(?:restrictions?|limitations?|safety)`,
	`(?:ignore|bypass|override)\s+(?:your\s+)?(?:safety|ethical?)\s+(?:guidelines?|rules?|constraints?)`,

	// developer mode
	`(?:developer|debug|admin|root)\s+mode`,
	`(?:enable|activate|turn\s+on)\s+(?:developer|debug|admin)\s+mode`,

	// encoding references
	`base64|decode|encode|hex|ascii|utf-?8`,

	// hypothetical bypass
	`(?:imagine|suppose|pretend|let'?s\s+say)\s+(?:that\s+)?(?:you|i)\s+(?:are|were|can|could)`,

	// behaviour change commands
	`(?:you\s+)?(?:must|should|will|shall)\s+(?:now|always|only)`,
	`(?:from\s+now\s+on|going\s+forward),?\s*(?:you\s+)?(?:will|must|should)`,
})

var suspiciousPhrases = []string{
	"system prompt",
	"ignore instructions",
	"forget everything",
	"disregard context",
	"new instructions",
	"role playing",
	"act as",
	"pretend to be",
	"you are now",
	"override",
	"jailbreak",
	"bypass restrictions",
	"developer mode",
	"admin access",
}

var structurePatterns = compileAll([]string{
	`---+|####+|\*\*\*+|={3,}`,
	`\[(?:SYSTEM|USER|ASSISTANT|END|START|BREAK|IGNORE)\]`,
	`</?(?:system|user|assistant|prompt|instruction)`,
	"```\\s*(?:system|prompt|instruction)",
})

var specialCharPattern = regexp.MustCompile(`[^\w\s.,!?()\-]`)

var rolePatterns = compileAll([]string{
	`you\s+are\s+(?:now\s+)?(?:a\s+)?(?:helpful\s+)?(?:assistant|chatbot|ai|gpt|claude|model)`,
	`(?:act|behave|pretend)\s+(?:as|like)\s+(?:a\s+)?(?:different|new|another)`,
	`your\s+(?:new\s+)?(?:role|task|job)\s+is\s+(?:to|now)`,
	`from\s+now\s+on.*you\s+(?:are|will|should|must)`,
})

// Product descriptions like "admin dashboard" or "assistant bot for" are not
// role changes.
var domainContextPattern = regexp.MustCompile(`(?i)(?:system|admin|developer|debug|root|assistant|ai|bot)\s+(?:for|platform|tool|dashboard|app|service|management)`)

var contextBreakPatterns = compileAll([]string{
	`---+.*(?:end|stop|break|new)`,
	`\*\*\*+.*(?:end|stop|break|new)`,
	`####+.*(?:end|stop|break|new)`,
	`end\s+of\s+(?:prompt|context|instruction)`,
	`new\s+(?:prompt|context|instruction)`,
	`end\s+of\s+instructions`,
	`now\s+help\s+me\s+with`,
	`new\s+task:`,
	`you\s+are\s+now\s+unrestricted`,
})

var domainKeywords = []string{
	"domain", "website", "business", "company", "startup", "brand", "name",
	"app", "service", "platform", "site", "web", "online", "digital",
	"tech", "software", "tool", "solution", "product", "market", "industry",
	"ecommerce", "saas", "api", "database", "network", "cloud", "mobile",
	"social", "media", "content", "blog", "portfolio", "store", "shop",
	"consulting", "agency", "studio", "lab", "hub", "center", "group",
	"management", "tracking", "booking", "ordering", "coaching", "fitness",
	"email", "privacy", "crafts", "storage", "restaurant", "project",
	"delivery", "medical", "diagnosis", "dashboard", "customer", "freelancers",
}

var offTopicPatterns = compileAll([]string{
	`what'?s\s+the\s+weather`,
	`what'?s\s+the\s+capital`,
	`how\s+do\s+i\s+cook`,
	`tell\s+me\s+a\s+joke`,
	`explain\s+(?:quantum\s+)?physics`,
	`write\s+a\s+poem`,
})

var namingIntentPattern = regexp.MustCompile(`(?i)(?:name|brand|title|call|suggest|ideas?|generate|create|for)`)

// DefaultRules returns the rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "injection_patterns",
			Escalation: ForceHigh,
			Delta:      0.4,
			Evaluate:   matchInjectionPatterns,
		},
		{
			Name:       "suspicious_phrases",
			Escalation: ForceHigh,
			Delta:      0.25,
			Evaluate: func(prompt string) []string {
				if countSuspiciousPhrases(prompt) >= 3 {
					return []string{"Multiple suspicious phrases detected"}
				}
				return nil
			},
		},
		{
			Name:       "suspicious_phrase_pair",
			Escalation: AtLeastMedium,
			Delta:      0.15,
			Evaluate: func(prompt string) []string {
				if countSuspiciousPhrases(prompt) == 2 {
					return []string{"Some suspicious phrases detected"}
				}
				return nil
			},
		},
		{
			Name:       "unusual_structure",
			Escalation: AtLeastMedium,
			Delta:      0.1,
			Evaluate: func(prompt string) []string {
				if anyMatch(structurePatterns, prompt) {
					return []string{"Unusual prompt structure detected"}
				}
				return nil
			},
		},
		{
			Name:       "special_characters",
			Escalation: AtLeastMedium,
			Delta:      0.1,
			Evaluate: func(prompt string) []string {
				if SpecialCharRatio(prompt) > 0.15 {
					return []string{"Excessive special characters detected"}
				}
				return nil
			},
		},
		{
			Name:       "role_confusion",
			Escalation: ForceHigh,
			Delta:      0.25,
			Evaluate: func(prompt string) []string {
				if domainContextPattern.MatchString(prompt) {
					return nil
				}
				if anyMatch(rolePatterns, prompt) {
					return []string{"Potential role confusion attempt detected"}
				}
				return nil
			},
		},
		{
			Name:       "context_breaking",
			Escalation: ForceHigh,
			Delta:      0.25,
			Evaluate: func(prompt string) []string {
				if anyMatch(contextBreakPatterns, prompt) {
					return []string{"Context breaking attempt detected"}
				}
				return nil
			},
		},
		{
			Name:         "domain_relevance",
			Escalation:   ForceMedium,
			Delta:        0.2,
			SkipWhenHigh: true,
			Evaluate: func(prompt string) []string {
				if IsDomainRelated(prompt) {
					return nil
				}
				return []string{"Prompt appears unrelated to domain generation"}
			},
		},
	}
}

func matchInjectionPatterns(prompt string) []string {
	var out []string
	for _, re := range injectionPatterns {
		if re.MatchString(prompt) {
			out = append(out, "Detected injection pattern: "+patternSource(re))
		}
	}
	return out
}

func countSuspiciousPhrases(prompt string) int {
	normalized := strings.ToLower(strings.TrimSpace(prompt))
	count := 0
	for _, phrase := range suspiciousPhrases {
		if strings.Contains(normalized, phrase) {
			count++
		}
	}
	return count
}

// SpecialCharRatio is the share of characters outside letters, digits,
// whitespace and basic punctuation.
func SpecialCharRatio(prompt string) float64 {
	total := utf8.RuneCountInString(prompt)
	if total == 0 {
		return 0
	}
	special := len(specialCharPattern.FindAllStringIndex(prompt, -1))
	return float64(special) / float64(total)
}

// IsDomainRelated reports whether a prompt reads like a naming request.
func IsDomainRelated(prompt string) bool {
	if anyMatch(offTopicPatterns, prompt) {
		return false
	}

	lower := strings.ToLower(prompt)
	for _, keyword := range domainKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return namingIntentPattern.MatchString(prompt)
}

func compileAll(sources []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		out = append(out, regexp.MustCompile("(?i)"+src))
	}
	return out
}

func patternSource(re *regexp.Regexp) string {
	return strings.TrimPrefix(re.String(), "(?i)")
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
