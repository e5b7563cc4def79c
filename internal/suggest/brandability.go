package suggest

import "strings"

// Brandability rates how memorable and pronounceable name is on a 0-100
// scale. name is the label without its TLD; tld may carry a leading dot.
func Brandability(name, tld string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return 0
	}

	score := 0.35*lengthScore(len(name)) +
		0.30*pronounceability(name) +
		0.20*tldScore(strings.TrimPrefix(strings.ToLower(tld), ".")) +
		0.15*cleanliness(name)

	if strings.Contains(name, "-") {
		score -= 0.15
	}

	switch {
	case score < 0:
		score = 0
	case score > 1:
		score = 1
	}
	return int(score*100 + 0.5)
}

// FillScores sets a Brandability score on suggestions the model left unscored.
func FillScores(resp *Response) {
	if resp == nil {
		return
	}
	for i := range resp.Suggestions {
		s := &resp.Suggestions[i]
		if s.Score == nil {
			v := Brandability(s.Domain, s.TLD)
			s.Score = &v
		}
	}
}

func lengthScore(n int) float64 {
	switch {
	case n <= 4:
		return 1.0
	case n <= 6:
		return 0.9
	case n <= 8:
		return 0.8
	case n <= 10:
		return 0.65
	default:
		v := 0.65 - float64(n-10)/20.0
		if v < 0 {
			return 0
		}
		return v
	}
}

// pronounceability rewards vowel density near 40% and penalizes consonant
// clusters longer than two letters.
func pronounceability(name string) float64 {
	const vowels = "aeiouy"

	letters, vowelCount, clusters, run := 0, 0, 0, 0
	for _, r := range name {
		switch {
		case strings.ContainsRune(vowels, r):
			letters++
			vowelCount++
			run = 0
		case r >= 'a' && r <= 'z':
			letters++
			run++
			if run == 3 {
				clusters++
			}
		default:
			run = 0
		}
	}
	if letters == 0 {
		return 0
	}

	ratio := float64(vowelCount) / float64(letters)
	score := 1 - 2.5*abs(ratio-0.4)
	score -= 0.2 * float64(clusters)
	if score < 0 {
		return 0
	}
	return score
}

func cleanliness(name string) float64 {
	digits := 0
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits == 0 {
		return 1
	}
	return 1 - float64(digits)/float64(len(name))
}

func tldScore(tld string) float64 {
	switch tld {
	case "com":
		return 1.0
	case "ai", "io", "co":
		return 0.9
	case "app", "dev", "net", "org":
		return 0.8
	case "tech", "store", "shop":
		return 0.7
	case "":
		return 0.5
	default:
		return 0.6
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
