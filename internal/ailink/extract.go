package ailink

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrParseJSON is returned when no JSON object can be recovered from model
// output.
var ErrParseJSON = errors.New("Failed to parse JSON from model output") // nolint:staticcheck // surfaced verbatim to API callers

var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONBytes returns the JSON payload in text. The whole text is tried
// first, then the span from the first '{' to the last '}'.
func ExtractJSONBytes(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	if match := jsonBlock.FindString(trimmed); match != "" && json.Valid([]byte(match)) {
		return []byte(match), nil
	}
	return nil, ErrParseJSON
}

// ExtractJSON decodes the JSON payload in text into v.
func ExtractJSON(text string, v any) error {
	raw, err := ExtractJSONBytes(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrParseJSON
	}
	return nil
}
