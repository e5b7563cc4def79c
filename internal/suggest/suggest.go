// Package suggest defines the domain suggestion contract returned by the
// language model and validates it fail-closed: one bad suggestion rejects the
// whole response.
package suggest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Suggestion is one proposed domain. Domain excludes the TLD; TLD carries the
// leading dot. Availability, price and registrar are filled by enrichment.
type Suggestion struct {
	Domain    string `json:"domain" validate:"required"`
	TLD       string `json:"tld" validate:"required"`
	Reason    string `json:"reason,omitempty"`
	Score     *int   `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
	Available *bool  `json:"available,omitempty"`
	Price     string `json:"price,omitempty"`
	Registrar string `json:"registrar,omitempty"`
}

// FQDN joins domain and TLD, tolerating a TLD without its leading dot.
func (s Suggestion) FQDN() string {
	return s.Domain + "." + strings.TrimPrefix(s.TLD, ".")
}

// Response is the body returned by the generate endpoint.
type Response struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ValidationError reports the first contract violation. Index is -1 when the
// problem is with the envelope rather than a suggestion.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid model response: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid model response: suggestions[%d].%s %s", e.Index, e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	return v
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInteger
	kindBool
)

var fieldKinds = map[string]fieldKind{
	"domain":    kindString,
	"tld":       kindString,
	"reason":    kindString,
	"score":     kindInteger,
	"available": kindBool,
	"price":     kindString,
	"registrar": kindString,
}

// Parse type-checks raw model JSON against the contract and then validates
// it. Unknown keys are dropped. A present key with the wrong JSON type, or
// null, is a violation.
func Parse(data []byte) (*Response, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ValidationError{Index: -1, Field: "response", Reason: "must be a JSON object"}
	}

	rawList, ok := envelope["suggestions"]
	if !ok {
		return nil, &ValidationError{Index: -1, Field: "suggestions", Reason: "is required"}
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(rawList, &items); err != nil || isNull(rawList) {
		return nil, &ValidationError{Index: -1, Field: "suggestions", Reason: "must be an array of objects"}
	}

	resp := &Response{Suggestions: make([]Suggestion, 0, len(items))}
	for i, item := range items {
		if item == nil {
			return nil, &ValidationError{Index: i, Field: "item", Reason: "must be an object"}
		}
		s, err := decodeSuggestion(i, item)
		if err != nil {
			return nil, err
		}
		resp.Suggestions = append(resp.Suggestions, s)
	}

	if err := Validate(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Validate checks every suggestion and returns the first violation.
func Validate(resp *Response) error {
	if resp == nil || resp.Suggestions == nil {
		return &ValidationError{Index: -1, Field: "suggestions", Reason: "is required"}
	}
	for i, s := range resp.Suggestions {
		if err := validate.Struct(s); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return &ValidationError{Index: i, Field: verrs[0].Field(), Reason: reasonFor(verrs[0])}
			}
			return &ValidationError{Index: i, Field: "item", Reason: err.Error()}
		}
	}
	return nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func decodeSuggestion(index int, item map[string]json.RawMessage) (Suggestion, error) {
	var s Suggestion
	for field, kind := range fieldKinds {
		raw, ok := item[field]
		if !ok {
			continue
		}
		if isNull(raw) {
			return s, &ValidationError{Index: index, Field: field, Reason: "must not be null"}
		}

		switch kind {
		case kindString:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return s, &ValidationError{Index: index, Field: field, Reason: "must be a string"}
			}
			switch field {
			case "domain":
				s.Domain = v
			case "tld":
				s.TLD = v
			case "reason":
				s.Reason = v
			case "price":
				s.Price = v
			case "registrar":
				s.Registrar = v
			}
		case kindInteger:
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return s, &ValidationError{Index: index, Field: field, Reason: "must be a number"}
			}
			if f != math.Trunc(f) {
				return s, &ValidationError{Index: index, Field: field, Reason: "must be an integer"}
			}
			if f < math.MinInt32 || f > math.MaxInt32 {
				return s, &ValidationError{Index: index, Field: field, Reason: "is out of range"}
			}
			n := int(f)
			s.Score = &n
		case kindBool:
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return s, &ValidationError{Index: index, Field: field, Reason: "must be a boolean"}
			}
			s.Available = &b
		}
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
