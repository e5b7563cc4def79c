package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/aveekpatra/Domain-AI/internal/security"
)

const maxBodyBytes = 1 << 16

var (
	tldPattern    = regexp.MustCompile(`(?i)^\.[a-z]{2,10}$`)
	domainPattern = regexp.MustCompile(`(?i)^[a-z0-9-]+\.[a-z]{2,}$`)
)

// BindError is a body that could not be decoded.
type BindError struct {
	Message string
}

func (e *BindError) Error() string { return e.Message }

// FieldError is a decoded body that failed a validation rule.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// PromptRejection is a prompt that failed length bounds or screening.
type PromptRejection struct {
	Prompt     string
	Validation security.Validation
}

func (e *PromptRejection) Error() string { return e.Validation.Error }

// Blocked reports whether the prompt failed screening rather than length
// bounds.
func (e *PromptRejection) Blocked() bool {
	return e.Validation.Error == security.ErrPromptHarmful
}

// binder holds a validator with english translations, json tag names and
// the secure_prompt rule backed by checker.
type binder struct {
	validator  *validator.Validate
	translator ut.Translator
	checker    PromptChecker
}

func newBinder(checker PromptChecker) *binder {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())

	// prefer json tag names in messages
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

	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("secure_prompt", func(fl validator.FieldLevel) bool {
		return checker.ValidatePrompt(fl.Field().String()).Valid
	})
	_ = v.RegisterValidation("tld", func(fl validator.FieldLevel) bool {
		return tldPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("domain_name", func(fl validator.FieldLevel) bool {
		return domainPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	registerMessage(v, trans, "min", "{0} must be at least {1}")
	registerMessage(v, trans, "max", "{0} must be at most {1}")
	registerMessage(v, trans, "tld", "Invalid TLD")
	registerMessage(v, trans, "domain_name", "Invalid domain")

	return &binder{validator: v, translator: trans, checker: checker}
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// bindJSON decodes the request body into dst and validates it. Unknown
// fields are ignored.
func (b *binder) bindJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return &BindError{Message: "Invalid input: empty body"}
	}
	defer r.Body.Close() // nolint:errcheck // best-effort cleanup

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &BindError{Message: "Invalid input: unreadable body"}
	}
	if len(raw) > maxBodyBytes {
		return &BindError{Message: "Invalid input: body too large"}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &BindError{Message: "Invalid input: empty body"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return &BindError{Message: "Invalid input: " + jsonErrorMessage(err)}
	}
	if dec.More() {
		return &BindError{Message: "Invalid input: unexpected trailing data"}
	}

	return b.validate(dst)
}

func (b *binder) validate(dst any) error {
	err := b.validator.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &BindError{Message: "Invalid input"}
	}

	fe := verrs[0]
	if fe.Tag() == "secure_prompt" {
		prompt, _ := fe.Value().(string)
		return &PromptRejection{Prompt: prompt, Validation: b.checker.ValidatePrompt(prompt)}
	}
	return &FieldError{Field: fe.Field(), Message: fe.Translate(b.translator)}
}

func jsonErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + " has the wrong type"
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "malformed JSON"
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return "malformed JSON"
	}
	return err.Error()
}
