package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/ailink"
	apperrors "github.com/aveekpatra/Domain-AI/internal/errors"
	"github.com/aveekpatra/Domain-AI/internal/metrics"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/registrar"
	"github.com/aveekpatra/Domain-AI/internal/suggest"
)

// GenerateRequest is the body of POST /api/domains/generate.
type GenerateRequest struct {
	Prompt string   `json:"prompt" validate:"secure_prompt"`
	TLDs   []string `json:"tlds,omitempty" validate:"omitempty,max=20,dive,tld"`
	Count  *int     `json:"count,omitempty" validate:"omitempty,min=1,max=20"`
}

// ValidateRequest is the body of POST /api/domains/validate.
type ValidateRequest struct {
	Domain string `json:"domain" validate:"required,domain_name"`
}

// ValidateResponse reports one registrar lookup. Available and Price are
// omitted when the registrar did not report them.
type ValidateResponse struct {
	Domain    string `json:"domain"`
	Available *bool  `json:"available,omitempty"`
	Price     string `json:"price,omitempty"`
	Registrar string `json:"registrar"`
}

// GenerateDomains handles POST /api/domains/generate.
func (a *API) GenerateDomains(w http.ResponseWriter, r *http.Request) {
	a.debug("domains.generate hit", zap.String("origin", r.Header.Get("Origin")), zap.String("ip", ratelimit.ClientIP(r)))

	if !a.allowBasic(w, r, RouteGenerate) {
		return
	}

	var req GenerateRequest
	if err := a.bind(r, &req); err != nil {
		a.bindFailure(w, r, err)
		return
	}

	if !a.allowAI(w, r, ratelimit.OpDomainsGenerate) {
		return
	}

	count := ailink.DefaultCount
	if req.Count != nil {
		count = *req.Count
	}
	tlds := make([]string, len(req.TLDs))
	for i, t := range req.TLDs {
		tlds[i] = strings.ToLower(t)
	}

	resp, err := a.Generator.GenerateSuggestions(r.Context(), strings.TrimSpace(req.Prompt), tlds, count)
	if err != nil {
		a.debug("domains.generate model error", zap.Error(err))
		var invalid *suggest.ValidationError
		if errors.As(err, &invalid) {
			a.respondWithError(w, r, apperrors.WrapModelResponseInvalid(r.Context(), err))
			return
		}
		a.respondWithError(w, r, modelFailure(r.Context(), err))
		return
	}

	if a.FillScores {
		suggest.FillScores(resp)
	}
	a.enrich(r.Context(), resp)
	recordAvailability(resp.Suggestions)

	writeJSON(w, http.StatusOK, resp)
}

func recordAvailability(suggestions []suggest.Suggestion) {
	for _, s := range suggestions {
		switch {
		case s.Available == nil:
			metrics.RecordSuggestion("unknown")
		case *s.Available:
			metrics.RecordSuggestion("available")
		default:
			metrics.RecordSuggestion("taken")
		}
	}
}

// enrich adds availability and price from the registrar. Lookup failures
// leave the suggestions as the model returned them.
func (a *API) enrich(ctx context.Context, resp *suggest.Response) {
	for i := range resp.Suggestions {
		if resp.Suggestions[i].Registrar == "" {
			resp.Suggestions[i].Registrar = registrar.DisplayName
		}
	}
	if a.Registrar == nil || len(resp.Suggestions) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(resp.Suggestions))
	domains := make([]string, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		fqdn := strings.ToLower(s.FQDN())
		if _, ok := seen[fqdn]; ok {
			continue
		}
		seen[fqdn] = struct{}{}
		domains = append(domains, fqdn)
	}

	results, err := a.Registrar.CheckAvailability(ctx, domains)
	if err != nil {
		a.debug("domains.generate enrichment failed", zap.Error(err))
		return
	}

	for i := range resp.Suggestions {
		s := &resp.Suggestions[i]
		row, ok := results[strings.ToLower(s.FQDN())]
		if !ok {
			continue
		}
		if row.Available != nil {
			s.Available = row.Available
		}
		if row.RegisterPrice != nil {
			s.Price = formatPrice(*row.RegisterPrice)
		}
	}
}

// ValidateDomain handles POST /api/domains/validate.
func (a *API) ValidateDomain(w http.ResponseWriter, r *http.Request) {
	a.debug("domains.validate hit", zap.String("origin", r.Header.Get("Origin")), zap.String("ip", ratelimit.ClientIP(r)))

	if !a.allowBasic(w, r, RouteValidate) {
		return
	}

	if a.Registrar == nil {
		a.respondWithError(w, r, apperrors.NewRegistrarConfigError(registrar.CredentialsHint(a.Variant)))
		return
	}

	var req ValidateRequest
	if err := a.bind(r, &req); err != nil {
		a.bindFailure(w, r, err)
		return
	}

	if a.MeterValidate && !a.allowAI(w, r, ratelimit.OpDomainsValidate) {
		return
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	results, err := a.Registrar.CheckAvailability(r.Context(), []string{domain})
	if err != nil {
		a.debug("domains.validate error", zap.Error(err))
		switch {
		case errors.Is(err, registrar.ErrMissingCredentials):
			a.respondWithError(w, r, apperrors.NewRegistrarConfigError(registrar.CredentialsHint(a.Registrar.Variant())))
		case registrar.IsAuthError(err):
			a.respondWithError(w, r, apperrors.NewRegistrarAuthError(registrar.AuthHint(a.Registrar.Variant())))
		default:
			a.respondWithError(w, r, apperrors.WrapRegistrarError(r.Context(), err))
		}
		return
	}

	out := ValidateResponse{Domain: domain, Registrar: registrar.DisplayName}
	if row, ok := results[domain]; ok {
		out.Available = row.Available
		if row.RegisterPrice != nil {
			out.Price = formatPrice(*row.RegisterPrice)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
