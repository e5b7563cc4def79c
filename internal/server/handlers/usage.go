package handlers

import (
	"net/http"

	apperrors "github.com/aveekpatra/Domain-AI/internal/errors"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
)

// UsageResponse lists the caller's consumption per operation. Operations the
// caller has not used are absent.
type UsageResponse struct {
	IP         string                                   `json:"ip"`
	Operations map[ratelimit.Operation]*ratelimit.Usage `json:"operations"`
}

// AIUsage handles GET /api/ai/usage.
func (a *API) AIUsage(w http.ResponseWriter, r *http.Request) {
	if a.Usage == nil {
		a.respondWithError(w, r, apperrors.NewNotFoundError("Not found"))
		return
	}

	ip := ratelimit.AIClientIP(r)
	out := UsageResponse{IP: ip, Operations: map[ratelimit.Operation]*ratelimit.Usage{}}
	for _, op := range []ratelimit.Operation{ratelimit.OpDomainsGenerate, ratelimit.OpPromptImprove, ratelimit.OpDomainsValidate} {
		u, err := a.Usage.Usage(r.Context(), ip, op)
		if err != nil {
			a.respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Failed to read usage"))
			return
		}
		if u != nil {
			out.Operations[op] = u
		}
	}
	writeJSON(w, http.StatusOK, out)
}
