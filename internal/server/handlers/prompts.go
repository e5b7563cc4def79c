package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aveekpatra/Domain-AI/internal/metrics"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/security"
)

// FallbackPrompt replaces a rewrite that fails screening.
const FallbackPrompt = "Generate creative and brandable domain name ideas for my business"

// ImproveRequest is the body of POST /api/prompts/improve.
type ImproveRequest struct {
	Prompt string `json:"prompt" validate:"secure_prompt"`
}

// ImproveResponse carries the rewritten prompt.
type ImproveResponse struct {
	Improved string `json:"improved"`
}

// ImprovePrompt handles POST /api/prompts/improve.
func (a *API) ImprovePrompt(w http.ResponseWriter, r *http.Request) {
	a.debug("improve hit", zap.String("origin", r.Header.Get("Origin")), zap.String("ip", ratelimit.ClientIP(r)))

	if !a.allowBasic(w, r, RouteImprove) {
		return
	}

	var req ImproveRequest
	if err := a.bind(r, &req); err != nil {
		a.bindFailure(w, r, err)
		return
	}
	a.debug("improve input ok", zap.Int("len", len(req.Prompt)))

	if !a.allowAI(w, r, ratelimit.OpPromptImprove) {
		return
	}

	text, err := a.Improver.ImprovePrompt(r.Context(), strings.TrimSpace(req.Prompt))
	if err != nil {
		a.debug("improve model error", zap.Error(err))
		a.respondWithError(w, r, modelFailure(r.Context(), err))
		return
	}

	improved := strings.TrimSpace(text)
	if res := a.checker().Check(improved); !res.IsSecure {
		metrics.RecordSecurityViolation(string(res.Risk))
		if a.Diagnostics && a.Logger != nil {
			a.Logger.Warn("improved prompt failed screening", zap.Strings("violations", res.Violations))
		}
		improved = FallbackPrompt
	}

	writeJSON(w, http.StatusOK, ImproveResponse{Improved: improved})
}

func (a *API) checker() PromptChecker {
	if a.Prompts != nil {
		return a.Prompts
	}
	return defaultChecker
}

var defaultChecker PromptChecker = security.NewAnalyzer()
