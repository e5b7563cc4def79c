// Package ailink is the language-model gateway: it renders the embedded
// prompts, sends them through a chat-completion driver and turns the reply
// into domain suggestions or an improved prompt.
package ailink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aveekpatra/Domain-AI/internal/ailink/content"
	"github.com/aveekpatra/Domain-AI/internal/ailink/driver"
	"github.com/aveekpatra/Domain-AI/internal/ailink/driver/openrouter"
	"github.com/aveekpatra/Domain-AI/internal/ailink/prompt"
	"github.com/aveekpatra/Domain-AI/internal/config"
	"github.com/aveekpatra/Domain-AI/internal/suggest"
)

const (
	defaultTimeout = 30 * time.Second
	// DefaultCount is the number of suggestions requested when none is given.
	DefaultCount = 8
)

// ErrEmptyResponse is returned when the model replied with no content.
var ErrEmptyResponse = errors.New("AI returned empty response")

// UpstreamRecorder observes each completed model call. status is one of the
// labels produced by Classify.
type UpstreamRecorder interface {
	RecordUpstreamCall(service, status string, duration time.Duration)
}

// Gateway coordinates prompt rendering and driver execution.
type Gateway struct {
	Driver   driver.Driver
	Prompts  prompt.Registry
	Model    string
	Timeout  time.Duration
	Recorder UpstreamRecorder
}

// ChatConfig tunes a single call. Zero values fall back to the gateway's.
type ChatConfig struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// ChatRequest is one chat completion.
type ChatRequest struct {
	Messages           []content.Message
	Config             ChatConfig
	ResponseFormatJSON bool
	PromptSlug         string
}

// ChatResponse carries the model's text reply.
type ChatResponse struct {
	Text  string
	Model string
	Usage *driver.Usage
}

// NewGateway wires an OpenRouter driver and the prompt registry from cfg.
func NewGateway(cfg config.AIConfig, prompts prompt.Registry) *Gateway {
	client := openrouter.NewClient(cfg.BaseURL, cfg.APIKey)
	if model := strings.TrimSpace(cfg.Model); model != "" {
		client.Model = model
	}
	client.SiteURL = cfg.SiteURL
	client.AppTitle = cfg.AppTitle

	return &Gateway{
		Driver:  client,
		Prompts: prompts,
		Model:   client.Model,
		Timeout: cfg.Timeout,
	}
}

// Chat sends req to the driver under the gateway timeout. Driver failures are
// wrapped as "AI error: ..." and keep their type for errors.As.
func (g *Gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if g == nil || g.Driver == nil {
		return nil, errors.New("ailink driver not configured")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("at least one message is required")
	}

	model := strings.TrimSpace(req.Config.Model)
	if model == "" {
		model = g.Model
	}
	driverReq := &driver.Request{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Config.Temperature,
		MaxTokens:   req.Config.MaxTokens,
		PromptSlug:  req.PromptSlug,
	}
	if req.ResponseFormatJSON {
		driverReq.ResponseFormat = driver.JSONObject
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	resp, err := g.Driver.Complete(ctx, driverReq)
	g.record(err, time.Since(started))
	if err != nil {
		return nil, fmt.Errorf("AI error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return &ChatResponse{Text: text, Model: resp.Model, Usage: resp.Usage}, nil
}

func (g *Gateway) record(err error, d time.Duration) {
	if g.Recorder == nil {
		return
	}
	g.Recorder.RecordUpstreamCall(g.Driver.Name(), Classify(err), d)
}

// GenerateSuggestions asks the model for count domain ideas for prompt. When
// tlds is empty the prompt carries category guidance instead of an
// allow-list. The reply must satisfy the suggestion contract.
func (g *Gateway) GenerateSuggestions(ctx context.Context, userPrompt string, tlds []string, count int) (*suggest.Response, error) {
	if count <= 0 {
		count = DefaultCount
	}
	vars := map[string]string{
		"input": userPrompt,
		"count": strconv.Itoa(count),
	}
	if len(tlds) > 0 {
		vars["tlds"] = strings.Join(tlds, ", ")
	}

	messages, err := g.render(prompt.SlugDomainGenerate, vars)
	if err != nil {
		return nil, err
	}

	resp, err := g.Chat(ctx, ChatRequest{
		Messages:           messages,
		ResponseFormatJSON: true,
		PromptSlug:         prompt.SlugDomainGenerate,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSONBytes(resp.Text)
	if err != nil {
		return nil, err
	}
	return suggest.Parse(raw)
}

// ImprovePrompt asks the model to rewrite userPrompt into a clearer domain
// search prompt and returns the trimmed text.
func (g *Gateway) ImprovePrompt(ctx context.Context, userPrompt string) (string, error) {
	messages, err := g.render(prompt.SlugPromptImprove, map[string]string{"input": userPrompt})
	if err != nil {
		return "", err
	}

	resp, err := g.Chat(ctx, ChatRequest{
		Messages:   messages,
		PromptSlug: prompt.SlugPromptImprove,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (g *Gateway) render(slug string, vars map[string]string) ([]content.Message, error) {
	if g == nil || g.Prompts == nil {
		return nil, errors.New("ailink prompt registry not configured")
	}
	def, err := g.Prompts.Get(slug)
	if err != nil {
		return nil, err
	}
	system, user, err := def.Render(vars)
	if err != nil {
		return nil, err
	}
	return []content.Message{content.System(system), content.User(user)}, nil
}
