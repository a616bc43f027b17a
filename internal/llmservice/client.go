// Package llmservice talks to the configured chat model provider.
package llmservice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"doc-gpt/internal/config"
	"doc-gpt/internal/metrics"
	"doc-gpt/internal/models"
)

// CompletionRequest describes one completion call to the model provider.
// Template slots of the form {{$name}} are filled from Variables before
// the call.
type CompletionRequest struct {
	Template    string
	Variables   map[string]string
	MaxTokens   int
	Temperature float64
}

// CompletionResult carries the model answer and, when the provider
// reports it, token usage.
type CompletionResult struct {
	Text  string
	Usage *models.Usage
}

// Engine is the completion surface the pipelines depend on.
type Engine interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// Client sends completion requests to the configured provider with a
// shared rate limit.
type Client struct {
	llm     llms.Model
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient builds the completion client for the configured provider.
func NewClient(cfg *config.Config) (*Client, error) {
	var (
		llm llms.Model
		err error
	)
	switch cfg.Provider.Type {
	case config.ProviderOllama:
		llm, err = ollama.New(
			ollama.WithServerURL(cfg.Provider.Endpoint),
			ollama.WithModel(cfg.Provider.CompletionDeployment),
		)
	case config.ProviderAzure:
		llm, err = openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(cfg.Provider.APIVersion),
			openai.WithBaseURL(cfg.Provider.Endpoint),
			openai.WithToken(strings.TrimPrefix(cfg.Provider.APIKey, "Bearer ")),
			openai.WithModel(cfg.Provider.CompletionDeployment),
		)
	default:
		llm, err = openai.New(
			openai.WithBaseURL(cfg.Provider.Endpoint),
			openai.WithToken(strings.TrimPrefix(cfg.Provider.APIKey, "Bearer ")),
			openai.WithModel(cfg.Provider.CompletionDeployment),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	return &Client{
		llm:     llm,
		limiter: rate.NewLimiter(rate.Limit(cfg.Provider.RPS), cfg.Provider.Burst),
		timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	}, nil
}

// Complete renders the request template and calls the model provider.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	prompt := RenderTemplate(req.Template, req.Variables)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire rate limit slot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := []llms.CallOption{llms.WithMaxTokens(req.MaxTokens)}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	metrics.ProviderRequests.WithLabelValues("ok").Inc()

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}
	// the last reported accounting wins when several choices carry one
	var usage *models.Usage
	for _, choice := range resp.Choices {
		if u := usageFromInfo(choice.GenerationInfo); u != nil {
			usage = u
		}
	}
	log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("prompt_len", len(prompt)).
		Msg("completion finished")

	return &CompletionResult{
		Text:  resp.Choices[0].Content,
		Usage: usage,
	}, nil
}

// RenderTemplate fills {{$name}} slots with their variable values in a
// single pass, so slot syntax inside a value is left alone. Unknown
// slots stay in place.
func RenderTemplate(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{$"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// usageFromInfo extracts token accounting when the provider reports it.
func usageFromInfo(info map[string]any) *models.Usage {
	prompt, okP := intFromInfo(info, "PromptTokens")
	completion, okC := intFromInfo(info, "CompletionTokens")
	total, okT := intFromInfo(info, "TotalTokens")
	if !okP && !okC && !okT {
		return nil
	}
	if !okT {
		total = prompt + completion
	}
	return &models.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}
}

// intFromInfo reads a numeric generation info value. Providers disagree
// on the concrete type.
func intFromInfo(info map[string]any, key string) (int, bool) {
	switch v := info[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
