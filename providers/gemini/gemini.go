// Package gemini implements the adapter for the Google Gemini API via
// the genai SDK. The SDK client is created per call, matching the
// stateless request/response contract: nothing is held open between
// calls.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/types"
)

const defaultModel = "gemini-2.0-flash-exp"

var models = []string{
	"gemini-2.0-flash-exp",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}

var catalog = map[string]types.Capabilities{
	"gemini-2.0-flash-exp": {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0", OutputUSDPer1K: "0"},
	"gemini-1.5-pro":       {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.00125", OutputUSDPer1K: "0.005"},
	"gemini-1.5-flash":     {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.000075", OutputUSDPer1K: "0.0003"},
	"gemini-1.5-flash-8b":  {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.0000375", OutputUSDPer1K: "0.00015"},
}

// Adapter calls the Gemini generate-content endpoint.
type Adapter struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	defaultModel string
	retry        providers.RetryPolicy
	logger       zerolog.Logger
}

// New constructs the Gemini adapter.
func New(opts providers.Options) (providers.Adapter, error) {
	if opts.Credential == "" {
		return nil, fmt.Errorf("%w: provider %q", types.ErrMissingCredential, providers.ProviderGemini)
	}
	model := opts.DefaultModel
	if model == "" {
		model = defaultModel
	}
	return &Adapter{
		apiKey:       opts.Credential,
		baseURL:      opts.BaseURL,
		httpClient:   opts.HTTPClient,
		defaultModel: model,
		retry:        opts.ResolveRetry(),
		logger:       opts.ResolveLogger(),
	}, nil
}

func (a *Adapter) Provider() providers.Provider { return providers.ProviderGemini }

func (a *Adapter) Models() []string {
	out := make([]string, len(models))
	copy(out, models)
	return out
}

func (a *Adapter) Capabilities(model string) types.Capabilities {
	return catalog[model]
}

func (a *Adapter) Generate(ctx context.Context, req types.Request) (*types.Response, error) {
	model := req.Model
	if model == "" {
		model = a.defaultModel
	}
	caps := a.Capabilities(model)
	r := req
	if err := providers.ValidateRequest(&r, providers.ProviderGemini, model, caps, a.logger); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     a.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: a.baseURL,
		},
	})
	if err != nil {
		return nil, &types.ProviderError{
			Provider: string(providers.ProviderGemini),
			Model:    model,
			Err:      fmt.Errorf("create client: %w", err),
		}
	}

	contents, config := buildRequest(r)
	start := time.Now()
	var result *genai.GenerateContentResponse
	err = providers.Retry(ctx, a.retry, a.logger, func(ctx context.Context) error {
		resp, callErr := client.Models.GenerateContent(ctx, model, contents, config)
		if callErr != nil {
			return classifyErr(callErr)
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, &types.ProviderError{Provider: string(providers.ProviderGemini), Model: model, Err: err}
	}
	latency := time.Since(start)

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		a.logger.Debug().Interface("raw", result).Msg("response has no candidates")
		return nil, &types.ProviderError{
			Provider: string(providers.ProviderGemini),
			Model:    model,
			Err:      fmt.Errorf("%w: no candidates", types.ErrMalformedResponse),
		}
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()

	var usage types.TokenUsage
	estimated := false
	if meta := result.UsageMetadata; meta != nil {
		usage = types.TokenUsage{
			Input:  int64(meta.PromptTokenCount),
			Output: int64(meta.CandidatesTokenCount),
			Total:  int64(meta.PromptTokenCount + meta.CandidatesTokenCount),
		}
	} else {
		usage = providers.EstimateUsage(model, r, text)
		estimated = true
	}

	resp := &types.Response{
		RequestID:      uuid.NewString(),
		Provider:       string(providers.ProviderGemini),
		Model:          model,
		Text:           text,
		Usage:          usage,
		EstimatedUsage: estimated,
		Latency:        latency,
	}
	if cost, ok := providers.ComputeCost(caps, usage); ok {
		resp.Cost = &cost
	}
	return resp, nil
}

func buildRequest(req types.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		mime := img.MIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(img.Data, mime))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
		CandidateCount:  1,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	return contents, config
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyStatus(apiErr.Code, apiErr.Message)
	}
	return providers.ClassifyTransportErr(err)
}
