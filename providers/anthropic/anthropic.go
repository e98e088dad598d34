// Package anthropic implements the adapter for Anthropic's messages
// API via the official SDK.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anth_opt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/types"
)

const defaultModel = "claude-3-5-sonnet-20241022"

var models = []string{
	"claude-3-5-sonnet-20241022",
	"claude-3-opus-20240229",
	"claude-3-sonnet-20240229",
	"claude-3-haiku-20240307",
}

var catalog = map[string]types.Capabilities{
	"claude-3-5-sonnet-20241022": {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.003", OutputUSDPer1K: "0.015"},
	"claude-3-opus-20240229":     {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.015", OutputUSDPer1K: "0.075"},
	"claude-3-sonnet-20240229":   {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.003", OutputUSDPer1K: "0.015"},
	"claude-3-haiku-20240307":    {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.00025", OutputUSDPer1K: "0.00125"},
}

// Adapter calls the Anthropic messages endpoint.
type Adapter struct {
	client       *anthropic.Client
	defaultModel string
	retry        providers.RetryPolicy
	logger       zerolog.Logger
}

// New constructs the Anthropic adapter.
func New(opts providers.Options) (providers.Adapter, error) {
	if opts.Credential == "" {
		return nil, fmt.Errorf("%w: provider %q", types.ErrMissingCredential, providers.ProviderAnthropic)
	}
	clientOpts := []anth_opt.RequestOption{
		anth_opt.WithAPIKey(opts.Credential),
		anth_opt.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anth_opt.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, anth_opt.WithHTTPClient(opts.HTTPClient))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Adapter{
		client:       &client,
		defaultModel: firstNonEmpty(opts.DefaultModel, defaultModel),
		retry:        opts.ResolveRetry(),
		logger:       opts.ResolveLogger(),
	}, nil
}

func (a *Adapter) Provider() providers.Provider { return providers.ProviderAnthropic }

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
	if err := providers.ValidateRequest(&r, providers.ProviderAnthropic, model, caps, a.logger); err != nil {
		return nil, err
	}

	params := buildParams(model, r)
	start := time.Now()
	var result *anthropic.Message
	err := providers.Retry(ctx, a.retry, a.logger, func(ctx context.Context) error {
		msg, callErr := a.client.Messages.New(ctx, params)
		if callErr != nil {
			return classifyErr(callErr)
		}
		result = msg
		return nil
	})
	if err != nil {
		return nil, &types.ProviderError{Provider: string(providers.ProviderAnthropic), Model: model, Err: err}
	}
	latency := time.Since(start)

	var sb strings.Builder
	for _, block := range result.Content {
		if txt, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(txt.Text)
		}
	}
	if sb.Len() == 0 && len(result.Content) == 0 {
		a.logger.Debug().Str("raw", result.RawJSON()).Msg("response has no content blocks")
		return nil, &types.ProviderError{
			Provider: string(providers.ProviderAnthropic),
			Model:    model,
			Err:      fmt.Errorf("%w: no content blocks", types.ErrMalformedResponse),
		}
	}

	totalInput := result.Usage.InputTokens + result.Usage.CacheCreationInputTokens + result.Usage.CacheReadInputTokens
	usage := types.TokenUsage{
		Input:  totalInput,
		Output: result.Usage.OutputTokens,
		Total:  totalInput + result.Usage.OutputTokens,
	}

	resp := &types.Response{
		RequestID: uuid.NewString(),
		Provider:  string(providers.ProviderAnthropic),
		Model:     model,
		Text:      sb.String(),
		Usage:     usage,
		Latency:   latency,
	}
	if cost, ok := providers.ComputeCost(caps, usage); ok {
		resp.Cost = &cost
	}
	return resp, nil
}

func buildParams(model string, req types.Request) anthropic.MessageNewParams {
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(req.Prompt),
	}
	for _, img := range req.Images {
		mime := img.MIME
		if mime == "" {
			mime = "image/png"
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(mime, base64.StdEncoding.EncodeToString(img.Data)))
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	return params
}

func classifyErr(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return providers.ClassifyStatus(apiErr.StatusCode, apiErr.Error())
	}
	return providers.ClassifyTransportErr(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
