// Package openaichat implements the adapter for every provider that
// speaks the OpenAI chat-completions dialect: OpenAI itself, Groq,
// OpenRouter, Azure OpenAI deployments, and user-configured custom
// endpoints. The providers differ only in base URL, authentication
// option and model catalog.
package openaichat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	openai_opt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/types"
)

const azureAPIVersion = "2024-06-01"

// Config parameterizes one OpenAI-compatible adapter instance.
type Config struct {
	Provider     providers.Provider
	APIKey       string
	BaseURL      string
	DefaultModel string

	// Azure switches client construction to Azure's endpoint and
	// key scheme. BaseURL must then be the resource endpoint.
	Azure bool

	// Models is the catalog order reported by Models(); Catalog
	// holds the capability descriptor per model.
	Models  []string
	Catalog map[string]types.Capabilities

	Options providers.Options
}

// Adapter calls a chat-completions endpoint and maps the reply into
// the normalized envelope.
type Adapter struct {
	provider     providers.Provider
	client       openai.Client
	models       []string
	catalog      map[string]types.Capabilities
	defaultModel string
	retry        providers.RetryPolicy
	logger       zerolog.Logger
}

// New constructs an adapter from a fully resolved Config.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: provider %q", types.ErrMissingCredential, cfg.Provider)
	}
	var clientOpts []openai_opt.RequestOption
	if cfg.Azure {
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: provider %q requires an endpoint", types.ErrMissingCredential, cfg.Provider)
		}
		clientOpts = append(clientOpts,
			azure.WithEndpoint(cfg.BaseURL, azureAPIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		clientOpts = append(clientOpts, openai_opt.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			clientOpts = append(clientOpts, openai_opt.WithBaseURL(cfg.BaseURL))
		}
	}
	// Retries are handled by providers.Retry so attempt accounting
	// stays exact; the SDK must not add its own.
	clientOpts = append(clientOpts, openai_opt.WithMaxRetries(0))
	if cfg.Options.HTTPClient != nil {
		clientOpts = append(clientOpts, openai_opt.WithHTTPClient(cfg.Options.HTTPClient))
	}
	return &Adapter{
		provider:     cfg.Provider,
		client:       openai.NewClient(clientOpts...),
		models:       cfg.Models,
		catalog:      cfg.Catalog,
		defaultModel: cfg.DefaultModel,
		retry:        cfg.Options.ResolveRetry(),
		logger:       cfg.Options.ResolveLogger(),
	}, nil
}

func (a *Adapter) Provider() providers.Provider { return a.provider }

func (a *Adapter) Models() []string {
	out := make([]string, len(a.models))
	copy(out, a.models)
	return out
}

func (a *Adapter) Capabilities(model string) types.Capabilities {
	return a.catalog[model]
}

func (a *Adapter) Generate(ctx context.Context, req types.Request) (*types.Response, error) {
	model := req.Model
	if model == "" {
		model = a.defaultModel
	}
	caps := a.Capabilities(model)
	r := req
	if err := providers.ValidateRequest(&r, a.provider, model, caps, a.logger); err != nil {
		return nil, err
	}

	params := a.buildParams(model, r)
	start := time.Now()
	var completion *openai.ChatCompletion
	err := providers.Retry(ctx, a.retry, a.logger, func(ctx context.Context) error {
		result, callErr := a.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return classifyErr(callErr)
		}
		completion = result
		return nil
	})
	if err != nil {
		return nil, &types.ProviderError{Provider: string(a.provider), Model: model, Err: err}
	}
	latency := time.Since(start)

	if len(completion.Choices) == 0 {
		a.logger.Debug().Str("raw", completion.RawJSON()).Msg("response has no choices")
		return nil, &types.ProviderError{
			Provider: string(a.provider),
			Model:    model,
			Err:      fmt.Errorf("%w: no choices", types.ErrMalformedResponse),
		}
	}
	text := completion.Choices[0].Message.Content

	usage := types.TokenUsage{
		Input:  completion.Usage.PromptTokens,
		Output: completion.Usage.CompletionTokens,
		Total:  completion.Usage.TotalTokens,
	}
	estimated := false
	if usage.Input == 0 && usage.Output == 0 && usage.Total == 0 {
		usage = providers.EstimateUsage(model, r, text)
		estimated = true
	}

	resp := &types.Response{
		RequestID:      uuid.NewString(),
		Provider:       string(a.provider),
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

func (a *Adapter) buildParams(model string, req types.Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.NewOpt(req.SystemPrompt),
				},
			},
		})
	}

	if len(req.Images) == 0 {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.NewOpt(req.Prompt),
				},
			},
		})
	} else {
		parts := []openai.ChatCompletionContentPartUnionParam{
			{OfText: &openai.ChatCompletionContentPartTextParam{Text: req.Prompt}},
		}
		for _, img := range req.Images {
			parts = append(parts, openai.ChatCompletionContentPartUnionParam{
				OfImageURL: &openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
						URL:    dataURL(img),
						Detail: "auto",
					},
				},
			})
		}
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			},
		})
	}

	return openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    messages,
		Temperature: param.NewOpt(req.Temperature),
		MaxTokens:   param.NewOpt(int64(req.MaxTokens)),
		N:           param.NewOpt(int64(1)),
	}
}

func dataURL(img types.Image) string {
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func classifyErr(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return providers.ClassifyStatus(apiErr.StatusCode, apiErr.Message)
	}
	return providers.ClassifyTransportErr(err)
}
