// Package huggingface implements the adapter for the Hugging Face
// Inference API. The API reports no token usage, so accounting falls
// back to local estimation and responses are flagged accordingly.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/types"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co"
	defaultModel   = "meta-llama/Meta-Llama-3-8B-Instruct"
)

var models = []string{
	"meta-llama/Meta-Llama-3-8B-Instruct",
	"meta-llama/Meta-Llama-3-70B-Instruct",
	"mistralai/Mistral-7B-Instruct-v0.2",
	"mistralai/Mixtral-8x7B-Instruct-v0.1",
	"google/gemma-7b-it",
	"microsoft/Phi-3-mini-4k-instruct",
}

// Hosted inference is unpriced for serverless usage, so capability
// entries carry no rates and cost stays nil.
var catalog = map[string]types.Capabilities{
	"meta-llama/Meta-Llama-3-8B-Instruct":  {MaxTokens: 4096},
	"meta-llama/Meta-Llama-3-70B-Instruct": {MaxTokens: 4096},
	"mistralai/Mistral-7B-Instruct-v0.2":   {MaxTokens: 4096},
	"mistralai/Mixtral-8x7B-Instruct-v0.1": {MaxTokens: 4096},
	"google/gemma-7b-it":                   {MaxTokens: 4096},
	"microsoft/Phi-3-mini-4k-instruct":     {MaxTokens: 4096},
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	Temperature    float64 `json:"temperature,omitempty"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Adapter calls the Hugging Face text-generation endpoint.
type Adapter struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	defaultModel string
	retry        providers.RetryPolicy
	logger       zerolog.Logger
}

// New constructs the Hugging Face adapter.
func New(opts providers.Options) (providers.Adapter, error) {
	if opts.Credential == "" {
		return nil, fmt.Errorf("%w: provider %q", types.ErrMissingCredential, providers.ProviderHuggingFace)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.DefaultModel
	if model == "" {
		model = defaultModel
	}
	return &Adapter{
		apiKey:       opts.Credential,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpClient,
		defaultModel: model,
		retry:        opts.ResolveRetry(),
		logger:       opts.ResolveLogger(),
	}, nil
}

func (a *Adapter) Provider() providers.Provider { return providers.ProviderHuggingFace }

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
	if err := providers.ValidateRequest(&r, providers.ProviderHuggingFace, model, caps, a.logger); err != nil {
		return nil, err
	}

	prompt := r.Prompt
	if r.SystemPrompt != "" {
		prompt = r.SystemPrompt + "\n\n" + prompt
	}
	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			Temperature:    r.Temperature,
			MaxNewTokens:   r.MaxTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	var body []byte
	err = providers.Retry(ctx, a.retry, a.logger, func(ctx context.Context) error {
		raw, callErr := a.post(ctx, model, payload)
		if callErr != nil {
			return callErr
		}
		body = raw
		return nil
	})
	if err != nil {
		return nil, &types.ProviderError{Provider: string(providers.ProviderHuggingFace), Model: model, Err: err}
	}
	latency := time.Since(start)

	var parsed []generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed) == 0 {
		a.logger.Debug().Str("raw", string(body)).Msg("unexpected generation response shape")
		return nil, &types.ProviderError{
			Provider: string(providers.ProviderHuggingFace),
			Model:    model,
			Err:      fmt.Errorf("%w: unexpected generation response shape", types.ErrMalformedResponse),
		}
	}
	text := parsed[0].GeneratedText

	usage := providers.EstimateUsage(model, r, text)
	resp := &types.Response{
		RequestID:      uuid.NewString(),
		Provider:       string(providers.ProviderHuggingFace),
		Model:          model,
		Text:           text,
		Usage:          usage,
		EstimatedUsage: true,
		Latency:        latency,
	}
	if cost, ok := providers.ComputeCost(caps, usage); ok {
		resp.Cost = &cost
	}
	return resp, nil
}

func (a *Adapter) post(ctx context.Context, model string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/models/"+model, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.ClassifyTransportErr(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.ClassifyTransportErr(err)
	}
	// 503 while the model container warms up is the common
	// transient case for serverless inference.
	if httpResp.StatusCode != http.StatusOK {
		return nil, providers.ClassifyStatus(httpResp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
