// Package cohere implements the adapter for Cohere's v2 chat API.
// Cohere has no Go SDK in our stack, so this is a plain HTTP client
// over the documented JSON shapes.
package cohere

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
	defaultBaseURL = "https://api.cohere.ai"
	defaultModel   = "command-r-plus"
)

var models = []string{
	"command-r-plus",
	"command-r",
	"command",
	"command-light",
}

var catalog = map[string]types.Capabilities{
	"command-r-plus": {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0025", OutputUSDPer1K: "0.01"},
	"command-r":      {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.00015", OutputUSDPer1K: "0.0006"},
	"command":        {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.001", OutputUSDPer1K: "0.002"},
	"command-light":  {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0003", OutputUSDPer1K: "0.0006"},
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
	Usage struct {
		BilledUnits struct {
			InputTokens  int64 `json:"input_tokens"`
			OutputTokens int64 `json:"output_tokens"`
		} `json:"billed_units"`
		Tokens struct {
			InputTokens  int64 `json:"input_tokens"`
			OutputTokens int64 `json:"output_tokens"`
		} `json:"tokens"`
	} `json:"usage"`
}

// Adapter calls the Cohere v2 chat endpoint.
type Adapter struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	defaultModel string
	retry        providers.RetryPolicy
	logger       zerolog.Logger
}

// New constructs the Cohere adapter.
func New(opts providers.Options) (providers.Adapter, error) {
	if opts.Credential == "" {
		return nil, fmt.Errorf("%w: provider %q", types.ErrMissingCredential, providers.ProviderCohere)
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

func (a *Adapter) Provider() providers.Provider { return providers.ProviderCohere }

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
	if err := providers.ValidateRequest(&r, providers.ProviderCohere, model, caps, a.logger); err != nil {
		return nil, err
	}

	var messages []chatMessage
	if r.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: r.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: r.Prompt})
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	var body []byte
	err = providers.Retry(ctx, a.retry, a.logger, func(ctx context.Context) error {
		raw, callErr := a.post(ctx, payload)
		if callErr != nil {
			return callErr
		}
		body = raw
		return nil
	})
	if err != nil {
		return nil, &types.ProviderError{Provider: string(providers.ProviderCohere), Model: model, Err: err}
	}
	latency := time.Since(start)

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Message.Content) == 0 {
		a.logger.Debug().Str("raw", string(body)).Msg("unexpected chat response shape")
		return nil, &types.ProviderError{
			Provider: string(providers.ProviderCohere),
			Model:    model,
			Err:      fmt.Errorf("%w: unexpected chat response shape", types.ErrMalformedResponse),
		}
	}
	var sb strings.Builder
	for _, block := range parsed.Message.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()

	usage := types.TokenUsage{
		Input:  parsed.Usage.BilledUnits.InputTokens,
		Output: parsed.Usage.BilledUnits.OutputTokens,
	}
	if usage.Input == 0 && usage.Output == 0 {
		usage.Input = parsed.Usage.Tokens.InputTokens
		usage.Output = parsed.Usage.Tokens.OutputTokens
	}
	estimated := false
	if usage.Input == 0 && usage.Output == 0 {
		usage = providers.EstimateUsage(model, r, text)
		estimated = true
	}
	usage.Total = usage.Input + usage.Output

	resp := &types.Response{
		RequestID:      uuid.NewString(),
		Provider:       string(providers.ProviderCohere),
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

func (a *Adapter) post(ctx context.Context, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/chat", bytes.NewReader(payload))
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
	if httpResp.StatusCode != http.StatusOK {
		return nil, providers.ClassifyStatus(httpResp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
