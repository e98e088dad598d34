package openaichat

import (
	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/types"
)

// Static catalogs per provider family. Prices are USD per 1K tokens;
// vendor pricing pages are the source of record and free-tier models
// carry "0" so callers still see an explicit cost of zero.

var openAIModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"gpt-4-vision-preview",
	"gpt-4",
	"gpt-3.5-turbo",
}

var openAICatalog = map[string]types.Capabilities{
	"gpt-4o":               {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0025", OutputUSDPer1K: "0.01"},
	"gpt-4o-mini":          {Vision: true, Streaming: true, MaxTokens: 16384, InputUSDPer1K: "0.00015", OutputUSDPer1K: "0.0006"},
	"gpt-4-turbo":          {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.01", OutputUSDPer1K: "0.03"},
	"gpt-4-vision-preview": {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.01", OutputUSDPer1K: "0.03"},
	"gpt-4":                {Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.03", OutputUSDPer1K: "0.06"},
	"gpt-3.5-turbo":        {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0005", OutputUSDPer1K: "0.0015"},
}

var groqModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-70b-versatile",
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
	"llama-3.2-90b-vision-preview",
	"llama-3.2-11b-vision-preview",
}

var groqCatalog = map[string]types.Capabilities{
	"llama-3.3-70b-versatile":      {Streaming: true, MaxTokens: 32768, InputUSDPer1K: "0.00059", OutputUSDPer1K: "0.00079"},
	"llama-3.1-70b-versatile":      {Streaming: true, MaxTokens: 32768, InputUSDPer1K: "0.00059", OutputUSDPer1K: "0.00079"},
	"llama-3.1-8b-instant":         {Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.00005", OutputUSDPer1K: "0.00008"},
	"mixtral-8x7b-32768":           {Streaming: true, MaxTokens: 32768, InputUSDPer1K: "0.00024", OutputUSDPer1K: "0.00024"},
	"gemma2-9b-it":                 {Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.0002", OutputUSDPer1K: "0.0002"},
	"llama-3.2-90b-vision-preview": {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.0009", OutputUSDPer1K: "0.0009"},
	"llama-3.2-11b-vision-preview": {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.00018", OutputUSDPer1K: "0.00018"},
}

var openRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"google/gemini-pro-1.5",
	"google/gemini-flash-1.5",
	"openai/gpt-4o",
	"openai/gpt-4-turbo",
	"openai/gpt-3.5-turbo",
	"anthropic/claude-3.5-sonnet",
	"anthropic/claude-3-haiku",
	"meta-llama/llama-3.1-405b-instruct",
}

var openRouterCatalog = map[string]types.Capabilities{
	"google/gemini-2.0-flash-exp:free":   {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0", OutputUSDPer1K: "0"},
	"google/gemini-pro-1.5":              {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.00125", OutputUSDPer1K: "0.005"},
	"google/gemini-flash-1.5":            {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.000075", OutputUSDPer1K: "0.0003"},
	"openai/gpt-4o":                      {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0025", OutputUSDPer1K: "0.01"},
	"openai/gpt-4-turbo":                 {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.01", OutputUSDPer1K: "0.03"},
	"openai/gpt-3.5-turbo":               {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0005", OutputUSDPer1K: "0.0015"},
	"anthropic/claude-3.5-sonnet":        {Vision: true, Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.003", OutputUSDPer1K: "0.015"},
	"anthropic/claude-3-haiku":           {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.00025", OutputUSDPer1K: "0.00125"},
	"meta-llama/llama-3.1-405b-instruct": {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0008", OutputUSDPer1K: "0.0008"},
}

// Azure catalogs are keyed by deployment name, not model name; the
// common deployments mirror OpenAI pricing.
var azureModels = []string{
	"gpt-4o",
	"gpt-4-turbo",
	"gpt-4-vision",
	"gpt-4",
	"gpt-35-turbo",
}

var azureCatalog = map[string]types.Capabilities{
	"gpt-4o":       {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0025", OutputUSDPer1K: "0.01"},
	"gpt-4-turbo":  {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.01", OutputUSDPer1K: "0.03"},
	"gpt-4-vision": {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.01", OutputUSDPer1K: "0.03"},
	"gpt-4":        {Streaming: true, MaxTokens: 8192, InputUSDPer1K: "0.03", OutputUSDPer1K: "0.06"},
	"gpt-35-turbo": {Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0005", OutputUSDPer1K: "0.0015"},
}

// NewOpenAI constructs the adapter for api.openai.com.
func NewOpenAI(opts providers.Options) (providers.Adapter, error) {
	return New(Config{
		Provider:     providers.ProviderOpenAI,
		APIKey:       opts.Credential,
		BaseURL:      opts.BaseURL,
		DefaultModel: firstNonEmpty(opts.DefaultModel, "gpt-4o"),
		Models:       openAIModels,
		Catalog:      openAICatalog,
		Options:      opts,
	})
}

// NewGroq constructs the adapter for Groq's OpenAI-compatible API.
func NewGroq(opts providers.Options) (providers.Adapter, error) {
	return New(Config{
		Provider:     providers.ProviderGroq,
		APIKey:       opts.Credential,
		BaseURL:      firstNonEmpty(opts.BaseURL, "https://api.groq.com/openai/v1"),
		DefaultModel: firstNonEmpty(opts.DefaultModel, "llama-3.3-70b-versatile"),
		Models:       groqModels,
		Catalog:      groqCatalog,
		Options:      opts,
	})
}

// NewOpenRouter constructs the adapter for OpenRouter.
func NewOpenRouter(opts providers.Options) (providers.Adapter, error) {
	return New(Config{
		Provider:     providers.ProviderOpenRouter,
		APIKey:       opts.Credential,
		BaseURL:      firstNonEmpty(opts.BaseURL, "https://openrouter.ai/api/v1"),
		DefaultModel: firstNonEmpty(opts.DefaultModel, "google/gemini-2.0-flash-exp:free"),
		Models:       openRouterModels,
		Catalog:      openRouterCatalog,
		Options:      opts,
	})
}

// NewAzure constructs the adapter for an Azure OpenAI resource.
// opts.BaseURL must be the resource endpoint.
func NewAzure(opts providers.Options) (providers.Adapter, error) {
	return New(Config{
		Provider:     providers.ProviderAzure,
		APIKey:       opts.Credential,
		BaseURL:      opts.BaseURL,
		DefaultModel: firstNonEmpty(opts.DefaultModel, "gpt-4o"),
		Azure:        true,
		Models:       azureModels,
		Catalog:      azureCatalog,
		Options:      opts,
	})
}

// NewCustom constructs an adapter for a user-configured
// OpenAI-compatible endpoint. The catalog holds only the configured
// default model; vision is assumed and cost is unknown, matching how
// local and self-hosted endpoints usually behave.
func NewCustom(id providers.Provider, opts providers.Options) (providers.Adapter, error) {
	model := firstNonEmpty(opts.DefaultModel, "gpt-4o")
	return New(Config{
		Provider:     id,
		APIKey:       opts.Credential,
		BaseURL:      opts.BaseURL,
		DefaultModel: model,
		Models:       []string{model},
		Catalog: map[string]types.Capabilities{
			model: {Vision: true, Streaming: true, MaxTokens: 4096},
		},
		Options: opts,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
