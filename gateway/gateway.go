// Package gateway is the single entry point used by presentation
// layers: it owns the provider registry, resolves credentials from
// configuration, and exposes one-call generation plus the provider
// and model queries a UI needs.
package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/config"
	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/providers/anthropic"
	"github.com/medscan-ai/medgate/providers/cohere"
	"github.com/medscan-ai/medgate/providers/gemini"
	"github.com/medscan-ai/medgate/providers/huggingface"
	"github.com/medscan-ai/medgate/providers/openaichat"
	"github.com/medscan-ai/medgate/types"
)

// fallbackProvider is used when neither DEFAULT_PROVIDER nor any
// configured credential selects one.
const fallbackProvider = providers.ProviderGemini

// Gateway composes the registry and shared call options. It holds no
// per-request state and is safe for concurrent use.
type Gateway struct {
	cfg        config.Config
	registry   *providers.Registry
	logger     zerolog.Logger
	httpClient *http.Client
	retry      providers.RetryPolicy
	extra      []providers.Entry
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger routes adapter diagnostics to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithHTTPClient overrides the transport used by every adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) { g.httpClient = client }
}

// WithRetryPolicy overrides the retry policy used by every adapter.
func WithRetryPolicy(policy providers.RetryPolicy) Option {
	return func(g *Gateway) { g.retry = policy }
}

// WithProvider registers an additional provider entry, replacing any
// built-in with the same id.
func WithProvider(entry providers.Entry) Option {
	return func(g *Gateway) { g.extra = append(g.extra, entry) }
}

// New builds a Gateway from configuration. The registry is assembled
// here once and read-only afterwards.
func New(cfg config.Config, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	entries := builtinEntries(cfg)
	entries = append(entries, g.extra...)
	g.registry = providers.NewRegistry(entries...)
	return g
}

func builtinEntries(cfg config.Config) []providers.Entry {
	entries := []providers.Entry{
		{
			ID:           providers.ProviderOpenAI,
			DisplayName:  "OpenAI",
			KeyEnv:       config.KeyEnv("openai"),
			Key:          cfg.Keys["openai"],
			DefaultModel: "gpt-4o",
			New:          openaichat.NewOpenAI,
		},
		{
			ID:           providers.ProviderAnthropic,
			DisplayName:  "Anthropic (Claude)",
			KeyEnv:       config.KeyEnv("anthropic"),
			Key:          cfg.Keys["anthropic"],
			DefaultModel: "claude-3-5-sonnet-20241022",
			New:          anthropic.New,
		},
		{
			ID:           providers.ProviderGemini,
			DisplayName:  "Google Gemini",
			KeyEnv:       config.KeyEnv("gemini"),
			Key:          cfg.Keys["gemini"],
			DefaultModel: "gemini-2.0-flash-exp",
			New:          gemini.New,
		},
		{
			ID:           providers.ProviderGroq,
			DisplayName:  "Groq",
			KeyEnv:       config.KeyEnv("groq"),
			Key:          cfg.Keys["groq"],
			DefaultModel: "llama-3.3-70b-versatile",
			New:          openaichat.NewGroq,
		},
		{
			ID:           providers.ProviderCohere,
			DisplayName:  "Cohere",
			KeyEnv:       config.KeyEnv("cohere"),
			Key:          cfg.Keys["cohere"],
			DefaultModel: "command-r-plus",
			New:          cohere.New,
		},
		{
			ID:           providers.ProviderOpenRouter,
			DisplayName:  "OpenRouter",
			KeyEnv:       config.KeyEnv("openrouter"),
			Key:          cfg.Keys["openrouter"],
			DefaultModel: "google/gemini-2.0-flash-exp:free",
			New:          openaichat.NewOpenRouter,
		},
		{
			ID:               providers.ProviderAzure,
			DisplayName:      "Azure OpenAI",
			KeyEnv:           config.KeyEnv("azure"),
			Key:              cfg.Keys["azure"],
			Endpoint:         cfg.AzureEndpoint,
			EndpointEnv:      config.AzureEndpointEnv(),
			RequiresEndpoint: true,
			DefaultModel:     "gpt-4o",
			New:              openaichat.NewAzure,
		},
		{
			ID:           providers.ProviderHuggingFace,
			DisplayName:  "Hugging Face",
			KeyEnv:       config.KeyEnv("huggingface"),
			Key:          cfg.Keys["huggingface"],
			DefaultModel: "meta-llama/Meta-Llama-3-8B-Instruct",
			New:          huggingface.New,
		},
	}
	for _, custom := range cfg.Custom {
		id := providers.Provider(custom.ID)
		entries = append(entries, providers.Entry{
			ID:               id,
			DisplayName:      custom.DisplayName,
			Key:              custom.APIKey,
			Endpoint:         custom.BaseURL,
			RequiresEndpoint: true,
			DefaultModel:     custom.DefaultModel,
			New: func(opts providers.Options) (providers.Adapter, error) {
				return openaichat.NewCustom(id, opts)
			},
		})
	}
	return entries
}

// Create constructs the adapter for id with the gateway's shared
// options. Credential resolution happens here, at construction time.
func (g *Gateway) Create(id providers.Provider) (providers.Adapter, error) {
	return g.registry.Create(id, providers.Options{
		HTTPClient: g.httpClient,
		Retry:      g.retry,
		Logger:     &g.logger,
	})
}

// Generate is the one-call entry point: pick the provider (empty id
// means the configured default), construct its adapter, and run the
// request. All adapter errors propagate unchanged.
func (g *Gateway) Generate(ctx context.Context, id providers.Provider, req types.Request) (*types.Response, error) {
	if id == "" {
		id = g.DefaultProvider()
	}
	if req.Model == "" && g.cfg.DefaultModel != "" && id == providers.Provider(g.cfg.DefaultProvider) {
		req.Model = g.cfg.DefaultModel
	}
	adapter, err := g.Create(id)
	if err != nil {
		return nil, err
	}
	return adapter.Generate(ctx, req)
}

// DefaultProvider resolves the initial provider selection:
// DEFAULT_PROVIDER when it names a usable entry, otherwise the first
// usable entry, otherwise gemini.
func (g *Gateway) DefaultProvider() providers.Provider {
	if g.cfg.DefaultProvider != "" {
		if entry, ok := g.registry.Lookup(providers.Provider(g.cfg.DefaultProvider)); ok && entry.Usable() {
			return entry.ID
		}
	}
	for _, entry := range g.registry.Entries() {
		if entry.Usable() {
			return entry.ID
		}
	}
	return fallbackProvider
}

// ProviderInfo describes one registered provider for UI population.
type ProviderInfo struct {
	ID           providers.Provider
	DisplayName  string
	DefaultModel string

	// Usable reports whether a credential (and endpoint, where
	// required) is configured. Determined without constructing the
	// adapter.
	Usable bool
}

// Providers lists every registered provider, sorted by id.
func (g *Gateway) Providers() []ProviderInfo {
	entries := g.registry.Entries()
	out := make([]ProviderInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, ProviderInfo{
			ID:           e.ID,
			DisplayName:  e.DisplayName,
			DefaultModel: e.DefaultModel,
			Usable:       e.Usable(),
		})
	}
	return out
}

// AvailableProviders lists providers that would not immediately fail
// with a missing-credential error.
func (g *Gateway) AvailableProviders() []ProviderInfo {
	all := g.Providers()
	out := make([]ProviderInfo, 0, len(all))
	for _, info := range all {
		if info.Usable {
			out = append(out, info)
		}
	}
	return out
}

// Models returns the model catalog for a provider.
func (g *Gateway) Models(id providers.Provider) ([]string, error) {
	adapter, err := g.Create(id)
	if err != nil {
		return nil, err
	}
	return adapter.Models(), nil
}
