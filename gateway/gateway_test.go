package gateway

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscan-ai/medgate/config"
	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/providers/openaichat"
	"github.com/medscan-ai/medgate/run/mockserver"
	"github.com/medscan-ai/medgate/types"
)

var testRetry = providers.RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	Multiplier:   1,
}

// demoEntry registers a stub provider backed by a local server that
// speaks the chat-completions dialect, with a single priced model.
func demoEntry(serverURL string) providers.Entry {
	return providers.Entry{
		ID:           "demo",
		DisplayName:  "Demo",
		Key:          "demo-key",
		DefaultModel: "demo-model",
		New: func(opts providers.Options) (providers.Adapter, error) {
			return openaichat.New(openaichat.Config{
				Provider:     "demo",
				APIKey:       opts.Credential,
				BaseURL:      serverURL,
				DefaultModel: "demo-model",
				Models:       []string{"demo-model"},
				Catalog: map[string]types.Capabilities{
					"demo-model": {Vision: true, Streaming: true, MaxTokens: 4096, InputUSDPer1K: "0.0025", OutputUSDPer1K: "0.01"},
				},
				Options: opts,
			})
		},
	}
}

func newDemoGateway(t *testing.T) (*Gateway, *mockserver.MockServer) {
	t.Helper()
	mock := mockserver.NewMockServer(mockserver.Config{Provider: "openai", Reply: "Hi"})
	handler, err := mock.Handler()
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := New(config.Config{Keys: map[string]string{}},
		WithProvider(demoEntry(server.URL)),
		WithRetryPolicy(testRetry),
	)
	return g, mock
}

func TestGenerateEndToEnd(t *testing.T) {
	g, mock := newDemoGateway(t)

	resp, err := g.Generate(context.Background(), "demo", types.Request{
		Prompt:      "Describe this scan",
		Temperature: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi", resp.Text)
	assert.Equal(t, "demo", resp.Provider)
	assert.Equal(t, "demo-model", resp.Model)
	assert.Equal(t, int64(5), resp.Usage.Input)
	assert.Equal(t, int64(2), resp.Usage.Output)
	assert.False(t, resp.EstimatedUsage)

	require.NotNil(t, resp.Cost)
	assert.Equal(t, "0.0000125", resp.Cost.InputUSD)
	assert.Equal(t, "0.00002", resp.Cost.OutputUSD)
	assert.Equal(t, "0.0000325", resp.Cost.TotalUSD)

	assert.Equal(t, int64(1), mock.Requests())
}

func TestGenerateUnknownProvider(t *testing.T) {
	g, _ := newDemoGateway(t)

	_, err := g.Generate(context.Background(), "nope", types.Request{Prompt: "hello"})
	assert.ErrorIs(t, err, types.ErrProviderNotRegistered)
}

func TestCreateMissingCredential(t *testing.T) {
	g := New(config.Config{Keys: map[string]string{}})

	_, err := g.Create(providers.ProviderOpenAI)
	require.ErrorIs(t, err, types.ErrMissingCredential)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestProvidersListsAllBuiltins(t *testing.T) {
	g := New(config.Config{Keys: map[string]string{}})

	infos := g.Providers()
	require.Len(t, infos, 8)
	ids := make(map[providers.Provider]bool, len(infos))
	for _, info := range infos {
		ids[info.ID] = true
		assert.False(t, info.Usable)
	}
	for _, id := range []providers.Provider{
		providers.ProviderOpenAI, providers.ProviderAnthropic,
		providers.ProviderGemini, providers.ProviderGroq,
		providers.ProviderCohere, providers.ProviderOpenRouter,
		providers.ProviderAzure, providers.ProviderHuggingFace,
	} {
		assert.True(t, ids[id], "missing %s", id)
	}
}

func TestEveryBuiltinConstructibleWithStubbedCredentials(t *testing.T) {
	g := New(config.Config{
		Keys: map[string]string{
			"openai": "k", "anthropic": "k", "gemini": "k", "groq": "k",
			"cohere": "k", "openrouter": "k", "azure": "k", "huggingface": "k",
		},
		AzureEndpoint: "https://example.openai.azure.com",
	})

	for _, info := range g.Providers() {
		adapter, err := g.Create(info.ID)
		require.NoError(t, err, "provider %s", info.ID)
		assert.Equal(t, info.ID, adapter.Provider())
		assert.NotEmpty(t, adapter.Models(), "provider %s", info.ID)

		// Capability lookup does not mutate hidden state.
		model := adapter.Models()[0]
		assert.Equal(t, adapter.Capabilities(model), adapter.Capabilities(model))
	}
}

func TestAvailableProviders(t *testing.T) {
	g := New(config.Config{Keys: map[string]string{
		"openai": "sk-test",
		"groq":   "gsk-test",
		// Azure key without endpoint stays unavailable.
		"azure": "azure-test",
	}})

	infos := g.AvailableProviders()
	require.Len(t, infos, 2)
	assert.Equal(t, providers.ProviderGroq, infos[0].ID)
	assert.Equal(t, providers.ProviderOpenAI, infos[1].ID)
}

func TestAzureNeedsEndpoint(t *testing.T) {
	without := New(config.Config{Keys: map[string]string{"azure": "k"}})
	_, err := without.Create(providers.ProviderAzure)
	require.ErrorIs(t, err, types.ErrMissingCredential)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")

	with := New(config.Config{
		Keys:          map[string]string{"azure": "k"},
		AzureEndpoint: "https://example.openai.azure.com",
	})
	adapter, err := with.Create(providers.ProviderAzure)
	require.NoError(t, err)
	assert.Equal(t, providers.ProviderAzure, adapter.Provider())
}

func TestDefaultProvider(t *testing.T) {
	// Nothing configured falls back to gemini.
	g := New(config.Config{Keys: map[string]string{}})
	assert.Equal(t, providers.ProviderGemini, g.DefaultProvider())

	// DEFAULT_PROVIDER wins when its credential is present.
	g = New(config.Config{
		Keys:            map[string]string{"cohere": "k", "openai": "k"},
		DefaultProvider: "cohere",
	})
	assert.Equal(t, providers.ProviderCohere, g.DefaultProvider())

	// An unusable DEFAULT_PROVIDER yields the first usable entry.
	g = New(config.Config{
		Keys:            map[string]string{"openai": "k"},
		DefaultProvider: "cohere",
	})
	assert.Equal(t, providers.ProviderOpenAI, g.DefaultProvider())
}

func TestGenerateUsesDefaultProvider(t *testing.T) {
	g, mock := newDemoGateway(t)
	// Only the demo entry has a credential, so it is the default.
	resp, err := g.Generate(context.Background(), "", types.Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "demo", resp.Provider)
	assert.Equal(t, int64(1), mock.Requests())
}

func TestCustomProvidersRegistered(t *testing.T) {
	g := New(config.Config{
		Keys: map[string]string{},
		Custom: []config.CustomProvider{{
			ID:           "custom_lab",
			DisplayName:  "Lab LLM",
			BaseURL:      "http://localhost:1234/v1",
			APIKey:       "lab-key",
			DefaultModel: "llava-v1.6",
		}},
	})

	infos := g.Providers()
	require.Len(t, infos, 9)

	adapter, err := g.Create("custom_lab")
	require.NoError(t, err)
	assert.Equal(t, providers.Provider("custom_lab"), adapter.Provider())
	assert.Equal(t, []string{"llava-v1.6"}, adapter.Models())
}

func TestModels(t *testing.T) {
	g := New(config.Config{Keys: map[string]string{"openai": "sk-test"}})

	models, err := g.Models(providers.ProviderOpenAI)
	require.NoError(t, err)
	assert.Contains(t, models, "gpt-4o")

	_, err = g.Models(providers.ProviderAnthropic)
	assert.ErrorIs(t, err, types.ErrMissingCredential)
}
