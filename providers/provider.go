// Package providers defines the adapter contract shared by all LLM
// vendors, plus the registry, credential resolution, retry policy and
// cost computation used by every adapter.
package providers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/types"
)

// Provider identifies an LLM vendor. Custom OpenAI-compatible
// endpoints use ids of the form "custom_<name>".
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderAnthropic   Provider = "anthropic"
	ProviderGemini      Provider = "gemini"
	ProviderGroq        Provider = "groq"
	ProviderCohere      Provider = "cohere"
	ProviderOpenRouter  Provider = "openrouter"
	ProviderAzure       Provider = "azure"
	ProviderHuggingFace Provider = "huggingface"
)

// APIShape is the wire dialect a provider speaks. Several providers
// share the OpenAI chat-completions shape behind different base URLs.
type APIShape string

const (
	APIShapeOpenAI      APIShape = "openai"
	APIShapeAnthropic   APIShape = "anthropic"
	APIShapeGemini      APIShape = "gemini"
	APIShapeCohere      APIShape = "cohere"
	APIShapeHuggingFace APIShape = "huggingface"
)

// Adapter hides one vendor's transport details behind the common
// envelope contract. Implementations are stateless apart from their
// construction-time configuration and hold no connection open between
// calls, so a single Adapter is safe for concurrent use.
type Adapter interface {
	// Provider returns the id this adapter was registered under.
	Provider() Provider

	// Models returns the vendor's known model names. Static for
	// vendors with a fixed catalog; no network call is made.
	Models() []string

	// Capabilities is a pure lookup. Unrecognized names yield the
	// zero descriptor (all flags false, no pricing), never an
	// error.
	Capabilities(model string) types.Capabilities

	// Generate performs exactly one vendor call (plus bounded
	// retries on transient failures) and maps the reply into the
	// normalized Response.
	Generate(ctx context.Context, req types.Request) (*types.Response, error)
}

// Options carries everything an adapter constructor needs. An
// explicit Credential wins over whatever the registry resolved from
// configuration.
type Options struct {
	// Credential is the API key. Filled by the registry before the
	// constructor runs.
	Credential string

	// BaseURL overrides the vendor endpoint. Required for Azure
	// and custom providers, optional elsewhere (tests point it at
	// a stub server).
	BaseURL string

	// DefaultModel overrides the adapter's built-in default.
	DefaultModel string

	// HTTPClient overrides the transport. Nil means each adapter's
	// default client.
	HTTPClient *http.Client

	// Retry overrides the retry policy. Zero value means
	// DefaultRetryPolicy.
	Retry RetryPolicy

	// Logger receives request/response diagnostics. Nil silences
	// the adapter.
	Logger *zerolog.Logger
}

// ResolveLogger returns the configured logger or a no-op one.
func (o Options) ResolveLogger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}

// ResolveRetry returns the configured retry policy or the default.
func (o Options) ResolveRetry() RetryPolicy {
	if o.Retry.MaxAttempts <= 0 {
		return DefaultRetryPolicy
	}
	return o.Retry
}
