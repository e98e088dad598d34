// Package config loads the gateway configuration from the process
// environment (optionally seeded from a .env file). All environment
// access happens here, once, at startup; the rest of the library
// receives an explicit Config value.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consumed, per provider. Azure additionally
// needs AZURE_OPENAI_ENDPOINT.
var providerKeyEnv = map[string]string{
	"openai":      "OPENAI_API_KEY",
	"anthropic":   "ANTHROPIC_API_KEY",
	"gemini":      "GEMINI_API_KEY",
	"cohere":      "COHERE_API_KEY",
	"openrouter":  "OPENROUTER_API_KEY",
	"azure":       "AZURE_OPENAI_KEY",
	"huggingface": "HUGGINGFACE_API_KEY",
	"groq":        "GROQ_API_KEY",
}

const (
	azureEndpointEnv   = "AZURE_OPENAI_ENDPOINT"
	defaultProviderEnv = "DEFAULT_PROVIDER"
	defaultModelEnv    = "DEFAULT_MODEL"
	customPrefix       = "CUSTOM_"
)

// CustomProvider is one user-configured OpenAI-compatible endpoint,
// declared through the CUSTOM_<NAME>_{NAME,BASE_URL,API_KEY,MODEL}
// variable family.
type CustomProvider struct {
	// ID is "custom_<name>" with <name> lowercased.
	ID           string
	DisplayName  string
	BaseURL      string
	APIKey       string
	DefaultModel string
}

// Config is the startup configuration for the gateway.
type Config struct {
	// Keys maps provider id to its API key. Missing entries mean
	// the provider is not configured.
	Keys map[string]string

	AzureEndpoint string

	// DefaultProvider/DefaultModel preselect a provider and model;
	// both may be empty.
	DefaultProvider string
	DefaultModel    string

	Custom []CustomProvider
}

// KeyEnv returns the environment variable holding the credential for
// a built-in provider id, for error remediation hints.
func KeyEnv(provider string) string {
	return providerKeyEnv[provider]
}

// AzureEndpointEnv names the variable holding the Azure resource
// endpoint.
func AzureEndpointEnv() string { return azureEndpointEnv }

// Load reads configuration from the process environment. A .env file
// in the working directory is merged in first when present; a missing
// file is not an error.
func Load() Config {
	_ = godotenv.Load()
	return FromEnviron(os.Environ())
}

// FromEnviron parses configuration from an explicit environment
// snapshot, as produced by os.Environ. Split out for tests.
func FromEnviron(environ []string) Config {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}

	cfg := Config{
		Keys:            make(map[string]string, len(providerKeyEnv)),
		AzureEndpoint:   env[azureEndpointEnv],
		DefaultProvider: strings.ToLower(env[defaultProviderEnv]),
		DefaultModel:    env[defaultModelEnv],
	}
	for provider, keyEnv := range providerKeyEnv {
		if v := env[keyEnv]; v != "" {
			cfg.Keys[provider] = v
		}
	}
	cfg.Custom = parseCustom(env)
	return cfg
}

var customSuffixes = []string{"_NAME", "_BASE_URL", "_API_KEY", "_MODEL"}

func parseCustom(env map[string]string) []CustomProvider {
	grouped := make(map[string]map[string]string)
	for key, value := range env {
		if !strings.HasPrefix(key, customPrefix) || value == "" {
			continue
		}
		for _, suffix := range customSuffixes {
			if !strings.HasSuffix(key, suffix) {
				continue
			}
			name := strings.TrimSuffix(strings.TrimPrefix(key, customPrefix), suffix)
			if name == "" {
				break
			}
			if grouped[name] == nil {
				grouped[name] = make(map[string]string)
			}
			grouped[name][suffix] = value
			break
		}
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []CustomProvider
	for _, name := range names {
		fields := grouped[name]
		// BASE_URL and API_KEY are the minimum for a usable
		// endpoint; incomplete declarations are skipped.
		if fields["_BASE_URL"] == "" || fields["_API_KEY"] == "" {
			continue
		}
		display := fields["_NAME"]
		if display == "" {
			display = name
		}
		out = append(out, CustomProvider{
			ID:           "custom_" + strings.ToLower(name),
			DisplayName:  display,
			BaseURL:      fields["_BASE_URL"],
			APIKey:       fields["_API_KEY"],
			DefaultModel: fields["_MODEL"],
		})
	}
	return out
}
