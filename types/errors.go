package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the adapter layer. All use prefix "medgate:"
// for identification. Callers should use errors.Is/errors.As.
var (
	// ErrAuthentication means the credential was rejected by the
	// vendor. Fatal, never retried.
	ErrAuthentication = errors.New("medgate: authentication failed")

	// ErrUnsupportedModality means the request carries images but
	// the target model reports no vision support. Checked before
	// any network call.
	ErrUnsupportedModality = errors.New("medgate: model does not support the requested modality")

	// ErrProviderUnavailable covers rate limits, 5xx responses and
	// timeouts after the retry budget is exhausted.
	ErrProviderUnavailable = errors.New("medgate: provider unavailable")

	// ErrMalformedResponse means the vendor reply did not match the
	// expected shape. Fatal, never retried.
	ErrMalformedResponse = errors.New("medgate: malformed provider response")

	// ErrProviderNotRegistered means the provider id is unknown to
	// the registry.
	ErrProviderNotRegistered = errors.New("medgate: provider not registered")

	// ErrMissingCredential means no API key was found for the
	// provider, at construction time.
	ErrMissingCredential = errors.New("medgate: missing credential")

	// ErrEmptyPrompt means the request prompt was empty or blank.
	ErrEmptyPrompt = errors.New("medgate: prompt must not be empty")
)

// ProviderError wraps a sentinel error with provider and model
// context. Use errors.Is against the sentinels above.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("medgate: provider %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("medgate: provider %s model %s: %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

var _ error = (*ProviderError)(nil)
