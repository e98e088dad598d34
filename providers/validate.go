package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medscan-ai/medgate/types"
)

// ValidateRequest checks req against the model's capabilities before
// any network activity and applies defaults in place. req must be the
// adapter's own copy; the caller's envelope stays untouched.
func ValidateRequest(req *types.Request, provider Provider, model string, caps types.Capabilities, logger zerolog.Logger) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return types.ErrEmptyPrompt
	}
	if len(req.Images) > 0 && !caps.Vision {
		return &types.ProviderError{
			Provider: string(provider),
			Model:    model,
			Err:      fmt.Errorf("%w: %d image(s) sent to a text-only model", types.ErrUnsupportedModality, len(req.Images)),
		}
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = types.DefaultMaxTokens
	}
	if caps.MaxTokens > 0 && req.MaxTokens > caps.MaxTokens {
		logger.Warn().
			Str("model", model).
			Int("requested", req.MaxTokens).
			Int("limit", caps.MaxTokens).
			Msg("max tokens exceeds model limit, clamping")
		req.MaxTokens = caps.MaxTokens
	}
	return nil
}

// ClassifyStatus maps an HTTP status code to the error taxonomy:
// 401/403 is a fatal authentication failure, 429 and 5xx are
// transient. Other statuses pass through as plain errors.
func ClassifyStatus(status int, detail string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d: %s", types.ErrAuthentication, status, detail)
	case status == http.StatusTooManyRequests || status >= 500:
		return Transient(fmt.Errorf("HTTP %d: %s", status, detail))
	default:
		return fmt.Errorf("HTTP %d: %s", status, detail)
	}
}

// ClassifyTransportErr marks transport-level failures (connection
// refused, timeouts, DNS) as transient so the retry loop picks them
// up. Context cancellation passes through untouched.
func ClassifyTransportErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Transient(err)
}
