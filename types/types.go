package types

import "time"

// Image is one input image attached to a request. Data is the raw
// encoded bytes (not base64); MIME identifies the encoding, e.g.
// "image/png". Adapters re-encode as each vendor requires.
type Image struct {
	Data []byte `json:"data"`
	MIME string `json:"mime"`
}

// Request is the normalized generation request shared by all
// providers. A Request is constructed per call and never mutated by
// adapters; adapters work on their own copy when they need to apply
// defaults or clamp limits.
type Request struct {
	// Prompt is the user prompt. Must be non-empty.
	Prompt string `json:"prompt"`

	// Images are optional input images, in order. The target model
	// must report vision support or the call fails before any
	// network activity.
	Images []Image `json:"images,omitempty"`

	// Temperature is passed through as-is. Vendors bound it to
	// [0, 2] by convention.
	Temperature float64 `json:"temperature"`

	// MaxTokens limits the generated output. Zero means the
	// library default (4000). Values above the model's limit are
	// clamped with a warning.
	MaxTokens int `json:"max_tokens"`

	// SystemPrompt is optional.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Model overrides the adapter's default model.
	Model string `json:"model,omitempty"`
}

// Response is the normalized generation result. It is created once
// per successful call and never mutated.
type Response struct {
	// RequestID is a locally generated identifier for correlating
	// logs with responses. It is not the vendor's request id.
	RequestID string `json:"request_id"`

	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Text is the generated text.
	Text string `json:"text"`

	// Usage holds token accounting. When the vendor reports usage
	// it is taken verbatim; otherwise it is estimated locally and
	// EstimatedUsage is set.
	Usage          TokenUsage `json:"usage"`
	EstimatedUsage bool       `json:"estimated_usage,omitempty"`

	// Cost is derived from the model's static price table. Nil when
	// the model has no known pricing (custom endpoints, free tiers
	// without published rates).
	Cost *TokenCost `json:"cost,omitempty"`

	// Latency is the wall-clock duration of the vendor call,
	// including retries.
	Latency time.Duration `json:"latency"`
}

// DefaultMaxTokens applies when Request.MaxTokens is zero.
const DefaultMaxTokens = 4000
