package types

// TokenUsage holds token accounting for one call.
type TokenUsage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		Input:  u.Input + other.Input,
		Output: u.Output + other.Output,
		Total:  u.Total + other.Total,
	}
}

// TokenCost is the derived dollar cost of one call. Amounts are
// decimal strings to avoid float drift when callers aggregate them.
type TokenCost struct {
	InputUSD  string `json:"input_usd"`
	OutputUSD string `json:"output_usd"`
	TotalUSD  string `json:"total_usd"`
}

// Capabilities describes what a (provider, model) pair supports.
// Tables are populated at process start and read-only thereafter.
// The zero value means "nothing known": all flags false, no pricing.
type Capabilities struct {
	Vision    bool `json:"vision"`
	Streaming bool `json:"streaming"`

	// MaxTokens is the model's maximum output length. Zero means
	// unknown (no clamping is applied).
	MaxTokens int `json:"max_tokens"`

	// Prices are USD per 1000 tokens, as decimal strings. Empty
	// means unpriced; cost computation is skipped for such models.
	InputUSDPer1K  string `json:"input_usd_per_1k,omitempty"`
	OutputUSDPer1K string `json:"output_usd_per_1k,omitempty"`
}

// Priced reports whether a cost can be derived for this model.
func (c Capabilities) Priced() bool {
	return c.InputUSDPer1K != "" || c.OutputUSDPer1K != ""
}
