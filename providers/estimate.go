package providers

import (
	"github.com/medscan-ai/medgate/internal/tokenizer"

	"github.com/medscan-ai/medgate/types"
)

// EstimateUsage builds token accounting from local tokenization, for
// vendors that omit usage fields. Image tokens are not estimated.
func EstimateUsage(model string, req types.Request, output string) types.TokenUsage {
	input := int64(tokenizer.Count(model, req.Prompt))
	if req.SystemPrompt != "" {
		input += int64(tokenizer.Count(model, req.SystemPrompt))
	}
	out := int64(tokenizer.Count(model, output))
	return types.TokenUsage{
		Input:  input,
		Output: out,
		Total:  input + out,
	}
}
