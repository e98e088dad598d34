// Package tokenizer estimates token counts locally for vendors that
// do not report usage. The estimate is best effort: non-OpenAI
// vocabularies are approximated with cl100k_base and the result does
// not necessarily match vendor billing.
package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Count estimates the token count of text for model.
func Count(model, text string) int {
	if text == "" {
		return 0
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return Approximate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// Approximate is the last-resort heuristic of ~4 characters per
// token, used when no encoding can be loaded.
func Approximate(text string) int {
	if text == "" {
		return 0
	}
	n := (len(text) + 3) / 4
	if n == 0 {
		n = 1
	}
	return n
}
