package providers

import (
	"github.com/shopspring/decimal"

	"github.com/medscan-ai/medgate/types"
)

var _1K = decimal.NewFromInt(1000)

// ComputeCost derives the dollar cost of a call from the model's
// capability descriptor: input/1000 * price_in + output/1000 *
// price_out. Returns false when the model carries no pricing.
func ComputeCost(caps types.Capabilities, usage types.TokenUsage) (types.TokenCost, bool) {
	if !caps.Priced() {
		return types.TokenCost{}, false
	}
	inputUSD := priceFromString(caps.InputUSDPer1K).Mul(decimal.NewFromInt(usage.Input)).Div(_1K)
	outputUSD := priceFromString(caps.OutputUSDPer1K).Mul(decimal.NewFromInt(usage.Output)).Div(_1K)
	totalUSD := inputUSD.Add(outputUSD)
	return types.TokenCost{
		InputUSD:  inputUSD.String(),
		OutputUSD: outputUSD.String(),
		TotalUSD:  totalUSD.String(),
	}, true
}

func priceFromString(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}
