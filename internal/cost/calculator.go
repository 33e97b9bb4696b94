package cost

import "github.com/mydub-ai/reporter-cli/internal/config"

// Calculator computes USD costs for gateway token usage. The platform's
// dashboards track per-agent AI spend, so every run accounts its tokens.
type Calculator struct {
	rates map[string]config.ModelPricing
}

// NewCalculator creates a Calculator with the given per-model rates.
func NewCalculator(rates map[string]config.ModelPricing) *Calculator {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Calculator{rates: rates}
}

// Completion computes the cost of one chat completion. Unknown models cost
// zero rather than erroring; pricing gaps must not break a fetch cycle.
func (c *Calculator) Completion(model string, promptTokens, completionTokens int) float64 {
	rate, ok := c.rates[model]
	if !ok {
		return 0
	}
	return (float64(promptTokens)/1e6)*rate.Input + (float64(completionTokens)/1e6)*rate.Output
}

// DefaultRates returns the default gateway pricing.
func DefaultRates() map[string]config.ModelPricing {
	return map[string]config.ModelPricing{
		"anthropic/claude-sonnet-4.5": {Input: 3.00, Output: 15.00},
		"openai/gpt-4o-mini":          {Input: 0.15, Output: 0.60},
		"google/gemini-2.5-flash":     {Input: 0.30, Output: 2.50},
	}
}
