// Package tokens estimates token counts and computes per-model cost.
// The estimator is versioned: cost records persist EstimatorVersion so
// numbers from different schemes are never compared as equals.
package tokens

import (
	"strings"

	"github.com/memvault/memvault/internal/models"
)

// EstimatorVersion identifies the estimation scheme. Changing the
// estimation logic requires bumping this string.
const EstimatorVersion = "heuristic/v1"

// messageOverhead approximates the per-message framing tokens (role,
// separators) added by chat-completion APIs.
const messageOverhead = 4

// Estimate approximates the token count of a text. English prose runs
// about 4 characters per token; short words would undercount with a pure
// character ratio, so the word count acts as a floor. Not billing-exact,
// but deterministic and stable, which is what the cost ledger needs.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	byChars := (len(text) + 3) / 4
	byWords := len(strings.Fields(text))
	if byWords > byChars {
		return byWords
	}
	return byChars
}

// EstimateTurns sums the estimate over a conversation, including the
// per-message framing overhead.
func EstimateTurns(turns []models.Turn) int {
	total := 0
	for _, turn := range turns {
		total += Estimate(turn.Content) + messageOverhead
	}
	return total
}

// Usage is the result of a cost computation for one exchange.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	ActualCost   float64 `json:"actual_cost"`
}

// Pricing is the per-token dollar rates for one model.
type Pricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// PriceTable maps model keys to pricing, with a designated fallback for
// unknown keys so cost logging never fails on a new model name.
type PriceTable struct {
	Models       map[string]Pricing `yaml:"models"`
	DefaultModel string             `yaml:"default_model"`
}

// DefaultPriceTable returns the built-in pricing.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		Models: map[string]Pricing{
			"llama3-70b-groq": {Input: 0.00000059, Output: 0.00000079},
			"gpt-4o":          {Input: 0.0000025, Output: 0.000010},
			"gpt-4o-mini":     {Input: 0.00000015, Output: 0.0000006},
		},
		DefaultModel: "llama3-70b-groq",
	}
}

// Cost computes the dollar cost of an exchange under the given model key.
// Unknown keys fall back to the table's default entry.
func (p PriceTable) Cost(inputTokens, outputTokens int, modelKey string) Usage {
	pricing, ok := p.Models[modelKey]
	if !ok {
		pricing = p.Models[p.DefaultModel]
	}
	return Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		ActualCost:   Round8(float64(inputTokens)*pricing.Input + float64(outputTokens)*pricing.Output),
	}
}

// Round8 rounds to 8 decimal places, the precision the cost ledger
// stores dollar amounts at.
func Round8(v float64) float64 {
	const shift = 1e8
	if v >= 0 {
		return float64(int64(v*shift+0.5)) / shift
	}
	return float64(int64(v*shift-0.5)) / shift
}

// Round2 rounds to 2 decimal places, used for percentages.
func Round2(v float64) float64 {
	if v >= 0 {
		return float64(int64(v*100+0.5)) / 100
	}
	return float64(int64(v*100-0.5)) / 100
}
