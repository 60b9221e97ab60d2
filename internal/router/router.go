package router

import (
	"github.com/memvault/memvault/internal/models"
	"github.com/memvault/memvault/internal/tokens"
)

// Router maps complexity tiers to model profiles. Profiles are immutable
// after construction.
type Router struct {
	profiles map[Complexity]models.ModelProfile
}

// DefaultProfiles returns the built-in tier mapping. Medium and complex
// deliberately share a model id: for those two tiers the cost difference
// is driven by the output-token cap, not model selection.
func DefaultProfiles() map[Complexity]models.ModelProfile {
	return map[Complexity]models.ModelProfile{
		Simple: {
			ModelID:    "llama-3.1-8b-instant",
			Label:      "Groq Llama 3.1 8B",
			CostInput:  0.00000005,
			CostOutput: 0.00000008,
			MaxTokens:  512,
		},
		Medium: {
			ModelID:    "llama-3.3-70b-versatile",
			Label:      "Groq Llama 3.3 70B",
			CostInput:  0.00000059,
			CostOutput: 0.00000079,
			MaxTokens:  1000,
		},
		Complex: {
			ModelID:    "llama-3.3-70b-versatile",
			Label:      "Groq Llama 3.3 70B (Complex)",
			CostInput:  0.00000059,
			CostOutput: 0.00000079,
			MaxTokens:  2000,
		},
	}
}

// New builds a Router. Missing tiers in profiles are filled from the
// defaults so a partial config file cannot leave a tier unroutable.
func New(profiles map[Complexity]models.ModelProfile) *Router {
	merged := DefaultProfiles()
	for tier, p := range profiles {
		merged[tier] = p
	}
	return &Router{profiles: merged}
}

// Route classifies the message and returns the profile for its tier.
func (r *Router) Route(message string) (models.ModelProfile, Complexity) {
	tier := Classify(message)
	return r.profiles[tier], tier
}

// Profile returns the configured profile for a tier.
func (r *Router) Profile(tier Complexity) models.ModelProfile {
	return r.profiles[tier]
}

// SavingsReport compares what routing actually cost against the
// always-complex baseline.
type SavingsReport struct {
	Complexity     Complexity `json:"complexity"`
	ModelUsed      string     `json:"model_used"`
	ActualCost     float64    `json:"actual_cost"`
	BaselineCost   float64    `json:"baseline_cost"`
	RoutingSaved   float64    `json:"routing_saved"`
	RoutingSavedPc float64    `json:"routing_savings_pct"`
}

// ComputeSavings reports savings relative to always-complex routing: the
// baseline is the complex tier's rates regardless of what tier the
// message landed in. That is a deliberate policy — "what if we had
// always used the most expensive tier" — not a comparison against a
// naive non-routing system. Never fails; a zero baseline yields zero
// percent.
func (r *Router) ComputeSavings(message string, inputTokens, outputTokens int, modelUsed string) SavingsReport {
	tier := Classify(message)
	profile := r.profiles[tier]
	baseline := r.profiles[Complex]

	actual := float64(inputTokens)*profile.CostInput + float64(outputTokens)*profile.CostOutput
	baselineCost := float64(inputTokens)*baseline.CostInput + float64(outputTokens)*baseline.CostOutput

	saved := baselineCost - actual
	if saved < 0 {
		saved = 0
	}

	pct := 0.0
	if baselineCost > 0 {
		pct = saved / baselineCost * 100
	}

	return SavingsReport{
		Complexity:     tier,
		ModelUsed:      modelUsed,
		ActualCost:     tokens.Round8(actual),
		BaselineCost:   tokens.Round8(baselineCost),
		RoutingSaved:   tokens.Round8(saved),
		RoutingSavedPc: tokens.Round2(pct),
	}
}
