package models

import "time"

// ModelProfile is the static routing configuration for one complexity
// tier. Immutable at runtime; loaded from config or built-in defaults.
type ModelProfile struct {
	ModelID    string  `json:"model_id" yaml:"model_id"`
	Label      string  `json:"label" yaml:"label"`
	CostInput  float64 `json:"cost_input" yaml:"cost_input"`   // dollars per input token
	CostOutput float64 `json:"cost_output" yaml:"cost_output"` // dollars per output token
	MaxTokens  int     `json:"max_tokens" yaml:"max_tokens"`
}

// CostRecord is the append-only per-query cost breakdown. Costs are
// stored to 8 decimal places; the token estimator version travels with
// the record so historical comparisons stay meaningful.
type CostRecord struct {
	QueryID           string      `json:"query_id"`
	UserID            string      `json:"user_id"`
	SessionID         string      `json:"session_id"`
	WorkingTokens     int         `json:"working_memory_tokens"`
	EpisodicTokens    int         `json:"episodic_memory_tokens"`
	LongTermTokens    int         `json:"longterm_memory_tokens"`
	UserMessageTokens int         `json:"user_message_tokens"`
	ResponseTokens    int         `json:"response_tokens"`
	TotalTokens       int         `json:"total_tokens"`
	ActualCost        float64     `json:"actual_cost"`
	NaiveCost         float64     `json:"naive_cost"`
	CostSaved         float64     `json:"cost_saved"`
	SavingsPercent    float64     `json:"savings_percent"`
	ModelUsed         string      `json:"model_used"`
	MemoryHit         bool        `json:"memory_hit"`
	MemoryLayerUsed   MemoryLayer `json:"memory_layer_used"`
	EstimatorVersion  string      `json:"estimator_version"`
	CreatedAt         time.Time   `json:"timestamp"`
}
