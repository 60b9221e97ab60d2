// Package cost records per-query spending and aggregates it into
// analytics. Records are append-only; analytics are recomputed from the
// ledger on every request.
package cost

import (
	"context"
	"fmt"

	"github.com/memvault/memvault/internal/models"
	"github.com/memvault/memvault/internal/tokens"
)

// naiveContextMultiplier models the no-memory baseline: without tiered
// memory, roughly the full conversation history rides along on every
// request, about three times the routed input.
const naiveContextMultiplier = 3

// CostRows is the slice of the store the tracker and analytics need.
type CostRows interface {
	InsertCostRecord(ctx context.Context, rec *models.CostRecord) error
	ListCostRecords(ctx context.Context, userID string, limit int) ([]models.CostRecord, error)
}

// Tracker logs the token and dollar breakdown of each query.
type Tracker struct {
	rows    CostRows
	pricing tokens.PriceTable
}

// NewTracker wires a tracker onto the cost ledger. pricing backstops
// profiles that carry no rates of their own.
func NewTracker(rows CostRows, pricing tokens.PriceTable) *Tracker {
	return &Tracker{rows: rows, pricing: pricing}
}

// QueryCost is everything the tracker needs to log one exchange.
type QueryCost struct {
	UserID         string
	SessionID      string
	WorkingTokens  int
	EpisodicTokens int
	LongTermTokens int
	MessageTokens  int
	ResponseTokens int
	Profile        models.ModelProfile
	MemoryLayer    models.MemoryLayer
}

// Log derives the costs from the token counts and appends a record.
// Naive cost is what the exchange would have cost shipping the full
// unsummarized history instead of tiered memory context. Saved never
// goes negative.
func (t *Tracker) Log(ctx context.Context, q QueryCost) (*models.CostRecord, error) {
	inputTokens := q.WorkingTokens + q.EpisodicTokens + q.LongTermTokens + q.MessageTokens
	totalTokens := inputTokens + q.ResponseTokens

	inRate, outRate := q.Profile.CostInput, q.Profile.CostOutput
	if inRate == 0 && outRate == 0 {
		fallback, ok := t.pricing.Models[q.Profile.ModelID]
		if !ok {
			fallback = t.pricing.Models[t.pricing.DefaultModel]
		}
		inRate, outRate = fallback.Input, fallback.Output
	}

	actual := float64(inputTokens)*inRate + float64(q.ResponseTokens)*outRate
	naive := float64(inputTokens*naiveContextMultiplier)*inRate + float64(q.ResponseTokens)*outRate

	saved := naive - actual
	if saved < 0 {
		saved = 0
	}
	pct := 0.0
	if naive > 0 {
		pct = saved / naive * 100
	}

	// Medium and complex share a model id, so the ledger records the
	// profile label to keep the tiers distinguishable in analytics.
	modelUsed := q.Profile.Label
	if modelUsed == "" {
		modelUsed = q.Profile.ModelID
	}

	rec := &models.CostRecord{
		UserID:            q.UserID,
		SessionID:         q.SessionID,
		WorkingTokens:     q.WorkingTokens,
		EpisodicTokens:    q.EpisodicTokens,
		LongTermTokens:    q.LongTermTokens,
		UserMessageTokens: q.MessageTokens,
		ResponseTokens:    q.ResponseTokens,
		TotalTokens:       totalTokens,
		ActualCost:        tokens.Round8(actual),
		NaiveCost:         tokens.Round8(naive),
		CostSaved:         tokens.Round8(saved),
		SavingsPercent:    tokens.Round2(pct),
		ModelUsed:         modelUsed,
		MemoryHit:         q.EpisodicTokens > 0 || q.LongTermTokens > 0,
		MemoryLayerUsed:   q.MemoryLayer,
		EstimatorVersion:  tokens.EstimatorVersion,
	}

	if err := t.rows.InsertCostRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("log query cost: %w", err)
	}
	return rec, nil
}
