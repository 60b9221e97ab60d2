package cost

import (
	"context"
	"sort"
	"time"

	"github.com/memvault/memvault/internal/tokens"
)

const (
	dailyBreakdownDays    = 14
	tokenBreakdownQueries = 20
	analyticsRecordCap    = 500
)

// DailyCost is one day's aggregate in the analytics report.
type DailyCost struct {
	Date       string  `json:"date"`
	Queries    int     `json:"queries"`
	ActualCost float64 `json:"actual_cost"`
	CostSaved  float64 `json:"cost_saved"`
}

// QueryTokens is the per-layer token breakdown of one recent query.
type QueryTokens struct {
	QueryID        string    `json:"query_id"`
	WorkingTokens  int       `json:"working_memory_tokens"`
	EpisodicTokens int       `json:"episodic_memory_tokens"`
	LongTermTokens int       `json:"longterm_memory_tokens"`
	MessageTokens  int       `json:"user_message_tokens"`
	ResponseTokens int       `json:"response_tokens"`
	TotalTokens    int       `json:"total_tokens"`
	CreatedAt      time.Time `json:"timestamp"`
}

// Report is the full analytics payload for one user.
type Report struct {
	UserID            string         `json:"user_id"`
	TotalQueries      int            `json:"total_queries"`
	TotalTokens       int            `json:"total_tokens"`
	TotalActualCost   float64        `json:"total_actual_cost"`
	TotalNaiveCost    float64        `json:"total_naive_cost"`
	TotalCostSaved    float64        `json:"total_cost_saved"`
	AvgSavingsPercent float64        `json:"avg_savings_percent"`
	MemoryHitRate     float64        `json:"memory_hit_rate"`
	ModelUsage        map[string]int `json:"model_usage"`
	DailyBreakdown    []DailyCost    `json:"daily_breakdown"`
	RecentTokenUsage  []QueryTokens  `json:"recent_token_usage"`
}

// Analytics aggregates the cost ledger into per-user reports.
type Analytics struct {
	rows CostRows
	now  func() time.Time
}

// NewAnalytics builds the aggregator.
func NewAnalytics(rows CostRows) *Analytics {
	return &Analytics{rows: rows, now: time.Now}
}

// Report computes the user's analytics from their most recent records.
// A user with no history gets a zeroed report, not an error.
func (a *Analytics) Report(ctx context.Context, userID string) (*Report, error) {
	records, err := a.rows.ListCostRecords(ctx, userID, analyticsRecordCap)
	if err != nil {
		return nil, err
	}

	report := &Report{
		UserID:           userID,
		ModelUsage:       map[string]int{},
		DailyBreakdown:   []DailyCost{},
		RecentTokenUsage: []QueryTokens{},
	}
	if len(records) == 0 {
		return report, nil
	}

	hits := 0
	pctSum := 0.0
	daily := map[string]*DailyCost{}
	cutoff := a.now().AddDate(0, 0, -dailyBreakdownDays)

	for _, rec := range records {
		report.TotalQueries++
		report.TotalTokens += rec.TotalTokens
		report.TotalActualCost += rec.ActualCost
		report.TotalNaiveCost += rec.NaiveCost
		report.TotalCostSaved += rec.CostSaved
		pctSum += rec.SavingsPercent
		if rec.MemoryHit {
			hits++
		}
		report.ModelUsage[rec.ModelUsed]++

		if rec.CreatedAt.After(cutoff) {
			day := rec.CreatedAt.Format("2006-01-02")
			bucket, ok := daily[day]
			if !ok {
				bucket = &DailyCost{Date: day}
				daily[day] = bucket
			}
			bucket.Queries++
			bucket.ActualCost = tokens.Round8(bucket.ActualCost + rec.ActualCost)
			bucket.CostSaved = tokens.Round8(bucket.CostSaved + rec.CostSaved)
		}
	}

	report.TotalActualCost = tokens.Round8(report.TotalActualCost)
	report.TotalNaiveCost = tokens.Round8(report.TotalNaiveCost)
	report.TotalCostSaved = tokens.Round8(report.TotalCostSaved)
	report.AvgSavingsPercent = tokens.Round2(pctSum / float64(len(records)))
	report.MemoryHitRate = tokens.Round2(float64(hits) / float64(len(records)) * 100)

	for _, bucket := range daily {
		report.DailyBreakdown = append(report.DailyBreakdown, *bucket)
	}
	sort.Slice(report.DailyBreakdown, func(i, j int) bool {
		return report.DailyBreakdown[i].Date < report.DailyBreakdown[j].Date
	})

	// Records arrive oldest first; the token breakdown shows the newest.
	start := len(records) - tokenBreakdownQueries
	if start < 0 {
		start = 0
	}
	for i := len(records) - 1; i >= start; i-- {
		rec := records[i]
		report.RecentTokenUsage = append(report.RecentTokenUsage, QueryTokens{
			QueryID:        rec.QueryID,
			WorkingTokens:  rec.WorkingTokens,
			EpisodicTokens: rec.EpisodicTokens,
			LongTermTokens: rec.LongTermTokens,
			MessageTokens:  rec.UserMessageTokens,
			ResponseTokens: rec.ResponseTokens,
			TotalTokens:    rec.TotalTokens,
			CreatedAt:      rec.CreatedAt,
		})
	}

	return report, nil
}
