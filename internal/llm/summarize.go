package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/memvault/memvault/internal/models"
)

// summaryModel is the fixed model for memory maintenance work. This is
// independent of the router's per-query choice: summaries feed long-term
// storage and are worth the larger model.
const summaryModel = "llama-3.3-70b-versatile"

const summaryMaxTokens = 300

// Summarize condenses a conversation into a few key points and scores
// its importance in [0,1]. Longer summaries mean more was worth keeping,
// so importance grows with summary length, capped at 1.
func (c *Client) Summarize(ctx context.Context, turns []models.Turn) (string, float64, error) {
	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(turn.Role)), turn.Content)
	}

	prompt := fmt.Sprintf(`Summarize this conversation in 3-4 key points.
Focus on: what the user is working on, problems discussed, solutions found, user preferences shown.
Be concise. Output as plain text bullet points.

CONVERSATION:
%s`, b.String())

	summary, err := c.Complete(ctx, summaryModel, []Message{
		{Role: "user", Content: prompt},
	}, summaryMaxTokens)
	if err != nil {
		return "", 0, fmt.Errorf("summarize conversation: %w", err)
	}

	importance := float64(len(summary)) / 500
	if importance > 1.0 {
		importance = 1.0
	}

	return summary, importance, nil
}
