package tokens

import (
	"testing"

	"github.com/memvault/memvault/internal/models"
)

func TestEstimate(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty string", "", 0},
		{"single short word", "hi", 1},
		{"four chars is one token", "test", 1},
		{"five chars rounds up", "tests", 2},
		{"word floor beats char ratio", "a b c d e f", 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Estimate(tc.text)
			if got != tc.want {
				t.Errorf("Estimate(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestEstimateNeverNegative(t *testing.T) {
	for _, text := range []string{"", " ", "\n\t", "word", "longer sentence with several words"} {
		if got := Estimate(text); got < 0 {
			t.Errorf("Estimate(%q) = %d, want >= 0", text, got)
		}
	}
}

func TestEstimateTurns(t *testing.T) {
	turns := []models.Turn{
		{Role: models.RoleUser, Content: "test"},
		{Role: models.RoleAssistant, Content: "test"},
	}

	// 1 token per message content plus 4 overhead each.
	want := 10
	if got := EstimateTurns(turns); got != want {
		t.Errorf("EstimateTurns = %d, want %d", got, want)
	}

	if got := EstimateTurns(nil); got != 0 {
		t.Errorf("EstimateTurns(nil) = %d, want 0", got)
	}
}

func TestCost(t *testing.T) {
	table := DefaultPriceTable()

	t.Run("known model", func(t *testing.T) {
		usage := table.Cost(1000, 500, "llama3-70b-groq")

		if usage.TotalTokens != 1500 {
			t.Errorf("TotalTokens = %d, want 1500", usage.TotalTokens)
		}
		want := Round8(1000*0.00000059 + 500*0.00000079)
		if usage.ActualCost != want {
			t.Errorf("ActualCost = %v, want %v", usage.ActualCost, want)
		}
	})

	t.Run("unknown model falls back to default", func(t *testing.T) {
		known := table.Cost(1000, 500, "llama3-70b-groq")
		unknown := table.Cost(1000, 500, "some-future-model")

		if unknown.ActualCost != known.ActualCost {
			t.Errorf("fallback cost = %v, want %v", unknown.ActualCost, known.ActualCost)
		}
	})

	t.Run("zero tokens cost nothing", func(t *testing.T) {
		usage := table.Cost(0, 0, "gpt-4o")
		if usage.ActualCost != 0 {
			t.Errorf("ActualCost = %v, want 0", usage.ActualCost)
		}
	})
}

func TestRound8(t *testing.T) {
	if got := Round8(0.123456789); got != 0.12345679 {
		t.Errorf("Round8 = %v, want 0.12345679", got)
	}
	if got := Round8(0.000000001); got != 0 {
		t.Errorf("Round8 tiny = %v, want 0", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(99.996); got != 100 {
		t.Errorf("Round2 = %v, want 100", got)
	}
	if got := Round2(33.333); got != 33.33 {
		t.Errorf("Round2 = %v, want 33.33", got)
	}
}
