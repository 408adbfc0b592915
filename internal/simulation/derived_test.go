package simulation

import (
	"testing"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// traceOutcome builds an outcome from a hand-written trace and derives
// its markets the way the generator would
func traceOutcome(t *testing.T, scores []models.RoundScore) models.Outcome {
	t.Helper()

	out := models.Outcome{
		MatchID:     "round-1-m1",
		HomeTeamID:  "home",
		AwayTeamID:  "away",
		RoundScores: scores,
	}
	for _, rs := range scores {
		out.HomeTotal += rs.Home
		out.AwayTotal += rs.Away
	}
	switch {
	case out.AwayTotal > out.HomeTotal:
		out.WinnerIndex = 1
	case out.AwayTotal == out.HomeTotal:
		out.Tie = true
	}
	out.Derived = deriveMarkets(&out)
	return out
}

func TestDeriveMarkets_Comeback(t *testing.T) {
	// Away trails after rounds 1-4, takes round 5 big
	out := traceOutcome(t, []models.RoundScore{
		{Home: 12, Away: 8},
		{Home: 10, Away: 9},
		{Home: 11, Away: 10},
		{Home: 9, Away: 11},
		{Home: 5, Away: 20},
	})

	if out.WinnerTeamID() != "away" {
		t.Fatalf("expected away to win, got %s", out.WinnerTeamID())
	}
	if !out.Derived.Comeback {
		t.Error("expected comeback flag")
	}
	if !out.Derived.LedThenLost {
		t.Error("expected led-then-lost flag")
	}
}

func TestDeriveMarkets_PerfectRound(t *testing.T) {
	out := traceOutcome(t, []models.RoundScore{
		{Home: 12, Away: 8},
		{Home: 10, Away: 9},
		{Home: 11, Away: 10},
		{Home: 12, Away: 11},
		{Home: 15, Away: 5},
	})

	if !out.Derived.PerfectRound {
		t.Error("expected perfect round: home took every round")
	}
	if out.Derived.Comeback {
		t.Error("wire-to-wire win is not a comeback")
	}
	if out.Derived.LeadChanges != 0 {
		t.Errorf("expected 0 lead changes, got %d", out.Derived.LeadChanges)
	}
	if !out.Derived.FirstRoundWon {
		t.Error("round-1 winner won the match")
	}
}

func TestDeriveMarkets_Shutout(t *testing.T) {
	out := traceOutcome(t, []models.RoundScore{
		{Home: 12, Away: 0},
		{Home: 10, Away: 9},
		{Home: 11, Away: 10},
		{Home: 9, Away: 11},
		{Home: 15, Away: 5},
	})

	if !out.Derived.ShutoutRound {
		t.Error("expected shutout flag for the 12-0 round")
	}
}

func TestDeriveMarkets_LeadChanges(t *testing.T) {
	// Lead swings home -> away -> home
	out := traceOutcome(t, []models.RoundScore{
		{Home: 15, Away: 5},
		{Home: 5, Away: 20},
		{Home: 20, Away: 5},
		{Home: 10, Away: 10},
		{Home: 10, Away: 10},
	})

	if out.Derived.LeadChanges != 2 {
		t.Errorf("expected 2 lead changes, got %d", out.Derived.LeadChanges)
	}
}

func TestDeriveMarkets_MarginBuckets(t *testing.T) {
	tests := []struct {
		name       string
		homeTotal  int
		wantBucket string
	}{
		{"tight finish", 53, "1-5"},
		{"one-score game", 58, "6-10"},
		{"comfortable", 63, "11-15"},
		{"blowout", 80, "16+"},
		{"level", 50, "tie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Single round carrying the whole margin keeps the trace simple
			out := traceOutcome(t, []models.RoundScore{
				{Home: tt.homeTotal, Away: 50},
				{Home: 0, Away: 0},
				{Home: 0, Away: 0},
				{Home: 0, Away: 0},
				{Home: 0, Away: 0},
			})

			if out.Derived.MarginBucket != tt.wantBucket {
				t.Errorf("margin %d bucketed as %q, want %q",
					out.Margin(), out.Derived.MarginBucket, tt.wantBucket)
			}
		})
	}
}

func TestStandardTotalsLine(t *testing.T) {
	home := models.TeamRating{TeamID: "home", CurrentForm: 1.0}
	away := models.TeamRating{TeamID: "away", CurrentForm: 1.0}

	// 5 rounds x 12 base x (1.0 + 1.0) = 120 expected, line at 120.5
	line := StandardTotalsLine(home, away)
	if line != 120.5 {
		t.Errorf("line = %v, want 120.5", line)
	}
}
