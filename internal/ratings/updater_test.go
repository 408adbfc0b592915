package ratings_test

import (
	"context"
	"math"
	"testing"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/ratings"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/store"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

func outcomeFixture(winner, loser string) models.Outcome {
	return models.Outcome{
		MatchID:     "round-1-m1",
		HomeTeamID:  winner,
		AwayTeamID:  loser,
		HomeTotal:   60,
		AwayTotal:   50,
		WinnerIndex: 0,
	}
}

func TestApplyRound_AsymmetricDeltas(t *testing.T) {
	s := store.NewMemoryStore()
	updater := ratings.NewUpdater(s, 0.05, 0.98)

	if err := updater.ApplyRound(context.Background(), []models.Outcome{
		outcomeFixture("winner", "loser"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	winner, _ := s.GetRating(context.Background(), "winner")
	loser, _ := s.GetRating(context.Background(), "loser")

	// Lazy defaults start at 1.0: winner +0.05, loser -0.025
	if math.Abs(winner.CurrentForm-1.05) > 1e-9 {
		t.Errorf("winner form = %f, want 1.05", winner.CurrentForm)
	}
	if math.Abs(loser.CurrentForm-0.975) > 1e-9 {
		t.Errorf("loser form = %f, want 0.975", loser.CurrentForm)
	}

	if winner.Wins != 1 || winner.MatchesPlayed != 1 {
		t.Errorf("winner counters = %d/%d, want 1/1", winner.Wins, winner.MatchesPlayed)
	}
	if loser.Wins != 0 || loser.MatchesPlayed != 1 {
		t.Errorf("loser counters = %d/%d, want 0/1", loser.Wins, loser.MatchesPlayed)
	}

	if winner.LastUpdated.IsZero() {
		t.Error("last updated not set")
	}
}

func TestApplyRound_FormStaysBounded(t *testing.T) {
	s := store.NewMemoryStore()
	updater := ratings.NewUpdater(s, 0.05, 0.98)
	ctx := context.Background()

	// Hammer both directions far past the bounds
	for i := 0; i < 100; i++ {
		if err := updater.ApplyRound(ctx, []models.Outcome{
			outcomeFixture("streaky-winner", "streaky-loser"),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	winner, _ := s.GetRating(ctx, "streaky-winner")
	loser, _ := s.GetRating(ctx, "streaky-loser")

	if winner.CurrentForm != models.MaxForm {
		t.Errorf("winner form = %f, want clamped to %f", winner.CurrentForm, models.MaxForm)
	}
	if loser.CurrentForm != models.MinForm {
		t.Errorf("loser form = %f, want clamped to %f", loser.CurrentForm, models.MinForm)
	}
}

func TestApplyRound_VolatilityDecays(t *testing.T) {
	s := store.NewMemoryStore()
	updater := ratings.NewUpdater(s, 0.05, 0.98)
	ctx := context.Background()

	// Seed a team with high volatility
	if err := s.UpdateRating(ctx, "volatile", func(r *models.TeamRating) error {
		r.VolatilityIndex = 0.5
		return nil
	}); err != nil {
		t.Fatalf("seed rating: %v", err)
	}
	before, _ := s.GetRating(ctx, "volatile")

	if err := updater.ApplyRound(ctx, []models.Outcome{
		outcomeFixture("volatile", "steady"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, _ := s.GetRating(ctx, "volatile")
	want := before.VolatilityIndex * 0.98
	if math.Abs(after.VolatilityIndex-want) > 1e-9 {
		t.Errorf("volatility = %f, want %f", after.VolatilityIndex, want)
	}
	if after.VolatilityIndex >= before.VolatilityIndex {
		t.Error("volatility did not decay")
	}
}

func TestNewUpdater_Defaults(t *testing.T) {
	s := store.NewMemoryStore()
	updater := ratings.NewUpdater(s, 0, 0)
	ctx := context.Background()

	if err := updater.ApplyRound(ctx, []models.Outcome{
		outcomeFixture("a", "b"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := s.GetRating(ctx, "a")
	if math.Abs(a.CurrentForm-(1.0+ratings.DefaultLearningRate)) > 1e-9 {
		t.Errorf("default learning rate not applied: form = %f", a.CurrentForm)
	}
}
