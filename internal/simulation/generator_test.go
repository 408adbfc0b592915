package simulation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/simulation"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

func participantFixture(teamID string, form, volatility float64) models.Participant {
	return models.Participant{
		TeamID: teamID,
		Rating: models.TeamRating{
			TeamID:          teamID,
			CurrentForm:     form,
			VolatilityIndex: volatility,
		},
	}
}

func fieldFixture() []models.Participant {
	return []models.Participant{
		participantFixture("lincoln-high", 1.4, 0.1),
		participantFixture("roosevelt-high", 0.9, 0.3),
		participantFixture("jefferson-high", 1.0, 0.1),
		participantFixture("washington-high", 1.1, 0.2),
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	// Two independent calls with identical inputs must be byte-identical
	first, err := simulation.Generate(424242, "round-7", fieldFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := simulation.Generate(424242, "round-7", fieldFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)

	if string(firstJSON) != string(secondJSON) {
		t.Errorf("same inputs produced different outcomes:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestGenerate_SeedChangesOutcomes(t *testing.T) {
	first, err := simulation.Generate(1, "round-7", fieldFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := simulation.Generate(2, "round-7", fieldFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)

	if string(firstJSON) == string(secondJSON) {
		t.Error("different seeds produced identical outcomes")
	}
}

func TestGenerate_RoundIDChangesOutcomes(t *testing.T) {
	first, _ := simulation.Generate(1, "round-7", fieldFixture())
	second, _ := simulation.Generate(1, "round-8", fieldFixture())

	firstJSON, _ := json.Marshal(first[0].RoundScores)
	secondJSON, _ := json.Marshal(second[0].RoundScores)

	if string(firstJSON) == string(secondJSON) {
		t.Error("same seed replayed across rounds")
	}
}

func TestGenerate_Pairing(t *testing.T) {
	tests := []struct {
		name         string
		participants int
		wantFixtures int
	}{
		{"two teams, one fixture", 2, 1},
		{"four teams, two fixtures", 4, 2},
		{"odd field, trailing bye", 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := make([]models.Participant, tt.participants)
			for i := range field {
				field[i] = participantFixture(string(rune('a'+i)), 1.0, 0.1)
			}

			outcomes, err := simulation.Generate(99, "round-1", field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(outcomes) != tt.wantFixtures {
				t.Errorf("got %d fixtures, want %d", len(outcomes), tt.wantFixtures)
			}
		})
	}
}

func TestGenerate_TraceConsistency(t *testing.T) {
	outcomes, err := simulation.Generate(7, "round-3", fieldFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, out := range outcomes {
		if len(out.RoundScores) != simulation.NumRounds {
			t.Errorf("fixture %s has %d rounds, want %d", out.MatchID, len(out.RoundScores), simulation.NumRounds)
		}

		var home, away int
		for _, rs := range out.RoundScores {
			if rs.Home < 0 || rs.Away < 0 {
				t.Errorf("fixture %s has negative round score", out.MatchID)
			}
			home += rs.Home
			away += rs.Away
		}

		if home != out.HomeTotal || away != out.AwayTotal {
			t.Errorf("fixture %s totals don't match trace: %d/%d vs %d/%d",
				out.MatchID, home, away, out.HomeTotal, out.AwayTotal)
		}

		// Winner must be the higher total; ties break to home (index 0)
		switch {
		case home > away && out.WinnerIndex != 0:
			t.Errorf("fixture %s: home won on points but winner index is %d", out.MatchID, out.WinnerIndex)
		case away > home && out.WinnerIndex != 1:
			t.Errorf("fixture %s: away won on points but winner index is %d", out.MatchID, out.WinnerIndex)
		case home == away && (out.WinnerIndex != 0 || !out.Tie):
			t.Errorf("fixture %s: tie not broken to lower index", out.MatchID)
		}

		if out.Derived.TotalPoints != home+away {
			t.Errorf("fixture %s derived total %d, want %d", out.MatchID, out.Derived.TotalPoints, home+away)
		}

		if len(out.Derived.RoundWinners) != simulation.NumRounds {
			t.Errorf("fixture %s has %d round winners", out.MatchID, len(out.Derived.RoundWinners))
		}
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name         string
		roundID      string
		participants []models.Participant
	}{
		{"empty round id", "", fieldFixture()},
		{"empty field", "round-1", nil},
		{"single participant", "round-1", fieldFixture()[:1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := simulation.Generate(1, tt.roundID, tt.participants)
			if !errors.Is(err, contracts.ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestGenerate_FormDrivesResults(t *testing.T) {
	// A maximal-form team against a minimal-form team should win the
	// large majority of fixtures across many seeds
	strong := participantFixture("strong", 2.0, 0.0)
	weak := participantFixture("weak", 0.5, 0.0)

	strongWins := 0
	const trials = 200
	for seed := int64(0); seed < trials; seed++ {
		outcomes, err := simulation.Generate(seed, "round-1", []models.Participant{strong, weak})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcomes[0].WinnerTeamID() == "strong" {
			strongWins++
		}
	}

	if strongWins < trials*9/10 {
		t.Errorf("strong team won only %d/%d fixtures", strongWins, trials)
	}
}
