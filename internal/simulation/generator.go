package simulation

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// Simulation shape constants
const (
	// NumRounds is the number of scoring rounds per virtual fixture
	NumRounds = 5

	// BaseRoundScore is the per-round mean for a team at form 1.0
	BaseRoundScore = 12.0

	// BaseRoundSpread scales the per-round standard deviation
	BaseRoundSpread = 8.0

	// SpreadFloor keeps some variance even at zero volatility
	SpreadFloor = 0.25
)

// Generate simulates every fixture of a round from the participant list
// and their rating snapshots.
//
// Determinism contract: two calls with identical (seed, roundID,
// participants) produce identical results, across processes and
// machines. All randomness comes from one PRNG built from the seed and
// the round id; generation order is fixed (fixture by fixture, round by
// round, home side then away side). No clock, no globals, no store.
//
// Fixtures pair the participant list in order: (0 vs 1), (2 vs 3), ...
// An odd trailing participant sits the round out.
func Generate(seed int64, roundID string, participants []models.Participant) ([]models.Outcome, error) {
	if roundID == "" {
		return nil, fmt.Errorf("%w: empty round id", contracts.ErrInvalidInput)
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 participants, got %d", contracts.ErrInvalidInput, len(participants))
	}

	rng := rand.New(rand.NewSource(mixSeed(seed, roundID)))

	outcomes := make([]models.Outcome, 0, len(participants)/2)
	for i := 0; i+1 < len(participants); i += 2 {
		home := participants[i]
		away := participants[i+1]

		matchID := fmt.Sprintf("%s-m%d", roundID, i/2+1)
		out := simulateFixture(rng, seed, roundID, matchID, home, away)
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// mixSeed folds the round id into the caller's seed so the same seed
// never replays across rounds
func mixSeed(seed int64, roundID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(roundID))
	return seed ^ int64(h.Sum64())
}

// simulateFixture plays one virtual fixture round by round
func simulateFixture(rng *rand.Rand, seed int64, roundID, matchID string, home, away models.Participant) models.Outcome {
	out := models.Outcome{
		ID:          fmt.Sprintf("%s:%d", matchID, seed),
		Seed:        seed,
		RoundID:     roundID,
		MatchID:     matchID,
		HomeTeamID:  home.TeamID,
		AwayTeamID:  away.TeamID,
		RoundScores: make([]models.RoundScore, 0, NumRounds),
	}

	for r := 0; r < NumRounds; r++ {
		hs := sampleRoundScore(rng, home.Rating)
		as := sampleRoundScore(rng, away.Rating)
		out.RoundScores = append(out.RoundScores, models.RoundScore{Home: hs, Away: as})
		out.HomeTotal += hs
		out.AwayTotal += as
	}

	// Highest total wins; ties break to the lower participant index
	switch {
	case out.AwayTotal > out.HomeTotal:
		out.WinnerIndex = 1
	case out.AwayTotal == out.HomeTotal:
		out.WinnerIndex = 0
		out.Tie = true
	default:
		out.WinnerIndex = 0
	}

	out.Derived = deriveMarkets(&out)
	return out
}

// sampleRoundScore draws one round's score delta for a team.
//
// delta ~ Normal(mean, stddev)
//   mean   = BaseRoundScore * currentForm
//   stddev = BaseRoundSpread * (SpreadFloor + volatilityIndex)
//
// Higher form shifts the whole distribution up; higher volatility widens
// it, which is what produces upsets. Negative draws clamp to zero.
func sampleRoundScore(rng *rand.Rand, rating models.TeamRating) int {
	mean := BaseRoundScore * rating.CurrentForm
	stddev := BaseRoundSpread * (SpreadFloor + rating.VolatilityIndex)

	delta := mean + rng.NormFloat64()*stddev
	if delta < 0 {
		delta = 0
	}
	return int(math.Round(delta))
}
