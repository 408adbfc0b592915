package settlement

import (
	"context"
	"fmt"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/ratings"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/simulation"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// RoundBroadcaster pushes closed-round results to live subscribers.
// Implemented by the websocket hub.
type RoundBroadcaster interface {
	BroadcastRoundResult(roundID string, outcomes []models.Outcome)
}

// RoundCloser runs the end-of-round batch: settle every pending bet of
// the round, adapt ratings from the canonical outcomes, then fan the
// results out.
type RoundCloser struct {
	engine      *Engine
	bets        contracts.BetStore
	ratingStore contracts.RatingStore
	updater     *ratings.Updater
	broadcaster RoundBroadcaster
}

// NewRoundCloser wires the round-close batch job. broadcaster may be nil.
func NewRoundCloser(engine *Engine, bets contracts.BetStore, ratingStore contracts.RatingStore, updater *ratings.Updater, broadcaster RoundBroadcaster) *RoundCloser {
	return &RoundCloser{
		engine:      engine,
		bets:        bets,
		ratingStore: ratingStore,
		updater:     updater,
		broadcaster: broadcaster,
	}
}

// RoundCloseResult summarizes one round-close batch
type RoundCloseResult struct {
	RoundID      string           `json:"round_id"`
	Outcomes     []models.Outcome `json:"outcomes"`
	BetsSettled  int              `json:"bets_settled"`
	BetsFailed   int              `json:"bets_failed"`
	TotalPaidOut float64          `json:"total_paid_out"`
}

// CloseRound settles the round's pending bets and applies rating
// updates from the canonical outcome set generated with the round's
// published seed and the current live ratings of the listed teams.
//
// Individual settle failures are logged and counted, not fatal: a
// failed bet stays pending and the batch can be rerun; idempotency in
// the settle path makes the rerun safe for the bets that did commit.
func (rc *RoundCloser) CloseRound(ctx context.Context, roundID string, seed int64, teamIDs []string) (*RoundCloseResult, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 teams to close a round", contracts.ErrInvalidInput)
	}

	teamRatings, err := rc.ratingStore.GetRatings(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	participants := make([]models.Participant, len(teamRatings))
	for i, r := range teamRatings {
		participants[i] = models.Participant{TeamID: r.TeamID, Rating: r}
	}

	outcomes, err := simulation.Generate(seed, roundID, participants)
	if err != nil {
		return nil, fmt.Errorf("generate round outcomes: %w", err)
	}

	result := &RoundCloseResult{RoundID: roundID, Outcomes: outcomes}

	pending, err := rc.bets.ListPendingBets(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list pending bets: %w", err)
	}

	for _, bet := range pending {
		// Each bet settles against its own placement snapshot, not the
		// canonical outcomes above
		res, err := rc.engine.Settle(ctx, SettleRequest{
			BetID:    bet.ID,
			CallerID: bet.UserID,
			RoundID:  bet.RoundID,
			Seed:     bet.Seed,
		})
		if err != nil {
			fmt.Printf("[RoundClose] settle bet %s failed: %v\n", bet.ID, err)
			result.BetsFailed++
			continue
		}
		result.BetsSettled++
		result.TotalPaidOut += res.Payout
	}

	if err := rc.updater.ApplyRound(ctx, outcomes); err != nil {
		return result, fmt.Errorf("apply rating updates: %w", err)
	}

	if err := rc.engine.publisher.PublishRoundClosed(ctx, roundID, outcomes); err != nil {
		fmt.Printf("[RoundClose] publish round %s failed: %v\n", roundID, err)
	}

	if rc.broadcaster != nil {
		rc.broadcaster.BroadcastRoundResult(roundID, outcomes)
	}

	fmt.Printf("[RoundClose] round %s: settled %d/%d bets, paid %.2f\n",
		roundID, result.BetsSettled, len(pending), result.TotalPaidOut)

	return result, nil
}
