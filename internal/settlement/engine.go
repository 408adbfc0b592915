// Package settlement orchestrates bet settlement: it regenerates the
// outcome set a bet was priced against, resolves every leg, computes
// the payout for the staking mode, and commits the status transition
// and wallet credit as one transaction.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/markets"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/simulation"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// SettleRequest identifies one bet to settle on behalf of its owner
type SettleRequest struct {
	BetID    string
	CallerID string
	RoundID  string
	Seed     int64
}

// SettleResult is the recorded settlement the caller gets back, whether
// this call performed it or a previous one did
type SettleResult struct {
	BetID   string           `json:"bet_id"`
	Status  models.BetStatus `json:"status"`
	Payout  float64          `json:"payout"`
	Applied bool             `json:"applied"` // false when already settled
}

// EventPublisher receives settlement and round-close events. Implemented
// by the Redis stream publisher; nil-safe via the noop publisher.
type EventPublisher interface {
	PublishSettlement(ctx context.Context, result SettleResult) error
	PublishRoundClosed(ctx context.Context, roundID string, outcomes []models.Outcome) error
}

// Engine wires the stores and pure functions together
type Engine struct {
	bets          contracts.BetStore
	publisher     EventPublisher
	maxGamePayout float64
	now           func() time.Time
}

// NewEngine creates a settlement engine. A zero maxGamePayout selects
// the default cap.
func NewEngine(bets contracts.BetStore, publisher EventPublisher, maxGamePayout float64) *Engine {
	if maxGamePayout <= 0 {
		maxGamePayout = DefaultMaxGamePayout
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Engine{
		bets:          bets,
		publisher:     publisher,
		maxGamePayout: maxGamePayout,
		now:           time.Now,
	}
}

// Settle settles one bet, idempotently.
//
// The status transition (pending -> won|lost) is taken exactly once:
// the store runs the decide step under a row lock, and a bet found
// already settled short-circuits to the recorded result without
// touching the wallet again. A failed settlement aborts the whole
// transaction and leaves the bet pending for a safe retry.
func (e *Engine) Settle(ctx context.Context, req SettleRequest) (SettleResult, error) {
	if req.BetID == "" {
		return SettleResult{}, fmt.Errorf("%w: empty bet id", contracts.ErrInvalidInput)
	}
	if req.RoundID == "" {
		return SettleResult{}, fmt.Errorf("%w: empty round id", contracts.ErrInvalidInput)
	}

	// Ownership check before any mutation
	bet, err := e.bets.GetBet(ctx, req.BetID)
	if err != nil {
		return SettleResult{}, err
	}
	if req.CallerID != bet.UserID {
		return SettleResult{}, fmt.Errorf("%w: bet %s", contracts.ErrUnauthorized, req.BetID)
	}

	// The request must match the placement snapshot; a mismatched seed
	// or round would settle against outcomes the user never saw
	if req.RoundID != bet.RoundID || req.Seed != bet.Seed {
		return SettleResult{}, fmt.Errorf("%w: settle request does not match placement snapshot for bet %s",
			contracts.ErrInvalidInput, req.BetID)
	}

	settled, applied, err := e.bets.FinalizeBet(ctx, req.BetID, e.decide)
	if err != nil {
		return SettleResult{}, err
	}

	result := SettleResult{
		BetID:   req.BetID,
		Status:  settled.Status,
		Payout:  settled.Payout,
		Applied: applied,
	}

	if applied {
		if err := e.publisher.PublishSettlement(ctx, result); err != nil {
			// The transaction is committed; a publish failure is log-only
			fmt.Printf("[Settlement] publish failed for bet %s: %v\n", req.BetID, err)
		}
	}

	return result, nil
}

// decide runs inside the store transaction, against the locked pending
// bet. It is pure apart from reading the clock for the settled-at mark.
func (e *Engine) decide(bet *models.Bet) (*contracts.BetSettlement, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}

	// Regenerate the exact outcome set the bet was placed against
	outcomes, err := simulation.Generate(bet.Seed, bet.RoundID, bet.RatingsSnapshot)
	if err != nil {
		return nil, fmt.Errorf("regenerate outcomes for bet %s: %w", bet.ID, err)
	}

	byMatch := make(map[string]models.Outcome, len(outcomes))
	for _, out := range outcomes {
		byMatch[out.MatchID] = out
	}

	legWon := make([]bool, len(bet.Selections))
	for i, sel := range bet.Selections {
		out, ok := byMatch[sel.MatchID]
		if !ok {
			// A leg on a match outside the regenerated round loses:
			// the snapshot is authoritative for what was on offer
			continue
		}
		legWon[i] = markets.Resolve(sel, out)
	}

	gross := GrossWinnings(bet, legWon, e.maxGamePayout)
	amount, partition := CreditedPayout(bet, gross)

	status := models.StatusLost
	if gross > 0 {
		status = models.StatusWon
	}

	settlement := &contracts.BetSettlement{
		Status: status,
		Payout: amount,
	}
	if amount > 0 {
		settlement.Credit = &models.WalletCredit{
			UserID:    bet.UserID,
			Amount:    amount,
			Partition: partition,
			Reference: "settle:" + bet.ID,
		}
	}

	return settlement, nil
}

// validateBet rejects malformed bets before any simulation runs
func validateBet(bet *models.Bet) error {
	if len(bet.Selections) == 0 {
		return fmt.Errorf("%w: bet %s has no selections", contracts.ErrInvalidInput, bet.ID)
	}
	if bet.Stake <= 0 {
		return fmt.Errorf("%w: bet %s has non-positive stake %.2f", contracts.ErrInvalidInput, bet.ID, bet.Stake)
	}
	if !bet.Mode.Valid() {
		return fmt.Errorf("%w: bet %s has unknown mode %q", contracts.ErrInvalidInput, bet.ID, bet.Mode)
	}
	if len(bet.RatingsSnapshot) < 2 {
		return fmt.Errorf("%w: bet %s has no ratings snapshot", contracts.ErrInvalidInput, bet.ID)
	}
	return nil
}

// NopPublisher drops events; used when no Redis is wired (tests, CLI)
type NopPublisher struct{}

func (NopPublisher) PublishSettlement(ctx context.Context, result SettleResult) error {
	return nil
}

func (NopPublisher) PublishRoundClosed(ctx context.Context, roundID string, outcomes []models.Outcome) error {
	return nil
}
