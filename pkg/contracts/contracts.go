package contracts

import (
	"context"
	"errors"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// Sentinel errors callers discriminate on with errors.Is
var (
	// ErrBetNotFound means the referenced bet does not exist
	ErrBetNotFound = errors.New("bet not found")

	// ErrUnauthorized means the caller is not the bet owner
	ErrUnauthorized = errors.New("caller is not the bet owner")

	// ErrInvalidInput means a precondition failed before any simulation
	// or mutation ran
	ErrInvalidInput = errors.New("invalid input")
)

// BetSettlement is the recorded result of settling one bet
type BetSettlement struct {
	Status models.BetStatus
	Payout float64
	Credit *models.WalletCredit // nil when nothing was credited
}

// BetStore reads and finalizes bet records
type BetStore interface {
	// GetBet returns the bet or ErrBetNotFound
	GetBet(ctx context.Context, betID string) (*models.Bet, error)

	// ListPendingBets returns all pending bets placed against a round
	ListPendingBets(ctx context.Context, roundID string) ([]*models.Bet, error)

	// FinalizeBet runs decide against the bet inside a single transaction
	// that also writes the wallet credit. The bet row is locked for the
	// duration. If the bet is no longer pending, decide is not called and
	// the previously recorded settlement is returned with applied=false.
	FinalizeBet(ctx context.Context, betID string, decide func(bet *models.Bet) (*BetSettlement, error)) (result *BetSettlement, applied bool, err error)
}

// RatingStore reads and updates team ratings
type RatingStore interface {
	// GetRating returns the team's rating, or the lazy default when the
	// team has never been rated. The default is not persisted on read.
	GetRating(ctx context.Context, teamID string) (models.TeamRating, error)

	// GetRatings resolves a batch of team ids in input order
	GetRatings(ctx context.Context, teamIDs []string) ([]models.TeamRating, error)

	// UpdateRating runs apply as a serialized read-modify-write against
	// the team's row, creating the default row first if missing. Updates
	// to different teams may run concurrently; updates to the same team
	// must not interleave.
	UpdateRating(ctx context.Context, teamID string, apply func(r *models.TeamRating) error) error
}

// WalletSink receives credits outside the settlement transaction
// (promotions, manual adjustments) and answers balance queries.
// Settlement credits go through BetStore.FinalizeBet so the credit and
// the status flip commit together.
type WalletSink interface {
	Credit(ctx context.Context, credit models.WalletCredit) error
	Balance(ctx context.Context, userID string) (cash, locked float64, err error)
}
