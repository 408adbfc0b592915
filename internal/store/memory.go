// Package store provides the Bet, TeamRating, and wallet-ledger
// persistence behind the engine contracts, with a Postgres
// implementation for production and an in-memory one for tests and
// local development.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// MemoryStore is an in-memory implementation of BetStore, RatingStore,
// and WalletSink. One mutex serializes every mutation, which trivially
// satisfies the row-lock semantics the contracts require.
type MemoryStore struct {
	mu       sync.Mutex
	bets     map[string]*models.Bet
	ratings  map[string]models.TeamRating
	ledger   []models.WalletCredit
	balances map[string]map[models.WalletPartition]float64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bets:     make(map[string]*models.Bet),
		ratings:  make(map[string]models.TeamRating),
		balances: make(map[string]map[models.WalletPartition]float64),
	}
}

// CreateBet inserts a new bet record
func (s *MemoryStore) CreateBet(ctx context.Context, bet *models.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bets[bet.ID]; exists {
		return fmt.Errorf("bet %s already exists", bet.ID)
	}
	cp := *bet
	s.bets[bet.ID] = &cp
	return nil
}

// PutBet inserts or replaces a bet record; test convenience
func (s *MemoryStore) PutBet(bet *models.Bet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bet
	s.bets[bet.ID] = &cp
}

// GetBet returns a copy of the bet or ErrBetNotFound
func (s *MemoryStore) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.bets[betID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrBetNotFound, betID)
	}
	cp := *bet
	return &cp, nil
}

// ListPendingBets returns copies of every pending bet on the round
func (s *MemoryStore) ListPendingBets(ctx context.Context, roundID string) ([]*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*models.Bet
	for _, bet := range s.bets {
		if bet.RoundID == roundID && bet.Status == models.StatusPending {
			cp := *bet
			pending = append(pending, &cp)
		}
	}
	return pending, nil
}

// FinalizeBet implements the transactional settle: under the store
// lock, a non-pending bet returns its recorded settlement unchanged; a
// pending bet runs decide and commits status, payout, and credit
// together, or nothing on error.
func (s *MemoryStore) FinalizeBet(ctx context.Context, betID string, decide func(bet *models.Bet) (*contracts.BetSettlement, error)) (*contracts.BetSettlement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.bets[betID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", contracts.ErrBetNotFound, betID)
	}

	if bet.Status != models.StatusPending {
		return &contracts.BetSettlement{Status: bet.Status, Payout: bet.Payout}, false, nil
	}

	cp := *bet
	settlement, err := decide(&cp)
	if err != nil {
		return nil, false, err
	}

	bet.Status = settlement.Status
	bet.Payout = settlement.Payout
	if settlement.Credit != nil {
		s.creditLocked(*settlement.Credit)
	}

	return settlement, true, nil
}

// GetRating returns the stored rating or the lazy default
func (s *MemoryStore) GetRating(ctx context.Context, teamID string) (models.TeamRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.ratings[teamID]; ok {
		return r, nil
	}
	return models.NewDefaultRating(teamID), nil
}

// GetRatings resolves a batch of team ids in input order
func (s *MemoryStore) GetRatings(ctx context.Context, teamIDs []string) ([]models.TeamRating, error) {
	out := make([]models.TeamRating, len(teamIDs))
	for i, id := range teamIDs {
		r, err := s.GetRating(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// UpdateRating runs apply as a serialized read-modify-write,
// creating the default row when the team is new
func (s *MemoryStore) UpdateRating(ctx context.Context, teamID string, apply func(r *models.TeamRating) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.ratings[teamID]
	if !ok {
		r = models.NewDefaultRating(teamID)
	}

	if err := apply(&r); err != nil {
		return err
	}

	s.ratings[teamID] = r
	return nil
}

// Credit appends a wallet credit outside a settlement transaction
func (s *MemoryStore) Credit(ctx context.Context, credit models.WalletCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creditLocked(credit)
	return nil
}

// Balance returns the user's cash and locked balances
func (s *MemoryStore) Balance(ctx context.Context, userID string) (cash, locked float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := s.balances[userID]
	return parts[models.PartitionCash], parts[models.PartitionLocked], nil
}

// Ledger returns a copy of the full credit log, oldest first
func (s *MemoryStore) Ledger() []models.WalletCredit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.WalletCredit, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// creditLocked applies a credit; caller holds the mutex
func (s *MemoryStore) creditLocked(credit models.WalletCredit) {
	s.ledger = append(s.ledger, credit)
	if s.balances[credit.UserID] == nil {
		s.balances[credit.UserID] = make(map[models.WalletPartition]float64)
	}
	s.balances[credit.UserID][credit.Partition] += credit.Amount
}
