package models

import "time"

// BetMode determines how a slip's legs combine into a payout
type BetMode string

const (
	// ModeSingle settles each leg as an independent sub-bet of stake/legCount
	ModeSingle BetMode = "single"
	// ModeMulti requires every leg to win; payout is the frozen potential payout
	ModeMulti BetMode = "multi"
)

// Valid reports whether the mode is one of the known staking modes
func (m BetMode) Valid() bool {
	return m == ModeSingle || m == ModeMulti
}

// BetStatus is the bet's settlement state. Transitions are one-way:
// pending -> won | lost, taken exactly once.
type BetStatus string

const (
	StatusPending BetStatus = "pending"
	StatusWon     BetStatus = "won"
	StatusLost    BetStatus = "lost"
)

// Selection is one leg of a bet slip. Odds are frozen at display time;
// a selection never changes once attached to a bet.
type Selection struct {
	MatchID string  `json:"match_id"`
	Market  string  `json:"market"`
	Label   string  `json:"label"`
	Odds    float64 `json:"odds"`
}

// Bet is a placed bet slip. The placement snapshot (seed, round id,
// ratings) is stored with the bet so settlement can regenerate the
// exact outcome set the user priced against.
type Bet struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	RoundID         string        `json:"round_id"`
	Seed            int64         `json:"seed"`
	Selections      []Selection   `json:"selections"`
	Stake           float64       `json:"stake"`
	PotentialPayout float64       `json:"potential_payout"`
	Mode            BetMode       `json:"mode"`
	IsBonusBet      bool          `json:"is_bonus_bet"`
	Status          BetStatus     `json:"status"`
	RatingsSnapshot []Participant `json:"ratings_snapshot"`
	Payout          float64       `json:"payout"`
	PlacedAt        time.Time     `json:"placed_at"`
	SettledAt       *time.Time    `json:"settled_at,omitempty"`
}

// WalletPartition is the balance bucket a credit lands in
type WalletPartition string

const (
	PartitionCash   WalletPartition = "cash"
	PartitionLocked WalletPartition = "locked" // bonus winnings, non-withdrawable
)

// WalletCredit is a single credit against a user's wallet, written to the
// transaction log in the same transaction as the bet status flip.
type WalletCredit struct {
	UserID    string          `json:"user_id"`
	Amount    float64         `json:"amount"`
	Partition WalletPartition `json:"partition"`
	Reference string          `json:"reference"` // ledger reference, usually "settle:<betID>"
}
