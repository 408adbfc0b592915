package settlement

import (
	"math"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// DefaultMaxGamePayout caps one match's contribution to a single-mode
// payout. Several legs on the same match are highly correlated; the cap
// bounds exposure when they all land at high odds.
const DefaultMaxGamePayout = 10000.00

// GrossWinnings computes a bet's gross winnings from per-leg results,
// before any bonus deduction.
//
// Multi: all-or-nothing. Every leg must win; the payout is the
// potential payout frozen at placement (stake x product of leg odds).
// One losing leg zeroes the whole slip.
//
// Single: each leg is an independent sub-bet of stake/legCount.
// Winnings are summed per underlying match, each match's sum is capped
// at maxGamePayout, and the capped contributions are summed.
func GrossWinnings(bet *models.Bet, legWon []bool, maxGamePayout float64) float64 {
	switch bet.Mode {
	case models.ModeMulti:
		for _, won := range legWon {
			if !won {
				return 0
			}
		}
		return roundCents(bet.PotentialPayout)

	case models.ModeSingle:
		legStake := bet.Stake / float64(len(bet.Selections))

		perMatch := make(map[string]float64)
		for i, sel := range bet.Selections {
			if !legWon[i] {
				continue
			}
			perMatch[sel.MatchID] += legStake * sel.Odds
		}

		total := 0.0
		for _, winnings := range perMatch {
			total += math.Min(winnings, maxGamePayout)
		}
		return roundCents(total)

	default:
		return 0
	}
}

// CreditedPayout applies the bonus-bet rule to gross winnings. A
// bonus-funded bet never returns the stake itself, only net profit,
// and never goes negative.
func CreditedPayout(bet *models.Bet, gross float64) (amount float64, partition models.WalletPartition) {
	if bet.IsBonusBet {
		return roundCents(math.Max(0, gross-bet.Stake)), models.PartitionLocked
	}
	return roundCents(gross), models.PartitionCash
}

// PotentialPayout is the frozen ceiling computed at placement:
// stake x product of leg odds
func PotentialPayout(stake float64, selections []models.Selection) float64 {
	payout := stake
	for _, sel := range selections {
		payout *= sel.Odds
	}
	return roundCents(payout)
}

// roundCents rounds money to two decimal places. Applied at every
// credit boundary so float drift never reaches the ledger.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
