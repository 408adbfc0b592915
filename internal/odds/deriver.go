// Package odds converts rating snapshots (pre-match) or in-progress
// score traces (live) into margin-adjusted win probabilities and priced
// decimal odds.
package odds

import (
	"fmt"
	"math"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/simulation"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

const (
	// DefaultMarginPct is the bookmaker overround applied when the
	// caller does not pick one
	DefaultMarginPct = 0.15

	// MinOdds is the floor for any priced selection
	MinOdds = 1.01

	// roundWinnerFlatten pulls per-round winner probabilities toward a
	// coin flip: a strong team is less dominant over one round than
	// over five
	roundWinnerFlatten = 0.6
)

// MatchWinnerMarket is the headline market name
const MatchWinnerMarket = "match_winner"

// TotalPointsMarket is the combined-score over/under market name
const TotalPointsMarket = "total_points"

// WinningMarginMarket is the margin bucket market name
const WinningMarginMarket = "winning_margin"

// DerivePreMatch prices a two-team fixture from rating snapshots.
//
// Method:
//  1. Weight each team by currentForm and normalize to win
//     probabilities: p_i = form_i / sum(form)
//  2. Apply the overround multiplicatively: p'_i = p_i * (1 + margin),
//     so the book's implied probabilities sum to 1 + margin
//  3. Price decimal odds at 1 / p'_i, floored at MinOdds
//
// The same probabilities seed the auxiliary markets on the sheet.
func DerivePreMatch(home, away models.TeamRating, marginPct float64) (models.PricedOdds, error) {
	if marginPct < 0 {
		return models.PricedOdds{}, fmt.Errorf("%w: negative margin %.4f", contracts.ErrInvalidInput, marginPct)
	}
	if home.TeamID == "" || away.TeamID == "" {
		return models.PricedOdds{}, fmt.Errorf("%w: participant missing team id", contracts.ErrInvalidInput)
	}

	pHome, pAway := winProbabilities(home.CurrentForm, away.CurrentForm)

	sheet := models.PricedOdds{MarginPct: marginPct}
	sheet.Markets = append(sheet.Markets, models.PricedMarket{
		Market: MatchWinnerMarket,
		Prices: []models.Price{
			price(home.TeamID, pHome, marginPct),
			price(away.TeamID, pAway, marginPct),
		},
	})
	sheet.Markets = append(sheet.Markets, totalsMarket(home, away, marginPct))
	sheet.Markets = append(sheet.Markets, roundWinnerMarkets(home.TeamID, away.TeamID, pHome, pAway, marginPct)...)
	sheet.Markets = append(sheet.Markets, marginMarket(pHome, marginPct))

	return sheet, nil
}

// DeriveLive reprices the match-winner market mid-match. Ratings go
// stale once play starts, so the weights are the accumulated score
// shares instead: p_i = score_i / sum(scores). A zero total (nothing
// scored yet) falls back to a uniform distribution.
func DeriveLive(homeTeamID, awayTeamID string, homeScore, awayScore int, marginPct float64) (models.PricedOdds, error) {
	if marginPct < 0 {
		return models.PricedOdds{}, fmt.Errorf("%w: negative margin %.4f", contracts.ErrInvalidInput, marginPct)
	}
	if homeScore < 0 || awayScore < 0 {
		return models.PricedOdds{}, fmt.Errorf("%w: negative score", contracts.ErrInvalidInput)
	}

	pHome, pAway := winProbabilities(float64(homeScore), float64(awayScore))

	return models.PricedOdds{
		MarginPct: marginPct,
		Markets: []models.PricedMarket{{
			Market: MatchWinnerMarket,
			Prices: []models.Price{
				price(homeTeamID, pHome, marginPct),
				price(awayTeamID, pAway, marginPct),
			},
		}},
	}, nil
}

// winProbabilities normalizes two non-negative weights into
// probabilities summing to 1. A zero total means no information either
// way, so both sides get 0.5.
func winProbabilities(wHome, wAway float64) (pHome, pAway float64) {
	total := wHome + wAway
	if total <= 0 {
		return 0.5, 0.5
	}
	return wHome / total, wAway / total
}

// price turns a fair probability into a margin-adjusted priced selection
func price(label string, fairProb, marginPct float64) models.Price {
	implied := fairProb * (1 + marginPct)
	if implied > 1 {
		implied = 1
	}

	odds := MinOdds
	if implied > 0 {
		odds = math.Max(MinOdds, 1/implied)
	}

	return models.Price{
		Label:       label,
		Probability: implied,
		Odds:        round2(odds),
	}
}

// totalsMarket prices over/under at the standard line. Both sides are
// fair coin flips against a line centred on the expected total.
func totalsMarket(home, away models.TeamRating, marginPct float64) models.PricedMarket {
	line := simulation.StandardTotalsLine(home, away)
	return models.PricedMarket{
		Market: TotalPointsMarket,
		Prices: []models.Price{
			price(fmt.Sprintf("over %.1f", line), 0.5, marginPct),
			price(fmt.Sprintf("under %.1f", line), 0.5, marginPct),
		},
	}
}

// roundWinnerMarkets prices the winner of each individual round,
// flattening the match-winner probabilities toward 0.5
func roundWinnerMarkets(homeID, awayID string, pHome, pAway, marginPct float64) []models.PricedMarket {
	rHome := 0.5 + (pHome-0.5)*roundWinnerFlatten
	rAway := 0.5 + (pAway-0.5)*roundWinnerFlatten

	markets := make([]models.PricedMarket, 0, simulation.NumRounds)
	for n := 1; n <= simulation.NumRounds; n++ {
		markets = append(markets, models.PricedMarket{
			Market: simulation.RoundWinnerMarket(n),
			Prices: []models.Price{
				price(homeID, rHome, marginPct),
				price(awayID, rAway, marginPct),
			},
		})
	}
	return markets
}

// marginMarket prices the winning-margin buckets. Bucket shares are a
// fixed shape skewed by how lopsided the match-winner probability is.
func marginMarket(pHome, marginPct float64) models.PricedMarket {
	// How one-sided the fixture looks, 0 = even, 0.5 = maximal
	skew := math.Abs(pHome - 0.5)

	buckets := []struct {
		label string
		base  float64
	}{
		{"1-5", 0.34},
		{"6-10", 0.28},
		{"11-15", 0.18},
		{"16+", 0.14},
		{"tie", 0.06},
	}

	prices := make([]models.Price, 0, len(buckets))
	for _, b := range buckets {
		p := b.base
		// Lopsided fixtures shift mass from tight finishes to blowouts
		switch b.label {
		case "1-5", "tie":
			p *= 1 - skew
		case "16+":
			p *= 1 + 2*skew
		}
		prices = append(prices, price(b.label, p, marginPct))
	}

	return models.PricedMarket{Market: WinningMarginMarket, Prices: prices}
}

// round2 rounds to two decimal places for display odds
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
