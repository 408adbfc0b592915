package odds

import (
	"fmt"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// OutrightWinnerMarket is the market name for a whole-field winner book
const OutrightWinnerMarket = "outright_winner"

// DeriveOutright prices a winner book across an arbitrary field of
// participants, e.g. a tournament outright. Same method as the
// two-team case: form weights normalized to probabilities, overround
// applied multiplicatively, odds floored at MinOdds.
func DeriveOutright(ratings []models.TeamRating, marginPct float64) (models.PricedOdds, error) {
	if marginPct < 0 {
		return models.PricedOdds{}, fmt.Errorf("%w: negative margin %.4f", contracts.ErrInvalidInput, marginPct)
	}
	if len(ratings) == 0 {
		return models.PricedOdds{}, fmt.Errorf("%w: empty participant list", contracts.ErrInvalidInput)
	}

	total := 0.0
	for _, r := range ratings {
		if r.TeamID == "" {
			return models.PricedOdds{}, fmt.Errorf("%w: participant missing team id", contracts.ErrInvalidInput)
		}
		total += r.CurrentForm
	}

	prices := make([]models.Price, 0, len(ratings))
	for _, r := range ratings {
		p := 1.0 / float64(len(ratings)) // zero total: uniform fallback
		if total > 0 {
			p = r.CurrentForm / total
		}
		prices = append(prices, price(r.TeamID, p, marginPct))
	}

	return models.PricedOdds{
		MarginPct: marginPct,
		Markets:   []models.PricedMarket{{Market: OutrightWinnerMarket, Prices: prices}},
	}, nil
}
