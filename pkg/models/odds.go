package models

// Price is one priced selection inside a market
type Price struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"` // margin-adjusted implied probability
	Odds        float64 `json:"odds"`        // decimal odds, always >= 1.0
}

// PricedMarket is a market with its full set of priced selections
type PricedMarket struct {
	Market string  `json:"market"`
	Prices []Price `json:"prices"`
}

// PricedOdds is the displayable odds sheet for one fixture or one
// participant field, produced by the odds deriver.
type PricedOdds struct {
	MarginPct float64        `json:"margin_pct"`
	Markets   []PricedMarket `json:"markets"`
}

// FindPrice looks up a price by market and label. Returns nil when the
// market/label pair is not on the sheet.
func (p *PricedOdds) FindPrice(market, label string) *Price {
	for i := range p.Markets {
		if p.Markets[i].Market != market {
			continue
		}
		for j := range p.Markets[i].Prices {
			if p.Markets[i].Prices[j].Label == label {
				return &p.Markets[i].Prices[j]
			}
		}
	}
	return nil
}
