package odds_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/odds"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

func ratingFixture(teamID string, form float64) models.TeamRating {
	return models.TeamRating{TeamID: teamID, CurrentForm: form, VolatilityIndex: 0.1}
}

func TestDerivePreMatch_Probabilities(t *testing.T) {
	tests := []struct {
		name      string
		homeForm  float64
		awayForm  float64
		wantPHome float64 // fair, before margin
	}{
		{"even match", 1.0, 1.0, 0.50},
		{"strong home", 1.5, 0.5, 0.75},
		{"strong away", 0.8, 1.2, 0.40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := odds.DerivePreMatch(
				ratingFixture("home", tt.homeForm),
				ratingFixture("away", tt.awayForm),
				0.15,
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			price := sheet.FindPrice(odds.MatchWinnerMarket, "home")
			if price == nil {
				t.Fatal("home price missing from sheet")
			}

			wantImplied := tt.wantPHome * 1.15
			if wantImplied > 1 {
				wantImplied = 1
			}
			if math.Abs(price.Probability-wantImplied) > 0.001 {
				t.Errorf("implied probability = %f, want %f", price.Probability, wantImplied)
			}
		})
	}
}

func TestDerivePreMatch_OddsFloor(t *testing.T) {
	// Even an overwhelming favorite prices at or above the floor
	sheet, err := odds.DerivePreMatch(
		ratingFixture("home", 2.0),
		ratingFixture("away", 0.5),
		0.15,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, market := range sheet.Markets {
		for _, price := range market.Prices {
			if price.Odds < 1.0 {
				t.Errorf("market %s label %s priced below 1.0: %f",
					market.Market, price.Label, price.Odds)
			}
		}
	}
}

func TestDerivePreMatch_FullSheet(t *testing.T) {
	sheet, err := odds.DerivePreMatch(ratingFixture("home", 1.1), ratingFixture("away", 0.9), 0.15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// match winner + totals + 5 round winners + margin buckets
	if len(sheet.Markets) != 8 {
		t.Errorf("sheet has %d markets, want 8", len(sheet.Markets))
	}

	if sheet.FindPrice(odds.TotalPointsMarket, "over 120.5") == nil {
		t.Error("totals line missing: expected over 120.5 for combined form 2.0")
	}

	if sheet.FindPrice(odds.WinningMarginMarket, "16+") == nil {
		t.Error("margin bucket 16+ missing")
	}
}

func TestDeriveLive(t *testing.T) {
	tests := []struct {
		name      string
		homeScore int
		awayScore int
		wantPHome float64 // fair, before margin
	}{
		{"home dominating", 30, 10, 0.75},
		{"level", 20, 20, 0.50},
		{"nothing scored yet falls back to uniform", 0, 0, 0.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := odds.DeriveLive("home", "away", tt.homeScore, tt.awayScore, 0.10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			price := sheet.FindPrice(odds.MatchWinnerMarket, "home")
			if price == nil {
				t.Fatal("home price missing")
			}

			wantImplied := tt.wantPHome * 1.10
			if math.Abs(price.Probability-wantImplied) > 0.001 {
				t.Errorf("implied probability = %f, want %f", price.Probability, wantImplied)
			}
		})
	}
}

func TestDeriveLive_InvalidInput(t *testing.T) {
	if _, err := odds.DeriveLive("home", "away", -1, 10, 0.1); !errors.Is(err, contracts.ErrInvalidInput) {
		t.Errorf("negative score: got %v, want ErrInvalidInput", err)
	}
	if _, err := odds.DeriveLive("home", "away", 10, 10, -0.1); !errors.Is(err, contracts.ErrInvalidInput) {
		t.Errorf("negative margin: got %v, want ErrInvalidInput", err)
	}
}

func TestDeriveOutright(t *testing.T) {
	field := []models.TeamRating{
		ratingFixture("a", 1.0),
		ratingFixture("b", 1.0),
		ratingFixture("c", 2.0),
	}

	sheet, err := odds.DeriveOutright(field, 0.15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sheet.Markets) != 1 || len(sheet.Markets[0].Prices) != 3 {
		t.Fatal("outright book has wrong shape")
	}

	// c carries half the field's form
	pc := sheet.FindPrice(odds.OutrightWinnerMarket, "c")
	if math.Abs(pc.Probability-0.5*1.15) > 0.001 {
		t.Errorf("favorite implied probability = %f, want %f", pc.Probability, 0.5*1.15)
	}

	for _, price := range sheet.Markets[0].Prices {
		if price.Odds < 1.0 {
			t.Errorf("odds below 1.0 for %s: %f", price.Label, price.Odds)
		}
	}
}

func TestDeriveOutright_InvalidInput(t *testing.T) {
	if _, err := odds.DeriveOutright(nil, 0.15); !errors.Is(err, contracts.ErrInvalidInput) {
		t.Errorf("empty field: got %v, want ErrInvalidInput", err)
	}
}
