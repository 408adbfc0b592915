package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/cache"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/odds"
	"github.com/Baafi-Marcus/qstakebet-sub001/internal/simulation"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// DeriveOddsRequest asks for a priced odds sheet. Exactly two ratings
// give the full fixture sheet, more give an outright winner book. With
// live=true the scores reprice the match-winner market instead of the
// ratings.
type DeriveOddsRequest struct {
	MarginPct *float64            `json:"margin_pct,omitempty"`
	Ratings   []models.TeamRating `json:"ratings"`

	Live      bool   `json:"live,omitempty"`
	HomeScore int    `json:"home_score,omitempty"`
	AwayScore int    `json:"away_score,omitempty"`

	// Optional cache coordinates; when both are set the sheet is
	// written to the odds cache for the UI to re-read
	RoundID string `json:"round_id,omitempty"`
	MatchID string `json:"match_id,omitempty"`
}

// GenerateOutcomesRequest asks for a deterministic simulation of a
// participant field, mainly for admin inspection and replay checks
type GenerateOutcomesRequest struct {
	Seed         int64                `json:"seed"`
	RoundID      string               `json:"round_id"`
	Participants []models.Participant `json:"participants"`
}

// OddsHandler serves odds derivation and outcome generation
type OddsHandler struct {
	oddsCache     *cache.OddsCache // nil when Redis is not wired
	defaultMargin float64
}

// NewOddsHandler creates a new odds handler. A zero defaultMargin
// selects the package default.
func NewOddsHandler(oddsCache *cache.OddsCache, defaultMargin float64) *OddsHandler {
	if defaultMargin <= 0 {
		defaultMargin = odds.DefaultMarginPct
	}
	return &OddsHandler{oddsCache: oddsCache, defaultMargin: defaultMargin}
}

// DeriveOdds prices a fixture or an outright field
func (h *OddsHandler) DeriveOdds(w http.ResponseWriter, r *http.Request) {
	var req DeriveOddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	margin := h.defaultMargin
	if req.MarginPct != nil {
		margin = *req.MarginPct
	}

	var sheet models.PricedOdds
	var err error

	switch {
	case req.Live:
		if len(req.Ratings) != 2 {
			respondError(w, http.StatusBadRequest, "live derivation needs exactly 2 participants")
			return
		}
		sheet, err = odds.DeriveLive(req.Ratings[0].TeamID, req.Ratings[1].TeamID,
			req.HomeScore, req.AwayScore, margin)

	case len(req.Ratings) == 2:
		sheet, err = odds.DerivePreMatch(req.Ratings[0], req.Ratings[1], margin)

	default:
		sheet, err = odds.DeriveOutright(req.Ratings, margin)
	}

	if err != nil {
		respondEngineError(w, err)
		return
	}

	h.cacheSheet(r.Context(), req, sheet)

	respondJSON(w, http.StatusOK, sheet)
}

// GenerateOutcomes runs the simulator and returns the outcome set
func (h *OddsHandler) GenerateOutcomes(w http.ResponseWriter, r *http.Request) {
	var req GenerateOutcomesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	outcomes, err := simulation.Generate(req.Seed, req.RoundID, req.Participants)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"round_id": req.RoundID,
		"seed":     req.Seed,
		"outcomes": outcomes,
	})
}

// cacheSheet writes the sheet to Redis when cache coordinates came with
// the request; failures are log-only
func (h *OddsHandler) cacheSheet(ctx context.Context, req DeriveOddsRequest, sheet models.PricedOdds) {
	if h.oddsCache == nil || req.RoundID == "" || req.MatchID == "" {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var err error
	if req.Live {
		err = h.oddsCache.WriteLive(cctx, req.RoundID, req.MatchID, sheet)
	} else {
		err = h.oddsCache.WritePreMatch(cctx, req.RoundID, req.MatchID, sheet)
	}
	if err != nil {
		fmt.Printf("[Odds] cache write failed for %s/%s: %v\n", req.RoundID, req.MatchID, err)
	}
}
