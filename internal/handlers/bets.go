package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/settlement"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// BetWriter is the store surface bet placement needs on top of the
// BetStore contract
type BetWriter interface {
	contracts.BetStore
	CreateBet(ctx context.Context, bet *models.Bet) error
}

// PlaceBetRequest creates a pending bet with its placement snapshot
type PlaceBetRequest struct {
	RoundID         string               `json:"round_id"`
	Seed            int64                `json:"seed"`
	Selections      []models.Selection   `json:"selections"`
	Stake           float64              `json:"stake"`
	Mode            models.BetMode       `json:"mode"`
	IsBonusBet      bool                 `json:"is_bonus_bet"`
	RatingsSnapshot []models.Participant `json:"ratings_snapshot"`
}

// SettleBetRequest settles one bet against its placement snapshot
type SettleBetRequest struct {
	RoundID string `json:"round_id"`
	Seed    int64  `json:"seed"`
}

// BetHandler serves bet placement, lookup, settlement, and balances
type BetHandler struct {
	bets   BetWriter
	wallet contracts.WalletSink
	engine *settlement.Engine
}

// NewBetHandler creates a new bet handler
func NewBetHandler(bets BetWriter, wallet contracts.WalletSink, engine *settlement.Engine) *BetHandler {
	return &BetHandler{bets: bets, wallet: wallet, engine: engine}
}

// PlaceBet creates a pending bet. The potential payout is computed and
// frozen here; the mode is stored explicitly and never re-derived.
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := callerID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	var req PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.RoundID == "" || len(req.Selections) == 0 {
		respondError(w, http.StatusBadRequest, "missing round_id or selections")
		return
	}
	if req.Stake <= 0 {
		respondError(w, http.StatusBadRequest, "stake must be positive")
		return
	}
	if !req.Mode.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode: %s", req.Mode))
		return
	}
	if len(req.RatingsSnapshot) < 2 {
		respondError(w, http.StatusBadRequest, "missing ratings snapshot")
		return
	}

	bet := &models.Bet{
		ID:              uuid.New().String(),
		UserID:          userID,
		RoundID:         req.RoundID,
		Seed:            req.Seed,
		Selections:      req.Selections,
		Stake:           req.Stake,
		PotentialPayout: settlement.PotentialPayout(req.Stake, req.Selections),
		Mode:            req.Mode,
		IsBonusBet:      req.IsBonusBet,
		Status:          models.StatusPending,
		RatingsSnapshot: req.RatingsSnapshot,
		PlacedAt:        time.Now(),
	}

	if err := h.bets.CreateBet(ctx, bet); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create bet: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, bet)
}

// GetBet returns one bet; only the owner may read it
func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bet, err := h.bets.GetBet(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if callerID(r) != bet.UserID {
		respondError(w, http.StatusForbidden, "caller is not the bet owner")
		return
	}

	respondJSON(w, http.StatusOK, bet)
}

// SettleBet runs the idempotent settlement entry point
func (h *BetHandler) SettleBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req SettleBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	result, err := h.engine.Settle(ctx, settlement.SettleRequest{
		BetID:    chi.URLParam(r, "id"),
		CallerID: callerID(r),
		RoundID:  req.RoundID,
		Seed:     req.Seed,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetBalance returns the caller's cash and locked balances
func (h *BetHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := callerID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return
	}

	cash, locked, err := h.wallet.Balance(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read balance: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"cash":    cash,
		"locked":  locked,
	})
}

// callerID reads the caller identity the edge layer injects
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
