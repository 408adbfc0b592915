package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/settlement"
)

// CloseRoundRequest closes a round: the published seed and the team
// field the round was scheduled with
type CloseRoundRequest struct {
	Seed    int64    `json:"seed"`
	TeamIDs []string `json:"team_ids"`
}

// RoundHandler serves the round-close batch
type RoundHandler struct {
	closer *settlement.RoundCloser
}

// NewRoundHandler creates a new round handler
func NewRoundHandler(closer *settlement.RoundCloser) *RoundHandler {
	return &RoundHandler{closer: closer}
}

// CloseRound settles the round's pending bets, applies rating updates,
// and fans the results out
func (h *RoundHandler) CloseRound(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var req CloseRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	result, err := h.closer.CloseRound(ctx, chi.URLParam(r, "id"), req.Seed, req.TeamIDs)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
