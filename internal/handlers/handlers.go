// Package handlers exposes the engine operations over HTTP for the
// UI/admin layer: odds derivation, outcome generation, settlement,
// round close, and the websocket subscription.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
)

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// respondEngineError maps the engine's sentinel errors onto HTTP codes
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contracts.ErrUnauthorized):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, contracts.ErrBetNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contracts.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// HealthHandler reports service health
type HealthHandler struct {
	clientCount func() int
}

// NewHealthHandler creates the health handler. clientCount may be nil.
func NewHealthHandler(clientCount func() int) *HealthHandler {
	return &HealthHandler{clientCount: clientCount}
}

// HealthCheck returns service health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "healthy",
		"service": "virtuals-engine",
	}
	if h.clientCount != nil {
		health["ws_clients"] = h.clientCount()
	}
	respondJSON(w, http.StatusOK, health)
}
