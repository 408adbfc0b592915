// Package ratings adapts team strength ratings from observed round
// results. It runs once per closed round as a batch over every
// participating team.
package ratings

import (
	"context"
	"fmt"
	"time"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/contracts"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

const (
	// DefaultLearningRate is the form bump for winning a fixture.
	// Losses cost half of it: the asymmetry damps runaway deflation
	// when a team strings losses together.
	DefaultLearningRate = 0.05

	// DefaultVolatilityDecay shrinks the volatility index every update,
	// a pure decay toward stability
	DefaultVolatilityDecay = 0.98
)

// Updater applies post-round rating adjustments through the rating store
type Updater struct {
	store           contracts.RatingStore
	learningRate    float64
	volatilityDecay float64
	now             func() time.Time
}

// NewUpdater creates an updater. Zero parameters select the defaults.
func NewUpdater(store contracts.RatingStore, learningRate, volatilityDecay float64) *Updater {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	if volatilityDecay <= 0 || volatilityDecay > 1 {
		volatilityDecay = DefaultVolatilityDecay
	}
	return &Updater{
		store:           store,
		learningRate:    learningRate,
		volatilityDecay: volatilityDecay,
		now:             time.Now,
	}
}

// ApplyRound nudges every participant's rating from the round's
// results. Each team's update is a serialized read-modify-write through
// the store; different teams update independently. A team missing from
// the store is created with defaults before the nudge.
func (u *Updater) ApplyRound(ctx context.Context, outcomes []models.Outcome) error {
	for _, out := range outcomes {
		if err := u.applyResult(ctx, out.WinnerTeamID(), true); err != nil {
			return fmt.Errorf("update winner %s: %w", out.WinnerTeamID(), err)
		}
		if err := u.applyResult(ctx, out.LoserTeamID(), false); err != nil {
			return fmt.Errorf("update loser %s: %w", out.LoserTeamID(), err)
		}
	}
	return nil
}

// applyResult applies one fixture result to one team
func (u *Updater) applyResult(ctx context.Context, teamID string, won bool) error {
	return u.store.UpdateRating(ctx, teamID, func(r *models.TeamRating) error {
		delta := u.learningRate
		if !won {
			delta = -u.learningRate / 2
		}

		r.CurrentForm = clampForm(r.CurrentForm + delta)
		r.VolatilityIndex *= u.volatilityDecay
		r.MatchesPlayed++
		if won {
			r.Wins++
		}
		r.LastUpdated = u.now()
		return nil
	})
}

// clampForm keeps form inside its invariant bounds
func clampForm(form float64) float64 {
	if form < models.MinForm {
		return models.MinForm
	}
	if form > models.MaxForm {
		return models.MaxForm
	}
	return form
}
