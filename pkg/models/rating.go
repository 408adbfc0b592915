package models

import "time"

// Form bounds and defaults for team ratings
const (
	MinForm = 0.5
	MaxForm = 2.0

	DefaultForm       = 1.0
	DefaultVolatility = 0.1
)

// TeamRating holds a team's current strength and volatility.
// Owned by the rating updater; everything else reads a snapshot.
type TeamRating struct {
	TeamID          string    `json:"team_id"`
	CurrentForm     float64   `json:"current_form"`     // clamped to [0.5, 2.0]
	VolatilityIndex float64   `json:"volatility_index"` // [0, 1], decays over time
	MatchesPlayed   int       `json:"matches_played"`
	Wins            int       `json:"wins"`
	LastUpdated     time.Time `json:"last_updated"`
}

// NewDefaultRating returns the rating a team gets on first reference
func NewDefaultRating(teamID string) TeamRating {
	return TeamRating{
		TeamID:          teamID,
		CurrentForm:     DefaultForm,
		VolatilityIndex: DefaultVolatility,
	}
}

// Participant pairs a team with the rating snapshot used for a simulation.
// The snapshot is frozen into the bet at placement so settlement can
// regenerate the exact outcomes without touching the live rating store.
type Participant struct {
	TeamID string     `json:"team_id"`
	Rating TeamRating `json:"rating"`
}
