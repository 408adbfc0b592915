package models

// RoundScore is the score delta one fixture produced in a single round
type RoundScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// DerivedMarkets carries the auxiliary market values computed from a
// fixture's full score trace. Everything the market resolver needs is
// here so resolution never has to re-walk the trace.
type DerivedMarkets struct {
	TotalPoints   int      `json:"total_points"`
	MarginBucket  string   `json:"margin_bucket"`          // "1-5", "6-10", "11-15", "16+", "tie"
	RoundWinners  []string `json:"round_winners"`          // team id per round, "draw" for a tied round
	Comeback      bool     `json:"comeback"`               // winner trailed at an earlier cut
	LedThenLost   bool     `json:"led_then_lost"`          // loser led at some cut
	PerfectRound  bool     `json:"perfect_round"`          // winner took every round outright
	ShutoutRound  bool     `json:"shutout_round"`          // some side scored zero in a round
	LeadChanges   int      `json:"lead_changes"`           // leader flips across round cuts
	FirstRoundWon bool     `json:"first_round_winner_won"` // round-1 winner also won the match
}

// Outcome is one simulated fixture: the round-by-round trace, the final
// result, and the derived market values. Outcomes are never persisted;
// they are reproducible on demand from (seed, roundID, ratings snapshot).
type Outcome struct {
	ID          string       `json:"id"`
	Seed        int64        `json:"seed"`
	RoundID     string       `json:"round_id"`
	MatchID     string       `json:"match_id"`
	HomeTeamID  string       `json:"home_team_id"`
	AwayTeamID  string       `json:"away_team_id"`
	RoundScores []RoundScore `json:"round_scores"`
	HomeTotal   int          `json:"home_total"`
	AwayTotal   int          `json:"away_total"`
	WinnerIndex int          `json:"winner_index"` // 0 = home, 1 = away
	Tie         bool         `json:"tie"`          // totals level; winner index is the tiebreak
	Derived     DerivedMarkets `json:"derived"`
}

// WinnerTeamID returns the id of the winning side (tiebreak applied)
func (o *Outcome) WinnerTeamID() string {
	if o.WinnerIndex == 1 {
		return o.AwayTeamID
	}
	return o.HomeTeamID
}

// LoserTeamID returns the id of the losing side (tiebreak applied)
func (o *Outcome) LoserTeamID() string {
	if o.WinnerIndex == 1 {
		return o.HomeTeamID
	}
	return o.AwayTeamID
}

// Margin returns the absolute final score difference
func (o *Outcome) Margin() int {
	d := o.HomeTotal - o.AwayTotal
	if d < 0 {
		return -d
	}
	return d
}
