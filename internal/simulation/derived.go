package simulation

import (
	"fmt"

	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// DrawLabel marks a tied round in the per-round winner list
const DrawLabel = "draw"

// deriveMarkets walks the finished trace once and extracts every
// auxiliary market value settlement can ask about
func deriveMarkets(out *models.Outcome) models.DerivedMarkets {
	d := models.DerivedMarkets{
		TotalPoints:  out.HomeTotal + out.AwayTotal,
		MarginBucket: marginBucket(out),
		RoundWinners: make([]string, 0, len(out.RoundScores)),
	}

	winnerIsHome := out.WinnerIndex == 0

	var homeCum, awayCum int
	// 0 = level, 1 = home leads, -1 = away leads
	prevLeader := 0
	winnerTookEveryRound := true

	for i, rs := range out.RoundScores {
		switch {
		case rs.Home > rs.Away:
			d.RoundWinners = append(d.RoundWinners, out.HomeTeamID)
		case rs.Away > rs.Home:
			d.RoundWinners = append(d.RoundWinners, out.AwayTeamID)
		default:
			d.RoundWinners = append(d.RoundWinners, DrawLabel)
		}

		if rs.Home == 0 || rs.Away == 0 {
			d.ShutoutRound = true
		}

		winnerDelta, loserDelta := rs.Home, rs.Away
		if !winnerIsHome {
			winnerDelta, loserDelta = rs.Away, rs.Home
		}
		if winnerDelta <= loserDelta {
			winnerTookEveryRound = false
		}

		homeCum += rs.Home
		awayCum += rs.Away

		leader := 0
		if homeCum > awayCum {
			leader = 1
		} else if awayCum > homeCum {
			leader = -1
		}

		if leader != 0 && prevLeader != 0 && leader != prevLeader {
			d.LeadChanges++
		}
		if leader != 0 {
			prevLeader = leader
		}

		// Cuts before the final round tell us who was ahead mid-match.
		// The eventual winner trailing at a cut means the loser led and
		// lost it, which is the comeback prop from both sides.
		if i < len(out.RoundScores)-1 && leader != 0 {
			winnerLeads := (leader == 1) == winnerIsHome
			if !winnerLeads {
				d.Comeback = true
				d.LedThenLost = true
			}
		}
	}

	d.PerfectRound = winnerTookEveryRound && !out.Tie

	if len(d.RoundWinners) > 0 {
		first := d.RoundWinners[0]
		d.FirstRoundWon = first != DrawLabel && first == out.WinnerTeamID()
	}

	return d
}

// marginBucket buckets the final score difference
func marginBucket(out *models.Outcome) string {
	m := out.Margin()
	switch {
	case m == 0:
		return "tie"
	case m <= 5:
		return "1-5"
	case m <= 10:
		return "6-10"
	case m <= 15:
		return "11-15"
	default:
		return "16+"
	}
}

// ExpectedTotal is the mean combined score for a fixture given the two
// rating snapshots. The odds deriver uses it to set the standard totals
// line.
func ExpectedTotal(home, away models.TeamRating) float64 {
	return NumRounds * BaseRoundScore * (home.CurrentForm + away.CurrentForm)
}

// StandardTotalsLine places the over/under line at the half-point
// nearest the expected total, so totals never push
func StandardTotalsLine(home, away models.TeamRating) float64 {
	expected := ExpectedTotal(home, away)
	return float64(int(expected)) + 0.5
}

// RoundWinnerMarket returns the market name for the round-N winner
// market, N counted from 1
func RoundWinnerMarket(n int) string {
	return fmt.Sprintf("round_%d_winner", n)
}
