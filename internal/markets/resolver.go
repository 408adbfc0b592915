// Package markets resolves bet selections against simulated outcomes.
// Resolution is pure and total: well-formed or not, every selection
// resolves to won or lost without error, so legs placed under older
// market catalogues can always be settled.
package markets

import (
	"strconv"
	"strings"

	"github.com/Baafi-Marcus/qstakebet-sub001/internal/simulation"
	"github.com/Baafi-Marcus/qstakebet-sub001/pkg/models"
)

// Kind is the closed set of market families the resolver understands.
// New market types get a new constant and a case in Resolve; unknown
// names fall through to lost.
type Kind int

const (
	KindUnknown Kind = iota
	KindMatchWinner
	KindTotalPoints
	KindRoundWinner
	KindWinningMargin
	KindHandicap
	KindComeback
	KindPerfectRound
	KindShutout
	KindLeadChanges
	KindFirstRoundBonus
)

// ParseMarket maps a market name to its kind. Round-winner markets
// carry the round number (1-based) in the name: "round_3_winner".
func ParseMarket(name string) (kind Kind, round int) {
	switch name {
	case "match_winner":
		return KindMatchWinner, 0
	case "total_points":
		return KindTotalPoints, 0
	case "winning_margin":
		return KindWinningMargin, 0
	case "handicap":
		return KindHandicap, 0
	case "comeback":
		return KindComeback, 0
	case "perfect_round":
		return KindPerfectRound, 0
	case "shutout":
		return KindShutout, 0
	case "lead_changes":
		return KindLeadChanges, 0
	case "first_round_bonus":
		return KindFirstRoundBonus, 0
	}

	if n, ok := parseRoundWinner(name); ok {
		return KindRoundWinner, n
	}

	return KindUnknown, 0
}

// parseRoundWinner matches "round_<n>_winner"
func parseRoundWinner(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "round_")
	if !ok {
		return 0, false
	}
	numStr, ok := strings.CutSuffix(rest, "_winner")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(numStr)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Resolve decides whether one selection won against one outcome
func Resolve(sel models.Selection, out models.Outcome) bool {
	kind, round := ParseMarket(sel.Market)

	switch kind {
	case KindMatchWinner:
		return resolveMatchWinner(sel.Label, out)
	case KindTotalPoints:
		return resolveTotalPoints(sel.Label, out)
	case KindRoundWinner:
		return resolveRoundWinner(sel.Label, round, out)
	case KindWinningMargin:
		return sel.Label == out.Derived.MarginBucket
	case KindHandicap:
		return resolveHandicap(sel.Label, out)
	case KindComeback:
		return resolveYesNo(sel.Label, out.Derived.Comeback)
	case KindPerfectRound:
		return resolveYesNo(sel.Label, out.Derived.PerfectRound)
	case KindShutout:
		return resolveYesNo(sel.Label, out.Derived.ShutoutRound)
	case KindLeadChanges:
		return resolveYesNo(sel.Label, out.Derived.LeadChanges >= 2)
	case KindFirstRoundBonus:
		return resolveYesNo(sel.Label, out.Derived.FirstRoundWon)
	default:
		// Unknown market: lost, never an error
		return false
	}
}

// resolveMatchWinner compares the picked side to the final result.
// "draw" pays only on a genuinely level total.
func resolveMatchWinner(label string, out models.Outcome) bool {
	if label == simulation.DrawLabel {
		return out.Tie
	}
	if out.Tie {
		return false
	}
	return label == out.WinnerTeamID()
}

// resolveTotalPoints parses "over 112.5" / "under 112.5" and compares
// the combined final score against the line
func resolveTotalPoints(label string, out models.Outcome) bool {
	side, line, ok := parseSideLine(label)
	if !ok {
		return false
	}

	total := float64(out.Derived.TotalPoints)
	switch side {
	case "over":
		return total > line
	case "under":
		return total < line
	default:
		return false
	}
}

// resolveRoundWinner checks the picked team won round n (1-based)
func resolveRoundWinner(label string, n int, out models.Outcome) bool {
	if n < 1 || n > len(out.Derived.RoundWinners) {
		return false
	}
	return label == out.Derived.RoundWinners[n-1]
}

// resolveHandicap parses "<teamID> <spread>" (e.g. "lincoln-high -4.5")
// and compares the picked team's spread-adjusted total to the opponent
func resolveHandicap(label string, out models.Outcome) bool {
	idx := strings.LastIndex(label, " ")
	if idx <= 0 {
		return false
	}

	teamID := label[:idx]
	spread, err := strconv.ParseFloat(label[idx+1:], 64)
	if err != nil {
		return false
	}

	switch teamID {
	case out.HomeTeamID:
		return float64(out.HomeTotal)+spread > float64(out.AwayTotal)
	case out.AwayTeamID:
		return float64(out.AwayTotal)+spread > float64(out.HomeTotal)
	default:
		return false
	}
}

// resolveYesNo settles a boolean prop; labels other than yes/no lose
func resolveYesNo(label string, happened bool) bool {
	switch label {
	case "yes":
		return happened
	case "no":
		return !happened
	default:
		return false
	}
}

// parseSideLine splits "over 112.5" into side and line
func parseSideLine(label string) (side string, line float64, ok bool) {
	parts := strings.SplitN(label, " ", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	line, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, false
	}
	return parts[0], line, true
}
