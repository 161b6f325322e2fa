// Package scoring evaluates tennis set scores and determines match outcomes.
// All functions are pure: they never error and have no side effects, so a
// partially entered scorecard always yields a well-defined (incomplete)
// outcome.
package scoring

import (
	"fmt"
	"strings"
)

// Game counts are entered per set and capped at 7; a set sitting at 6-6 is
// resolved through a tiebreak recorded as 7-6.
const (
	MinGames = 0
	MaxGames = 7
)

// SetsToWin returns the number of sets required to win a match of the given
// format.
func SetsToWin(format MatchFormat) int {
	switch format {
	case FormatProSet:
		return 1
	case FormatBestOfFive:
		return 3
	default:
		return 2
	}
}

// MaxSets returns the largest number of sets a match of the given format can
// contain.
func MaxSets(format MatchFormat) int {
	switch format {
	case FormatProSet:
		return 1
	case FormatBestOfFive:
		return 5
	default:
		return 3
	}
}

// MinSets returns the number of sets a scorecard starts with. Multi-set
// formats always carry at least two set slots so scores can be entered
// before the match is decided.
func MinSets(format MatchFormat) int {
	if format == FormatProSet {
		return 1
	}
	return 2
}

// ValidFormat reports whether s names a known match format.
func ValidFormat(s string) bool {
	switch MatchFormat(s) {
	case FormatBestOfThree, FormatBestOfFive, FormatProSet:
		return true
	}
	return false
}

// IsSetComplete reports whether a game score pair resolves the set: 6 games
// with the opponent at 4 or fewer, or 7 games against 5 (7-5) or 6 (tiebreak).
// Everything else, including 6-5 and 6-6, is still in progress.
func IsSetComplete(p1, p2 int) bool {
	high, low := p1, p2
	if low > high {
		high, low = low, high
	}
	if high < 6 {
		return false
	}
	if high == 6 && low <= 4 {
		return true
	}
	if high == 7 && (low == 5 || low == 6) {
		return true
	}
	return false
}

// NeedsTiebreak reports whether the game score pair requires a recorded
// tiebreak, which is the case only for 7-6 and 6-7.
func NeedsTiebreak(p1, p2 int) bool {
	return (p1 == 7 && p2 == 6) || (p1 == 6 && p2 == 7)
}

// SetWinner returns the side that won the set, or SideNone while the set is
// unresolved. A complete set can never be tied, so no draw case exists.
func SetWinner(set SetScore) Side {
	if !IsSetComplete(set.P1, set.P2) {
		return SideNone
	}
	if set.P1 > set.P2 {
		return SideP1
	}
	return SideP2
}

// ComputeOutcome scans the sets in order and determines the match outcome for
// the given format. The scan stops at the first unresolved set (sets must be
// resolved in order, so a trailing default set cannot mask a decided match)
// and stops as soon as either side reaches the required set count, ignoring
// any sets entered beyond that point. A 7-6 or 6-7 set without a recorded
// tiebreak blocks completion even though its game score alone would count.
func ComputeOutcome(sets []SetScore, format MatchFormat) Outcome {
	var p1Wins, p2Wins int
	target := SetsToWin(format)

	for _, set := range sets {
		winner := SetWinner(set)
		if winner == SideNone {
			return Outcome{Winner: SideNone, Complete: false}
		}
		if NeedsTiebreak(set.P1, set.P2) && set.Tiebreak == nil {
			return Outcome{Winner: SideNone, Complete: false}
		}
		if winner == SideP1 {
			p1Wins++
		} else {
			p2Wins++
		}
		if p1Wins == target {
			return Outcome{Winner: SideP1, Complete: true}
		}
		if p2Wins == target {
			return Outcome{Winner: SideP2, Complete: true}
		}
	}
	return Outcome{Winner: SideNone, Complete: false}
}

// CountedSets returns the prefix of sets that actually decided the match,
// using the same ordered scan as ComputeOutcome. For an undecided match it
// returns the sets unchanged.
func CountedSets(sets []SetScore, format MatchFormat) []SetScore {
	var p1Wins, p2Wins int
	target := SetsToWin(format)

	for i, set := range sets {
		if SetWinner(set) == SideP1 {
			p1Wins++
		} else if SetWinner(set) == SideP2 {
			p2Wins++
		}
		if p1Wins == target || p2Wins == target {
			return sets[:i+1]
		}
	}
	return sets
}

// ClampGames normalizes a game count into the enterable 0..7 range.
// Out-of-range input is silently corrected, never rejected.
func ClampGames(v int) int {
	if v < MinGames {
		return MinGames
	}
	if v > MaxGames {
		return MaxGames
	}
	return v
}

// ClampTiebreakPoints normalizes a tiebreak point count to be non-negative.
func ClampTiebreakPoints(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// FormatScoreline renders the conventional scoreline for a sequence of sets,
// e.g. "6-4, 7-6(4)". Tiebreak sets show the loser's tiebreak points.
func FormatScoreline(sets []SetScore) string {
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		part := fmt.Sprintf("%d-%d", set.P1, set.P2)
		if set.Tiebreak != nil && NeedsTiebreak(set.P1, set.P2) {
			part += fmt.Sprintf("(%d)", min(set.Tiebreak.P1, set.Tiebreak.P2))
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// ParseScoreline parses a scoreline like "6-4 7-6(4)" (sets separated by
// spaces or commas) back into set scores. A tiebreak annotation carries only
// the loser's points, so the winner's side is reconstructed as loser+2 or 7,
// whichever is higher.
func ParseScoreline(s string) ([]SetScore, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty scoreline")
	}

	var sets []SetScore
	for _, field := range fields {
		var set SetScore
		var loserPoints int
		switch {
		case strings.Contains(field, "("):
			if _, err := fmt.Sscanf(field, "%d-%d(%d)", &set.P1, &set.P2, &loserPoints); err != nil {
				return nil, fmt.Errorf("invalid set %q: %w", field, err)
			}
			if !NeedsTiebreak(set.P1, set.P2) {
				return nil, fmt.Errorf("set %q has a tiebreak but is not 7-6", field)
			}
			winnerPoints := max(loserPoints+2, 7)
			if set.P1 > set.P2 {
				set.Tiebreak = &TiebreakScore{P1: winnerPoints, P2: loserPoints}
			} else {
				set.Tiebreak = &TiebreakScore{P1: loserPoints, P2: winnerPoints}
			}
		default:
			if _, err := fmt.Sscanf(field, "%d-%d", &set.P1, &set.P2); err != nil {
				return nil, fmt.Errorf("invalid set %q: %w", field, err)
			}
		}
		if set.P1 < MinGames || set.P1 > MaxGames || set.P2 < MinGames || set.P2 > MaxGames {
			return nil, fmt.Errorf("set %q is out of the 0-7 game range", field)
		}
		sets = append(sets, set)
	}
	return sets, nil
}
