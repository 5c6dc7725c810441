// Package rank decides who did better: head-to-head comparison of two
// recordings of the same challenge, and a leaderboard over many.
package rank

import (
	"github.com/lumenlearn/codetape/internal/diff"
	"github.com/lumenlearn/codetape/internal/tape"
)

// Winner outcomes of a head-to-head comparison.
const (
	WinnerA   = "a"
	WinnerB   = "b"
	WinnerTie = "tie"
)

// tieTolerance is the duration difference, in seconds, below which two
// successful attempts count as equally fast.
const tieTolerance = 0.5

// ComparisonMetrics is the head-to-head result for two attempts at the same
// challenge. Diff fields are a minus b.
type ComparisonMetrics struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	// TimeDiff is in seconds.
	TimeDiff           float64 `json:"time_diff"`
	EventCountDiff     int     `json:"event_count_diff"`
	KeystrokeCountDiff int     `json:"keystroke_count_diff"`
	HintsDiff          int     `json:"hints_diff"`
	// ApproachSimilarity is the 0.0-1.0 ratio of the final code texts.
	ApproachSimilarity float64 `json:"approach_similarity"`
	// Winner is WinnerA, WinnerB, or WinnerTie.
	Winner string `json:"winner"`
}

// Compare scores two attempts at the same challenge against each other.
// Recordings of different challenges fail with a ValidationError.
//
// Winner rule: differing success decides outright; two failures tie; two
// successes compare duration with a half-second tie tolerance.
func Compare(a, b *tape.Recording) (ComparisonMetrics, error) {
	if a.Meta.ChallengeID != b.Meta.ChallengeID {
		return ComparisonMetrics{}, tape.NewValidationError(
			"cannot compare recordings of different challenges",
			b.Meta.ChallengeID,
			[]string{a.Meta.ChallengeID},
		)
	}

	m := ComparisonMetrics{
		PlayerA:            a.Meta.PlayerID,
		PlayerB:            b.Meta.PlayerID,
		TimeDiff:           a.Meta.Duration - b.Meta.Duration,
		EventCountDiff:     len(a.Events) - len(b.Events),
		KeystrokeCountDiff: a.KeystrokeCount() - b.KeystrokeCount(),
		HintsDiff:          a.HintsUsed() - b.HintsUsed(),
		ApproachSimilarity: diff.Similarity(a.Meta.FinalCode, b.Meta.FinalCode),
		Winner:             winner(a, b),
	}
	return m, nil
}

func winner(a, b *tape.Recording) string {
	switch {
	case a.Meta.Success != b.Meta.Success:
		if a.Meta.Success {
			return WinnerA
		}
		return WinnerB
	case !a.Meta.Success:
		return WinnerTie
	case a.Meta.Duration < b.Meta.Duration-tieTolerance:
		return WinnerA
	case b.Meta.Duration < a.Meta.Duration-tieTolerance:
		return WinnerB
	default:
		return WinnerTie
	}
}
