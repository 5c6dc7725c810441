package diff

import "github.com/lumenlearn/codetape/internal/tape"

// Solving patterns detected from how often a session ran its tests.
const (
	PatternIncremental = "incremental"
	PatternBigBang     = "big_bang"
	PatternBalanced    = "balanced"
)

// Recommendation values for ApproachDiff. A non-tie recommendation carries
// the preferred recording's id in ApproachDiff.Recommended.
const (
	RecommendTie = "tie"
)

// incrementalRate is the test-run frequency above which a session counts as
// incremental: more than one test run per this many events.
const incrementalRate = 50

// recommendMargin is the minimum speed advantage, in seconds, before one
// approach is preferred over another on time alone.
const recommendMargin = 5.0

// ApproachDiff compares how two whole sessions went about the same problem.
type ApproachDiff struct {
	// TimeDiff is a.Duration - b.Duration in seconds.
	TimeDiff float64 `json:"time_diff"`
	// Similarity is the 0.0-1.0 sequence-match ratio of the final code texts.
	Similarity         float64 `json:"similarity"`
	LineCountDiff      int     `json:"line_count_diff"`
	PatternA           string  `json:"pattern_a"`
	PatternB           string  `json:"pattern_b"`
	EventCountDiff     int     `json:"event_count_diff"`
	KeystrokeCountDiff int     `json:"keystroke_count_diff"`
	// Recommended is the id of the preferred recording, or RecommendTie.
	Recommended string `json:"recommended"`
}

// DetectPattern classifies one session's solving style. A high test-run rate
// wins over a low absolute count, so a short session that tested constantly
// is incremental even with only two runs.
func DetectPattern(rec *tape.Recording) string {
	testRuns := rec.TestRunCount()
	events := len(rec.Events)
	if events > 0 && float64(testRuns)/float64(events) > 1.0/incrementalRate {
		return PatternIncremental
	}
	if testRuns < 3 {
		return PatternBigBang
	}
	return PatternBalanced
}

// CompareApproaches computes the whole-recording comparison of a against b.
func CompareApproaches(a, b *tape.Recording) ApproachDiff {
	d := ApproachDiff{
		TimeDiff:           a.Meta.Duration - b.Meta.Duration,
		Similarity:         Similarity(a.Meta.FinalCode, b.Meta.FinalCode),
		LineCountDiff:      CountLines(a.Meta.FinalCode) - CountLines(b.Meta.FinalCode),
		PatternA:           DetectPattern(a),
		PatternB:           DetectPattern(b),
		EventCountDiff:     len(a.Events) - len(b.Events),
		KeystrokeCountDiff: a.KeystrokeCount() - b.KeystrokeCount(),
	}
	d.Recommended = recommend(a, b)
	return d
}

func recommend(a, b *tape.Recording) string {
	switch {
	case a.Meta.Success && !b.Meta.Success:
		return a.Meta.ID
	case b.Meta.Success && !a.Meta.Success:
		return b.Meta.ID
	case a.Meta.Duration < b.Meta.Duration-recommendMargin:
		return a.Meta.ID
	case b.Meta.Duration < a.Meta.Duration-recommendMargin:
		return b.Meta.ID
	default:
		return RecommendTie
	}
}
