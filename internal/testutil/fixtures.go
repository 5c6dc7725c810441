package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Epoch is the fixed session start used by all fixtures, so golden files and
// recorded metadata stay byte-stable across runs.
var Epoch = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// FixtureOptions shapes the session produced by BuildRecording.
type FixtureOptions struct {
	PlayerID    string
	ChallengeID string
	ID          string
	// Steps is the number of keystroke/code-change events, one per second.
	Steps int
	// TestRunEvery inserts a test_run event after every N steps (0 = none).
	TestRunEvery int
	// Succeed makes the final snapshot show all tests passing.
	Succeed bool
	// Hints is the hint count reported by the final snapshot.
	Hints int
	// Checkpoints maps names to the step after which they are created.
	Checkpoints map[string]int
}

// BuildRecording drives a real Recorder over a ManualClock and returns the
// finalized recording. Each step advances the clock by one second, appends a
// growing line of code, and moves the cursor.
func BuildRecording(t *testing.T, opts FixtureOptions) *tape.Recording {
	t.Helper()

	if opts.PlayerID == "" {
		opts.PlayerID = "player-1"
	}
	if opts.ChallengeID == "" {
		opts.ChallengeID = "challenge-fizzbuzz"
	}
	if opts.ID == "" {
		opts.ID = "rec-fixture-0001"
	}
	if opts.Steps == 0 {
		opts.Steps = 5
	}

	clock := NewManualClock(Epoch)
	rec := tape.NewRecorder(opts.PlayerID, opts.ChallengeID,
		tape.WithNowFunc(clock.Now),
		tape.WithIDFunc(func() string { return opts.ID }),
	)
	require.NoError(t, rec.Start())

	code := ""
	testsTotal := 3
	testsPassed := 0
	for step := 0; step < opts.Steps; step++ {
		code += fmt.Sprintf("line %d\n", step)
		snap := tape.StateSnapshot{
			Code:            code,
			Cursor:          tape.CursorPos{Line: step, Col: 6},
			Structure:       tape.StructuralSummary{Parsed: true},
			ChallengeID:     opts.ChallengeID,
			TestsPassed:     testsPassed,
			TestsTotal:      testsTotal,
			HintsUsed:       opts.Hints,
			Mastery:         map[string]int{"loops": 1 + step%2},
			SessionDuration: float64(step),
		}
		require.NoError(t, rec.Record(
			tape.NewEvent(tape.KindKeystroke, opts.PlayerID, map[string]any{"key": "enter"}),
			snap,
		))

		if opts.TestRunEvery > 0 && (step+1)%opts.TestRunEvery == 0 {
			clock.Advance(100 * time.Millisecond)
			testsPassed = min(testsPassed+1, testsTotal)
			runSnap := snap.Clone()
			runSnap.TestsPassed = testsPassed
			require.NoError(t, rec.Record(
				tape.NewEvent(tape.KindTestRun, opts.PlayerID, nil),
				runSnap,
			))
		}

		for name, after := range opts.Checkpoints {
			if after == step {
				require.NoError(t, rec.Checkpoint(name))
			}
		}
		clock.Advance(time.Second)
	}

	if opts.Succeed {
		clock.Advance(500 * time.Millisecond)
		final := tape.StateSnapshot{
			Code:                code,
			Cursor:              tape.CursorPos{Line: opts.Steps - 1, Col: 6},
			Structure:           tape.StructuralSummary{Parsed: true},
			ChallengeID:         opts.ChallengeID,
			TestsPassed:         testsTotal,
			TestsTotal:          testsTotal,
			HintsUsed:           opts.Hints,
			Mastery:             map[string]int{"loops": 2},
			SessionDuration:     float64(opts.Steps),
			CompletedChallenges: []string{opts.ChallengeID},
		}
		require.NoError(t, rec.Record(
			tape.NewEvent(tape.KindTestResult, opts.PlayerID, map[string]any{"passed": true}),
			final,
		))
	}

	recording, err := rec.Stop()
	require.NoError(t, err)
	return recording
}
