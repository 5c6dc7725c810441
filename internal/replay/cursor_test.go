package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lumenlearn/codetape/internal/tape"
	"github.com/lumenlearn/codetape/internal/testutil"
)

func TestCursor_StepClampsAtBounds(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 3})
	c := NewCursor(rec)

	// Backward from the first event stays put.
	ev, err := c.Step(false)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, 0.0, ev.Timestamp)

	for i := 0; i < 10; i++ {
		_, err = c.Step(true)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Index(), "forward clamps at the last event")
}

func TestCursor_EmptyLog(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 3})
	rec.Events = nil
	c := NewCursor(rec)

	_, err := c.Current()
	assert.True(t, tape.IsRange(err))
	_, err = c.Step(true)
	assert.True(t, tape.IsRange(err))
	_, err = c.JumpTo(1.5)
	assert.True(t, tape.IsRange(err))
	_, err = c.Rewind(1)
	assert.True(t, tape.IsRange(err))
	assert.Equal(t, 0.0, c.Progress())
}

func TestCursor_JumpTo(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 5})
	c := NewCursor(rec)

	tests := []struct {
		target  float64
		wantIdx int
	}{
		{-3.0, 0}, // before the log clamps to the first event
		{0.0, 0},
		{0.5, 0},
		{2.0, 2}, // exact hit
		{2.9, 2},
		{4.0, 4},
		{99.0, 4}, // past the end clamps to the last event
	}
	for _, tt := range tests {
		ev, err := c.JumpTo(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.wantIdx, c.Index(), "target %v", tt.target)
		assert.Equal(t, rec.Events[tt.wantIdx].Timestamp, ev.Timestamp)
	}
}

// The binary search must land exactly where a linear scan for "last event at
// or before target" would, for any target and any event spacing.
func TestCursor_JumpToMatchesLinearScan(t *testing.T) {
	base := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 1})

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		gaps := rapid.SliceOfN(rapid.Float64Range(0, 5), n, n).Draw(t, "gaps")

		rec := &tape.Recording{SchemaVersion: base.SchemaVersion, Meta: base.Meta}
		events := make([]tape.RecordedEvent, n)
		ts := 0.0
		for i := range events {
			if i > 0 {
				ts += gaps[i]
			}
			events[i] = base.Events[0]
			events[i].Timestamp = ts
		}
		rec.Events = events

		target := rapid.Float64Range(-2, ts+2).Draw(t, "target")

		linear := 0
		for i, ev := range events {
			if ev.Timestamp <= target {
				linear = i
			}
		}

		c := NewCursor(rec)
		_, err := c.JumpTo(target)
		require.NoError(t, err)
		assert.Equal(t, linear, c.Index())
	})
}

func TestCursor_JumpToCheckpoint(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{
		Steps:       5,
		Checkpoints: map[string]int{"early": 1, "late": 3},
	})
	c := NewCursor(rec)

	ev, err := c.JumpToCheckpoint("late")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Index())
	assert.Equal(t, 3.0, ev.Timestamp)

	_, err = c.JumpToCheckpoint("never-marked")
	require.Error(t, err)
	assert.True(t, tape.IsValidation(err))
	var verr *tape.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"early", "late"}, verr.Available)
}

func TestCursor_Rewind(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 5})
	c := NewCursor(rec)

	_, err := c.JumpTo(4.0)
	require.NoError(t, err)

	ev, err := c.Rewind(2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, 2.0, ev.Timestamp)

	_, err = c.Rewind(100)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Index(), "rewind past the start clamps to 0")
}

func TestCursor_Progress(t *testing.T) {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 5})
	c := NewCursor(rec)

	assert.Equal(t, 0.0, c.Progress())
	_, err := c.JumpTo(2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.Progress(), 1e-9)
	_, err = c.JumpTo(99.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Progress())

	single := testutil.BuildRecording(t, testutil.FixtureOptions{Steps: 1})
	assert.Equal(t, 0.0, NewCursor(single).Progress())
}
