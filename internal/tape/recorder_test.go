package tape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manual clock local to this package to avoid an import cycle with testutil.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRecorder() (*Recorder, *manualClock) {
	clock := &manualClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	rec := NewRecorder("player-1", "challenge-fizzbuzz",
		WithNowFunc(clock.Now),
		WithIDFunc(func() string { return "rec-test" }),
	)
	return rec, clock
}

func snapshotAt(step int) StateSnapshot {
	return StateSnapshot{
		Code:            "print('hello')",
		Cursor:          CursorPos{Line: step, Col: 0},
		ChallengeID:     "challenge-fizzbuzz",
		TestsTotal:      3,
		SessionDuration: float64(step),
	}
}

func TestRecorder_StartTwice(t *testing.T) {
	rec, _ := newTestRecorder()
	require.NoError(t, rec.Start())

	err := rec.Start()
	require.Error(t, err)
	assert.True(t, IsMisuse(err))
	assert.Contains(t, err.Error(), "recording")
}

func TestRecorder_RecordBeforeStart(t *testing.T) {
	rec, _ := newTestRecorder()
	err := rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(0))
	require.Error(t, err)
	assert.True(t, IsMisuse(err))
}

func TestRecorder_RecordAfterStop(t *testing.T) {
	rec, _ := newTestRecorder()
	require.NoError(t, rec.Start())
	require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(0)))

	_, err := rec.Stop()
	require.NoError(t, err)

	err = rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(1))
	require.Error(t, err)
	assert.True(t, IsMisuse(err))

	err = rec.Checkpoint("late")
	require.Error(t, err)
	assert.True(t, IsMisuse(err))

	_, err = rec.Stop()
	require.Error(t, err)
	assert.True(t, IsMisuse(err))
}

func TestRecorder_RelativeTimestamps(t *testing.T) {
	rec, clock := newTestRecorder()
	require.NoError(t, rec.Start())

	for step := 0; step < 5; step++ {
		err := rec.Record(NewEvent(KindKeystroke, "player-1", map[string]any{"key": "x"}), snapshotAt(step))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	recording, err := rec.Stop()
	require.NoError(t, err)

	require.Len(t, recording.Events, 5)
	for i, ev := range recording.Events {
		assert.Equal(t, float64(i), ev.Timestamp)
	}
	assert.Equal(t, 4.0, recording.Duration())
	assert.Equal(t, 4.0, recording.Meta.Duration)
}

func TestRecorder_ClampsBackwardsClock(t *testing.T) {
	rec, clock := newTestRecorder()
	require.NoError(t, rec.Start())

	require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(0)))
	clock.Advance(2 * time.Second)
	require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(1)))

	// Host clock steps backwards; the log must stay non-decreasing.
	clock.Advance(-5 * time.Second)
	require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(2)))

	recording, err := rec.Stop()
	require.NoError(t, err)
	require.NoError(t, recording.Validate())
	assert.Equal(t, 2.0, recording.Events[2].Timestamp)
}

func TestRecorder_CheckpointMidSession(t *testing.T) {
	rec, clock := newTestRecorder()
	require.NoError(t, rec.Start())

	// Five keystroke events at t=0,1,2,3,4 with a checkpoint after the third.
	for step := 0; step < 5; step++ {
		require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(step)))
		if step == 2 {
			require.NoError(t, rec.Checkpoint("mid"))
		}
		clock.Advance(time.Second)
	}

	recording, err := rec.Stop()
	require.NoError(t, err)

	mgr := NewCheckpointManager(recording)
	snap, err := mgr.Restore("mid")
	require.NoError(t, err)
	assert.Equal(t, snapshotAt(2), snap)
	assert.Equal(t, 2.0, recording.Events[recording.Checkpoints["mid"]].Timestamp)
}

func TestRecorder_CheckpointEmptyLog(t *testing.T) {
	rec, _ := newTestRecorder()
	require.NoError(t, rec.Start())

	err := rec.Checkpoint("early")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRecorder_CheckpointDuplicateName(t *testing.T) {
	rec, _ := newTestRecorder()
	require.NoError(t, rec.Start())
	require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(0)))
	require.NoError(t, rec.Checkpoint("mid"))

	err := rec.Checkpoint("mid")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "mid")
}

func TestRecorder_StopDerivesMetadata(t *testing.T) {
	rec, clock := newTestRecorder()
	require.NoError(t, rec.Start())

	require.NoError(t, rec.Record(NewEvent(KindKeystroke, "player-1", nil), snapshotAt(0)))
	clock.Advance(3 * time.Second)

	final := snapshotAt(1)
	final.Code = "print('done')"
	final.TestsPassed = 3
	final.SessionDuration = 3.0
	require.NoError(t, rec.Record(NewEvent(KindTestResult, "player-1", nil), final))

	recording, err := rec.Stop()
	require.NoError(t, err)

	assert.Equal(t, "rec-test", recording.Meta.ID)
	assert.Equal(t, "player-1", recording.Meta.PlayerID)
	assert.Equal(t, "challenge-fizzbuzz", recording.Meta.ChallengeID)
	assert.True(t, recording.Meta.Success)
	assert.Equal(t, "print('done')", recording.Meta.FinalCode)
	assert.Equal(t, 3.0, recording.Meta.FinalDuration)
	assert.Equal(t, SchemaVersion, recording.SchemaVersion)
	require.NoError(t, recording.Validate())
}

func TestRecorder_StopEmptyLog(t *testing.T) {
	rec, _ := newTestRecorder()
	require.NoError(t, rec.Start())

	recording, err := rec.Stop()
	require.NoError(t, err)
	assert.Empty(t, recording.Events)
	assert.Equal(t, 0.0, recording.Duration())
	assert.False(t, recording.Meta.Success)
}
