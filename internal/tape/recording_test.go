package tape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKind_Known(t *testing.T) {
	assert.True(t, KindKeystroke.Known())
	assert.True(t, KindTestRun.Known())
	assert.False(t, EventKind("quantum_leap").Known())
}

func TestNewEvent_CopiesPayload(t *testing.T) {
	payload := map[string]any{"key": "a"}
	ev := NewEvent(KindKeystroke, "player-1", payload)

	payload["key"] = "b"
	assert.Equal(t, "a", ev.Payload["key"])
}

func TestSnapshot_Clone(t *testing.T) {
	snap := StateSnapshot{
		Code:             "x = 1\n",
		Mastery:          map[string]int{"loops": 2},
		Emotion:          &EmotionalSample{Dimension: "frustration", Gradient: 0.3},
		MasteredConcepts: []string{"loops"},
		Structure: StructuralSummary{
			Functions: []SymbolInfo{{Name: "main", Line: 1}},
			Parsed:    true,
		},
		Peers: []PeerSummary{{PlayerID: "peer-1", TestsPassed: 1, TestsTotal: 3}},
	}

	clone := snap.Clone()
	clone.Mastery["loops"] = 4
	clone.Emotion.Gradient = 0.9
	clone.MasteredConcepts[0] = "recursion"
	clone.Structure.Functions[0].Name = "helper"
	clone.Peers[0].TestsPassed = 3

	assert.Equal(t, 2, snap.Mastery["loops"])
	assert.Equal(t, 0.3, snap.Emotion.Gradient)
	assert.Equal(t, "loops", snap.MasteredConcepts[0])
	assert.Equal(t, "main", snap.Structure.Functions[0].Name)
	assert.Equal(t, 1, snap.Peers[0].TestsPassed)
}

func TestSnapshot_Success(t *testing.T) {
	assert.False(t, StateSnapshot{}.Success())
	assert.False(t, StateSnapshot{TestsPassed: 2, TestsTotal: 3}.Success())
	assert.True(t, StateSnapshot{TestsPassed: 3, TestsTotal: 3}.Success())
}

func validRecording() *Recording {
	events := []RecordedEvent{
		{Timestamp: 0, Event: NewEvent(KindKeystroke, "p", nil), Snapshot: snapshotAt(0)},
		{Timestamp: 1.5, Event: NewEvent(KindTestRun, "p", nil), Snapshot: snapshotAt(1)},
		{Timestamp: 1.5, Event: NewEvent(KindTestResult, "p", nil), Snapshot: snapshotAt(2)},
	}
	return &Recording{
		SchemaVersion: SchemaVersion,
		Meta:          Metadata{ID: "rec-1", Duration: 1.5},
		Events:        events,
		Checkpoints:   map[string]int{"mid": 1},
	}
}

func TestRecording_Validate(t *testing.T) {
	require.NoError(t, validRecording().Validate())

	t.Run("decreasing timestamp", func(t *testing.T) {
		rec := validRecording()
		rec.Events[2].Timestamp = 1.0
		assert.Error(t, rec.Validate())
	})

	t.Run("negative timestamp", func(t *testing.T) {
		rec := validRecording()
		rec.Events[0].Timestamp = -0.1
		assert.Error(t, rec.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		rec := validRecording()
		rec.Events[1].Event.Kind = "future_kind"
		assert.Error(t, rec.Validate())
	})

	t.Run("checkpoint out of range", func(t *testing.T) {
		rec := validRecording()
		rec.Checkpoints["late"] = 7
		assert.Error(t, rec.Validate())
	})

	t.Run("duration mismatch", func(t *testing.T) {
		rec := validRecording()
		rec.Meta.Duration = 9.9
		assert.Error(t, rec.Validate())
	})
}

func TestRecording_Equal(t *testing.T) {
	a := validRecording()
	b := validRecording()
	assert.True(t, a.Equal(b))

	b.Events[1].Snapshot.Code = "changed"
	assert.False(t, a.Equal(b))

	c := validRecording()
	c.Checkpoints["mid"] = 2
	assert.False(t, a.Equal(c))

	d := validRecording()
	d.Meta.Success = true
	assert.False(t, a.Equal(d))
}

func TestRecording_Counts(t *testing.T) {
	rec := validRecording()
	assert.Equal(t, 1, rec.KeystrokeCount())
	assert.Equal(t, 1, rec.TestRunCount())
}

func TestRecording_CheckpointList_TimestampOrder(t *testing.T) {
	rec := validRecording()
	rec.Checkpoints = map[string]int{"b": 2, "a": 1, "c": 0}

	list := rec.CheckpointList()
	// Events 1 and 2 share timestamp 1.5; names break the tie.
	assert.Equal(t, []Checkpoint{
		{Name: "c", Index: 0},
		{Name: "a", Index: 1},
		{Name: "b", Index: 2},
	}, list)
}
