package diff

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/lumenlearn/codetape/internal/tape"
)

func progressPair() (tape.RecordedEvent, tape.RecordedEvent) {
	from := tape.RecordedEvent{
		Timestamp: 10,
		Event:     tape.Event{Kind: tape.KindCheckpointMark, Actor: "player-1"},
		Snapshot: tape.StateSnapshot{
			Code: "a = 1\nb = 2\n",
			Structure: tape.StructuralSummary{
				Functions: []tape.SymbolInfo{{Name: "main", Line: 1}},
				Parsed:    true,
			},
			ChallengeID: "challenge-fizzbuzz",
			TestsPassed: 1,
			TestsTotal:  3,
			Mastery:     map[string]int{"loops": 1},
		},
	}
	to := tape.RecordedEvent{
		Timestamp: 25.5,
		Event:     tape.Event{Kind: tape.KindCheckpointMark, Actor: "player-1"},
		Snapshot: tape.StateSnapshot{
			Code: "a = 1\nc = 3\n",
			Structure: tape.StructuralSummary{
				Functions: []tape.SymbolInfo{{Name: "main", Line: 1}, {Name: "helper", Line: 2}},
				Variables: []tape.SymbolInfo{{Name: "c", Line: 2}},
				Parsed:    true,
			},
			ChallengeID:      "challenge-fizzbuzz",
			TestsPassed:      2,
			TestsTotal:       3,
			HintsUsed:        1,
			Mastery:          map[string]int{"loops": 3, "vars": 1},
			MasteredConcepts: []string{"loops"},
		},
	}
	return from, to
}

func TestDiffStates(t *testing.T) {
	from, to := progressPair()
	d := DiffStates(from, to)

	assert.Equal(t, []string{"c = 3"}, d.Lines.Added)
	assert.Equal(t, []string{"b = 2"}, d.Lines.Removed)
	assert.Equal(t, []string{"helper"}, d.Structure.AddedFunctions)
	assert.Equal(t, 1, d.TestsDelta)
	assert.Equal(t, 1, d.HintsDelta)
	assert.InDelta(t, 15.5, d.Elapsed, 1e-9)
	assert.Equal(t, []string{"loops"}, d.NewlyMastered)
	assert.Equal(t, map[string]int{"loops": 2, "vars": 1}, d.MasteryGains)
}

func TestDiffStates_NoChange(t *testing.T) {
	from, _ := progressPair()
	d := DiffStates(from, from)

	assert.True(t, d.Lines.Empty())
	assert.True(t, d.Structure.Empty())
	assert.Zero(t, d.TestsDelta)
	assert.Zero(t, d.Elapsed)
	assert.Empty(t, d.NewlyMastered)
	assert.Empty(t, d.MasteryGains)
}

func TestStateDiff_RenderGolden(t *testing.T) {
	from, to := progressPair()
	d := DiffStates(from, to)

	g := goldie.New(t)
	g.Assert(t, "state_diff_render", []byte(d.Render()))
}

func TestStateDiff_RenderDeterministic(t *testing.T) {
	from, to := progressPair()
	first := DiffStates(from, to).Render()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, DiffStates(from, to).Render())
	}
}

func TestStateDiff_RenderUnparseable(t *testing.T) {
	from, to := progressPair()
	to.Snapshot.Structure.Parsed = false

	out := DiffStates(from, to).Render()
	assert.Contains(t, out, "structure: unparseable")
	assert.NotContains(t, out, "functions added")
}
