package tape

import (
	"fmt"
	"sort"
	"time"
)

// SchemaVersion tracks the recording schema:
// 1 - Initial schema
const SchemaVersion = 1

// RecordedEvent pairs an action with the full state at the moment it
// happened. Timestamp is non-negative seconds relative to recording start.
type RecordedEvent struct {
	Timestamp float64       `json:"timestamp"`
	Event     Event         `json:"event"`
	Snapshot  StateSnapshot `json:"snapshot"`
}

// Metadata summarizes a finalized recording.
type Metadata struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	ChallengeID string    `json:"challenge_id"`
	CreatedAt   time.Time `json:"created_at"`
	// Duration is the timestamp of the last event, 0 for an empty log.
	Duration float64 `json:"duration"`
	Success  bool    `json:"success"`
	// FinalCode and FinalDuration come from the last snapshot.
	FinalCode     string  `json:"final_code"`
	FinalDuration float64 `json:"final_duration"`
}

// Checkpoint is a named pointer to an event index. The snapshot and
// timestamp it denotes are derived from the log, never stored twice.
type Checkpoint struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Recording is the immutable ordered log of one session. Index is position.
// Safe for unlimited concurrent readers once finalized (CP-1).
type Recording struct {
	SchemaVersion int             `json:"schema_version"`
	Meta          Metadata        `json:"metadata"`
	Events        []RecordedEvent `json:"events"`
	Checkpoints   map[string]int  `json:"checkpoints,omitempty"`
}

// Duration returns the timestamp of the last event, 0 for an empty log.
func (r *Recording) Duration() float64 {
	if len(r.Events) == 0 {
		return 0
	}
	return r.Events[len(r.Events)-1].Timestamp
}

// CheckpointIndex resolves a checkpoint name to its event index.
func (r *Recording) CheckpointIndex(name string) (int, bool) {
	idx, ok := r.Checkpoints[name]
	return idx, ok
}

// CheckpointNames returns all checkpoint names, sorted.
func (r *Recording) CheckpointNames() []string {
	names := make([]string, 0, len(r.Checkpoints))
	for name := range r.Checkpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckpointList returns checkpoints ordered by the timestamp of the event
// they point at, name as tiebreak for identical timestamps.
func (r *Recording) CheckpointList() []Checkpoint {
	list := make([]Checkpoint, 0, len(r.Checkpoints))
	for name, idx := range r.Checkpoints {
		list = append(list, Checkpoint{Name: name, Index: idx})
	}
	sort.Slice(list, func(i, j int) bool {
		ti := r.Events[list[i].Index].Timestamp
		tj := r.Events[list[j].Index].Timestamp
		if ti != tj {
			return ti < tj
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// KeystrokeCount returns the number of keystroke events.
func (r *Recording) KeystrokeCount() int {
	n := 0
	for _, ev := range r.Events {
		if ev.Event.Kind == KindKeystroke {
			n++
		}
	}
	return n
}

// HintsUsed returns the hint count from the final snapshot, 0 for an empty
// log.
func (r *Recording) HintsUsed() int {
	if len(r.Events) == 0 {
		return 0
	}
	return r.Events[len(r.Events)-1].Snapshot.HintsUsed
}

// TestRunCount returns the number of test-run events.
func (r *Recording) TestRunCount() int {
	n := 0
	for _, ev := range r.Events {
		if ev.Event.Kind == KindTestRun {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants every Recording must hold.
// Decoders call this after load and fail the load on any violation.
func (r *Recording) Validate() error {
	prev := 0.0
	for i, ev := range r.Events {
		if ev.Timestamp < 0 {
			return fmt.Errorf("event %d: negative timestamp %v", i, ev.Timestamp)
		}
		if ev.Timestamp < prev {
			return fmt.Errorf("event %d: timestamp %v before previous %v", i, ev.Timestamp, prev)
		}
		if !ev.Event.Kind.Known() {
			return fmt.Errorf("event %d: unknown event kind %q", i, ev.Event.Kind)
		}
		prev = ev.Timestamp
	}
	for name, idx := range r.Checkpoints {
		if idx < 0 || idx >= len(r.Events) {
			return fmt.Errorf("checkpoint %q: index %d out of range [0, %d)", name, idx, len(r.Events))
		}
	}
	if got, want := r.Meta.Duration, r.Duration(); got != want {
		return fmt.Errorf("metadata duration %v does not match last event timestamp %v", got, want)
	}
	return nil
}

// Equal reports semantic equality of two recordings. Used by round-trip
// tests and the replay determinism check; compares values, not encodings.
func (r *Recording) Equal(o *Recording) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.SchemaVersion != o.SchemaVersion || !r.Meta.equal(o.Meta) {
		return false
	}
	if len(r.Events) != len(o.Events) || len(r.Checkpoints) != len(o.Checkpoints) {
		return false
	}
	for i := range r.Events {
		if !r.Events[i].equal(o.Events[i]) {
			return false
		}
	}
	for name, idx := range r.Checkpoints {
		oidx, ok := o.Checkpoints[name]
		if !ok || oidx != idx {
			return false
		}
	}
	return true
}

func (m Metadata) equal(o Metadata) bool {
	return m.ID == o.ID &&
		m.PlayerID == o.PlayerID &&
		m.ChallengeID == o.ChallengeID &&
		m.CreatedAt.Equal(o.CreatedAt) &&
		m.Duration == o.Duration &&
		m.Success == o.Success &&
		m.FinalCode == o.FinalCode &&
		m.FinalDuration == o.FinalDuration
}

func (e RecordedEvent) equal(o RecordedEvent) bool {
	if e.Timestamp != o.Timestamp {
		return false
	}
	if e.Event.Kind != o.Event.Kind || e.Event.Actor != o.Event.Actor {
		return false
	}
	if !payloadEqual(e.Event.Payload, o.Event.Payload) {
		return false
	}
	return e.Snapshot.equal(o.Snapshot)
}

// payloadEqual compares open payload maps over the scalar value domain the
// codecs preserve: strings, bools, and numbers (compared as float64).
func payloadEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !scalarEqual(av, bv) {
			return false
		}
	}
	return true
}

func scalarEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func (s StateSnapshot) equal(o StateSnapshot) bool {
	if s.Code != o.Code || s.Cursor != o.Cursor || s.ChallengeID != o.ChallengeID {
		return false
	}
	if s.TestsPassed != o.TestsPassed || s.TestsTotal != o.TestsTotal || s.HintsUsed != o.HintsUsed {
		return false
	}
	if s.SessionDuration != o.SessionDuration {
		return false
	}
	if !s.Structure.equal(o.Structure) {
		return false
	}
	if len(s.Mastery) != len(o.Mastery) {
		return false
	}
	for k, v := range s.Mastery {
		if ov, ok := o.Mastery[k]; !ok || ov != v {
			return false
		}
	}
	if (s.Emotion == nil) != (o.Emotion == nil) {
		return false
	}
	if s.Emotion != nil && *s.Emotion != *o.Emotion {
		return false
	}
	if !stringsEqual(s.CompletedChallenges, o.CompletedChallenges) {
		return false
	}
	if !stringsEqual(s.MasteredConcepts, o.MasteredConcepts) {
		return false
	}
	if len(s.Peers) != len(o.Peers) {
		return false
	}
	for i := range s.Peers {
		if s.Peers[i] != o.Peers[i] {
			return false
		}
	}
	return true
}

func (s StructuralSummary) equal(o StructuralSummary) bool {
	return s.Parsed == o.Parsed &&
		symbolsEqual(s.Functions, o.Functions) &&
		symbolsEqual(s.Variables, o.Variables) &&
		symbolsEqual(s.Calls, o.Calls)
}

func symbolsEqual(a, b []SymbolInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
