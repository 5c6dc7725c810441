package codec

import "github.com/lumenlearn/codetape/internal/tape"

// snapshotDelta is the changed-field subset between two consecutive
// snapshots. Every field is a pointer so "unchanged" (nil) is distinct from
// "changed to zero value". Applying a delta on top of the previous snapshot
// reproduces the full snapshot exactly.
type snapshotDelta struct {
	Code        *string                 `cbor:"code,omitempty"`
	Cursor      *tape.CursorPos         `cbor:"cursor,omitempty"`
	Structure   *tape.StructuralSummary `cbor:"structure,omitempty"`
	ChallengeID *string                 `cbor:"challenge_id,omitempty"`
	TestsPassed *int                    `cbor:"tests_passed,omitempty"`
	TestsTotal  *int                    `cbor:"tests_total,omitempty"`
	HintsUsed   *int                    `cbor:"hints_used,omitempty"`
	Mastery     *map[string]int         `cbor:"mastery,omitempty"`
	// EmotionChanged distinguishes "emotion unchanged" from "emotion
	// cleared"; Emotion alone cannot, since nil is a legal new value.
	EmotionChanged bool                  `cbor:"emotion_changed,omitempty"`
	Emotion        *tape.EmotionalSample `cbor:"emotion,omitempty"`
	Duration       *float64              `cbor:"session_duration,omitempty"`
	Completed      *[]string             `cbor:"completed_challenges,omitempty"`
	Mastered       *[]string             `cbor:"mastered_concepts,omitempty"`
	Peers          *[]tape.PeerSummary   `cbor:"peers,omitempty"`
}

// computeDelta returns the fields of cur that differ from prev.
func computeDelta(prev, cur tape.StateSnapshot) snapshotDelta {
	var d snapshotDelta
	if cur.Code != prev.Code {
		d.Code = &cur.Code
	}
	if cur.Cursor != prev.Cursor {
		c := cur.Cursor
		d.Cursor = &c
	}
	if !structuresEqual(prev.Structure, cur.Structure) {
		s := cur.Structure.Clone()
		d.Structure = &s
	}
	if cur.ChallengeID != prev.ChallengeID {
		d.ChallengeID = &cur.ChallengeID
	}
	if cur.TestsPassed != prev.TestsPassed {
		d.TestsPassed = &cur.TestsPassed
	}
	if cur.TestsTotal != prev.TestsTotal {
		d.TestsTotal = &cur.TestsTotal
	}
	if cur.HintsUsed != prev.HintsUsed {
		d.HintsUsed = &cur.HintsUsed
	}
	if !masteryEqual(prev.Mastery, cur.Mastery) {
		// A nil container would encode as CBOR null and decode back into a
		// nil pointer, reading as "unchanged". Store empty instead; nil and
		// empty are equivalent in the snapshot model.
		m := cur.Mastery
		if m == nil {
			m = map[string]int{}
		}
		d.Mastery = &m
	}
	if !emotionEqual(prev.Emotion, cur.Emotion) {
		d.EmotionChanged = true
		if cur.Emotion != nil {
			e := *cur.Emotion
			d.Emotion = &e
		}
	}
	if cur.SessionDuration != prev.SessionDuration {
		d.Duration = &cur.SessionDuration
	}
	if !stringSlicesEqual(prev.CompletedChallenges, cur.CompletedChallenges) {
		c := cur.CompletedChallenges
		if c == nil {
			c = []string{}
		}
		d.Completed = &c
	}
	if !stringSlicesEqual(prev.MasteredConcepts, cur.MasteredConcepts) {
		m := cur.MasteredConcepts
		if m == nil {
			m = []string{}
		}
		d.Mastered = &m
	}
	if !peersEqual(prev.Peers, cur.Peers) {
		p := cur.Peers
		if p == nil {
			p = []tape.PeerSummary{}
		}
		d.Peers = &p
	}
	return d
}

// applyDelta merges d onto a copy of prev.
func applyDelta(prev tape.StateSnapshot, d snapshotDelta) tape.StateSnapshot {
	out := prev.Clone()
	if d.Code != nil {
		out.Code = *d.Code
	}
	if d.Cursor != nil {
		out.Cursor = *d.Cursor
	}
	if d.Structure != nil {
		out.Structure = d.Structure.Clone()
	}
	if d.ChallengeID != nil {
		out.ChallengeID = *d.ChallengeID
	}
	if d.TestsPassed != nil {
		out.TestsPassed = *d.TestsPassed
	}
	if d.TestsTotal != nil {
		out.TestsTotal = *d.TestsTotal
	}
	if d.HintsUsed != nil {
		out.HintsUsed = *d.HintsUsed
	}
	if d.Mastery != nil {
		out.Mastery = copyMastery(*d.Mastery)
	}
	if d.EmotionChanged {
		if d.Emotion == nil {
			out.Emotion = nil
		} else {
			e := *d.Emotion
			out.Emotion = &e
		}
	}
	if d.Duration != nil {
		out.SessionDuration = *d.Duration
	}
	if d.Completed != nil {
		out.CompletedChallenges = copyStrings(*d.Completed)
	}
	if d.Mastered != nil {
		out.MasteredConcepts = copyStrings(*d.Mastered)
	}
	if d.Peers != nil {
		out.Peers = copyPeers(*d.Peers)
	}
	return out
}

func structuresEqual(a, b tape.StructuralSummary) bool {
	if a.Parsed != b.Parsed {
		return false
	}
	return symbolSlicesEqual(a.Functions, b.Functions) &&
		symbolSlicesEqual(a.Variables, b.Variables) &&
		symbolSlicesEqual(a.Calls, b.Calls)
}

func symbolSlicesEqual(a, b []tape.SymbolInfo) bool {
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

func masteryEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func emotionEqual(a, b *tape.EmotionalSample) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func stringSlicesEqual(a, b []string) bool {
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

func peersEqual(a, b []tape.PeerSummary) bool {
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

func copyMastery(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyPeers(in []tape.PeerSummary) []tape.PeerSummary {
	if in == nil {
		return nil
	}
	out := make([]tape.PeerSummary, len(in))
	copy(out, in)
	return out
}
