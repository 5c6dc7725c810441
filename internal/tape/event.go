package tape

// KindSetVersion tracks the event kind vocabulary:
// 1 - Initial set (input, tests, emotion, mastery, presence, meta actions)
const KindSetVersion = 1

// EventKind identifies the category of a recorded action.
type EventKind string

const (
	// Input actions.
	KindKeystroke  EventKind = "keystroke"
	KindCursorMove EventKind = "cursor_move"
	KindCodeChange EventKind = "code_change"

	// Test run outcomes.
	KindTestRun    EventKind = "test_run"
	KindTestResult EventKind = "test_result"

	// Learning signals.
	KindHintRequested   EventKind = "hint_requested"
	KindEmotionalSample EventKind = "emotional_sample"
	KindMasteryChange   EventKind = "mastery_change"
	KindChallengeStart  EventKind = "challenge_start"
	KindChallengeDone   EventKind = "challenge_complete"

	// Multiplayer presence.
	KindPeerJoined   EventKind = "peer_joined"
	KindPeerLeft     EventKind = "peer_left"
	KindPeerProgress EventKind = "peer_progress"

	// Meta actions issued against the session itself.
	KindCheckpointMark EventKind = "checkpoint_mark"
	KindRewind         EventKind = "rewind"
	KindSpeedChange    EventKind = "speed_change"
)

// knownKinds is the closed kind set for KindSetVersion 1.
var knownKinds = map[EventKind]bool{
	KindKeystroke:       true,
	KindCursorMove:      true,
	KindCodeChange:      true,
	KindTestRun:         true,
	KindTestResult:      true,
	KindHintRequested:   true,
	KindEmotionalSample: true,
	KindMasteryChange:   true,
	KindChallengeStart:  true,
	KindChallengeDone:   true,
	KindPeerJoined:      true,
	KindPeerLeft:        true,
	KindPeerProgress:    true,
	KindCheckpointMark:  true,
	KindRewind:          true,
	KindSpeedChange:     true,
}

// Known reports whether k belongs to the closed kind set.
// Decoders use this to reject unknown future kinds (CP-3).
func (k EventKind) Known() bool {
	return knownKinds[k]
}

// KnownKinds returns the closed kind set. The returned slice is a copy.
func KnownKinds() []EventKind {
	kinds := make([]EventKind, 0, len(knownKinds))
	for k := range knownKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// Event is a single discrete action. Treated as immutable once constructed;
// no component modifies Payload after NewEvent returns.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Actor   string         `json:"actor"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewEvent builds an Event with a defensive copy of payload.
func NewEvent(kind EventKind, actor string, payload map[string]any) Event {
	var p map[string]any
	if len(payload) > 0 {
		p = make(map[string]any, len(payload))
		for k, v := range payload {
			p[k] = v
		}
	}
	return Event{Kind: kind, Actor: actor, Payload: p}
}
