package tape

import (
	"time"

	"github.com/google/uuid"
)

// recorder lifecycle states.
type recorderState int

const (
	stateIdle recorderState = iota
	stateRecording
	stateStopped
)

func (s recorderState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRecording:
		return "recording"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Recorder accumulates events for one session and finalizes them into an
// immutable Recording. Driven by a single producer; not safe for concurrent
// writers without external serialization.
type Recorder struct {
	playerID    string
	challengeID string

	now   func() time.Time
	newID func() string

	state     recorderState
	startedAt time.Time
	lastTS    float64

	events      []RecordedEvent
	checkpoints map[string]int
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithNowFunc replaces the wall clock. Tests use this with a manual clock to
// get deterministic relative timestamps.
func WithNowFunc(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDFunc replaces the recording id generator.
func WithIDFunc(newID func() string) RecorderOption {
	return func(r *Recorder) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// NewRecorder creates an idle Recorder for one player/challenge pair.
func NewRecorder(playerID, challengeID string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		playerID:    playerID,
		challengeID: challengeID,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
		checkpoints: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start initializes the relative clock. Calling Start twice is a MisuseError.
func (r *Recorder) Start() error {
	if r.state != stateIdle {
		return &MisuseError{Op: "Start", State: r.state.String()}
	}
	r.state = stateRecording
	r.startedAt = r.now()
	return nil
}

// Record appends a RecordedEvent stamped with the current relative time.
// The timestamp is clamped to be non-decreasing (CP-2); a host clock that
// steps backwards cannot corrupt the log's ordering invariant.
func (r *Recorder) Record(ev Event, snap StateSnapshot) error {
	if r.state != stateRecording {
		return &MisuseError{Op: "Record", State: r.state.String()}
	}
	ts := r.now().Sub(r.startedAt).Seconds()
	if ts < r.lastTS {
		ts = r.lastTS
	}
	r.lastTS = ts
	r.events = append(r.events, RecordedEvent{Timestamp: ts, Event: ev, Snapshot: snap})
	return nil
}

// Checkpoint names the current tail of the log. Duplicate names and empty
// logs are ValidationErrors; a stopped or idle recorder is a MisuseError.
func (r *Recorder) Checkpoint(name string) error {
	if r.state != stateRecording {
		return &MisuseError{Op: "Checkpoint", State: r.state.String()}
	}
	if len(r.events) == 0 {
		return NewValidationError("cannot checkpoint an empty log", name, nil)
	}
	if _, exists := r.checkpoints[name]; exists {
		return NewValidationError("checkpoint already exists", name, r.checkpointNames())
	}
	r.checkpoints[name] = len(r.events) - 1
	return nil
}

// Stop finalizes the log into an immutable Recording. Further Record or
// Checkpoint calls fail. The recorder keeps no reference to the returned
// events, so the Recording cannot be mutated through it.
func (r *Recorder) Stop() (*Recording, error) {
	if r.state != stateRecording {
		return nil, &MisuseError{Op: "Stop", State: r.state.String()}
	}
	r.state = stateStopped

	meta := Metadata{
		ID:          r.newID(),
		PlayerID:    r.playerID,
		ChallengeID: r.challengeID,
		CreatedAt:   r.startedAt.UTC(),
	}
	if n := len(r.events); n > 0 {
		last := r.events[n-1]
		meta.Duration = last.Timestamp
		meta.Success = last.Snapshot.Success()
		meta.FinalCode = last.Snapshot.Code
		meta.FinalDuration = last.Snapshot.SessionDuration
	}

	rec := &Recording{
		SchemaVersion: SchemaVersion,
		Meta:          meta,
		Events:        r.events,
		Checkpoints:   r.checkpoints,
	}
	r.events = nil
	r.checkpoints = nil
	return rec, nil
}

func (r *Recorder) checkpointNames() []string {
	names := make([]string, 0, len(r.checkpoints))
	for name := range r.checkpoints {
		names = append(names, name)
	}
	return names
}
