package replay

import (
	"sort"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Cursor is the interactive replay variant: a position in the log moved by
// step, seek, and rewind operations. All operations are synchronous and
// non-blocking. Not safe for concurrent mutation from multiple callers.
type Cursor struct {
	rec *tape.Recording
	idx int
}

// NewCursor positions a cursor at the first event.
func NewCursor(rec *tape.Recording) *Cursor {
	return &Cursor{rec: rec}
}

// Index returns the current event index. 0 for an empty log.
func (c *Cursor) Index() int {
	return c.idx
}

// Current returns the event under the cursor.
func (c *Cursor) Current() (tape.RecordedEvent, error) {
	if len(c.rec.Events) == 0 {
		return tape.RecordedEvent{}, &tape.RangeError{Index: c.idx, Length: 0}
	}
	return c.rec.Events[c.idx], nil
}

// Step moves exactly one event forward or backward, clamped to the log
// bounds, and returns the event now under the cursor.
func (c *Cursor) Step(forward bool) (tape.RecordedEvent, error) {
	if len(c.rec.Events) == 0 {
		return tape.RecordedEvent{}, &tape.RangeError{Index: 0, Length: 0}
	}
	if forward {
		if c.idx < len(c.rec.Events)-1 {
			c.idx++
		}
	} else {
		if c.idx > 0 {
			c.idx--
		}
	}
	return c.rec.Events[c.idx], nil
}

// JumpTo seeks to the last event whose timestamp is <= target, by binary
// search. A target before the first event clamps to index 0. Seeking into
// an empty log is a RangeError.
func (c *Cursor) JumpTo(timestamp float64) (tape.RecordedEvent, error) {
	n := len(c.rec.Events)
	if n == 0 {
		return tape.RecordedEvent{}, &tape.RangeError{Index: 0, Length: 0}
	}
	// First index with timestamp > target; the event before it is the hit.
	idx := sort.Search(n, func(i int) bool {
		return c.rec.Events[i].Timestamp > timestamp
	})
	if idx > 0 {
		idx--
	}
	c.idx = idx
	return c.rec.Events[c.idx], nil
}

// JumpToCheckpoint seeks to a named checkpoint via the O(1) checkpoint
// index. Unknown names fail with a ValidationError listing what exists.
func (c *Cursor) JumpToCheckpoint(name string) (tape.RecordedEvent, error) {
	idx, ok := c.rec.CheckpointIndex(name)
	if !ok {
		return tape.RecordedEvent{}, tape.NewValidationError("unknown checkpoint", name, c.rec.CheckpointNames())
	}
	c.idx = idx
	return c.rec.Events[c.idx], nil
}

// Rewind moves back steps events, clamped at 0, and returns the event now
// under the cursor.
func (c *Cursor) Rewind(steps int) (tape.RecordedEvent, error) {
	if len(c.rec.Events) == 0 {
		return tape.RecordedEvent{}, &tape.RangeError{Index: 0, Length: 0}
	}
	if steps < 0 {
		steps = 0
	}
	c.idx -= steps
	if c.idx < 0 {
		c.idx = 0
	}
	return c.rec.Events[c.idx], nil
}

// Progress returns current index / (length-1), 0.0 for an empty or
// single-event log.
func (c *Cursor) Progress() float64 {
	n := len(c.rec.Events)
	if n <= 1 {
		return 0
	}
	return float64(c.idx) / float64(n-1)
}
