// Package tape defines the session recording data model and the components
// that produce recordings: the Recorder, its monotonic relative clock, and
// the CheckpointManager.
//
// The model is an append-only log with:
//   - Events: discrete actions with a closed, versioned kind set
//   - Snapshots: complete application state at each event
//   - Checkpoints: named pointers into the log
//
// # Critical Patterns
//
// CP-1: Immutable Log
//   - A finalized Recording is never mutated; every derived operation
//     (replay, diff, checkpoint restore) reads without writing.
//   - Snapshots are fresh values per event, never updated in place.
//
// CP-2: Relative Monotonic Time
//   - Event timestamps are seconds relative to recording start and are
//     non-decreasing, enforced at record time.
//
// CP-3: Closed Kind Set
//   - EventKind is a closed set versioned by KindSetVersion. Decoders
//     reject unknown kinds rather than guessing.
//
// The Recorder is driven by a single producer (the live session loop) and is
// not safe for concurrent writers. A finalized Recording is safe for
// unlimited concurrent readers.
package tape
