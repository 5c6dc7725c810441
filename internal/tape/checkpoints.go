package tape

// CheckpointInfo is one entry in a chronological checkpoint listing.
type CheckpointInfo struct {
	Name      string  `json:"name"`
	Timestamp float64 `json:"timestamp"`
}

// CheckpointManager resolves named checkpoints against one finalized
// Recording. Read-only; safe for concurrent use.
type CheckpointManager struct {
	rec *Recording
}

// NewCheckpointManager wraps a finalized recording.
func NewCheckpointManager(rec *Recording) *CheckpointManager {
	return &CheckpointManager{rec: rec}
}

// Restore returns the exact snapshot captured at the named checkpoint.
// Unknown names fail with a ValidationError listing the available names.
func (m *CheckpointManager) Restore(name string) (StateSnapshot, error) {
	idx, ok := m.rec.CheckpointIndex(name)
	if !ok {
		return StateSnapshot{}, NewValidationError("unknown checkpoint", name, m.rec.CheckpointNames())
	}
	return m.rec.Events[idx].Snapshot, nil
}

// RestoreIndex returns the snapshot at a raw event index.
func (m *CheckpointManager) RestoreIndex(i int) (StateSnapshot, error) {
	if i < 0 || i >= len(m.rec.Events) {
		return StateSnapshot{}, &RangeError{Index: i, Length: len(m.rec.Events)}
	}
	return m.rec.Events[i].Snapshot, nil
}

// List returns all checkpoints sorted ascending by timestamp.
func (m *CheckpointManager) List() []CheckpointInfo {
	cps := m.rec.CheckpointList()
	out := make([]CheckpointInfo, len(cps))
	for i, cp := range cps {
		out[i] = CheckpointInfo{
			Name:      cp.Name,
			Timestamp: m.rec.Events[cp.Index].Timestamp,
		}
	}
	return out
}
