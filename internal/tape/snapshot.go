package tape

// MaxMasteryLevel is the top of the per-concept mastery scale (0-4).
const MaxMasteryLevel = 4

// CursorPos is a position in the code editor.
type CursorPos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// SymbolInfo names one symbol found in the code with its line number.
type SymbolInfo struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// StructuralSummary is the language-neutral code inventory produced by an
// external parser adapter. The core never inspects a syntax tree; this
// summary is the only structural view it sees.
type StructuralSummary struct {
	Functions []SymbolInfo `json:"functions,omitempty"`
	Variables []SymbolInfo `json:"variables,omitempty"`
	Calls     []SymbolInfo `json:"calls,omitempty"`
	// Parsed is false when the adapter could not parse the code. Diffs over
	// an unparsed summary are flagged diagnostic rather than failing.
	Parsed bool `json:"parsed"`
}

// EmotionalSample is one reading from the affect sensor.
type EmotionalSample struct {
	Dimension string  `json:"dimension"`
	Gradient  float64 `json:"gradient"`
}

// PeerSummary is the multiplayer view of one other participant.
type PeerSummary struct {
	PlayerID    string `json:"player_id"`
	ChallengeID string `json:"challenge_id,omitempty"`
	TestsPassed int    `json:"tests_passed"`
	TestsTotal  int    `json:"tests_total"`
}

// StateSnapshot is the complete application state at one instant. Snapshots
// are immutable: a fresh value accompanies every event (CP-1).
type StateSnapshot struct {
	Code        string            `json:"code"`
	Cursor      CursorPos         `json:"cursor"`
	Structure   StructuralSummary `json:"structure"`
	ChallengeID string            `json:"challenge_id"`
	TestsPassed int               `json:"tests_passed"`
	TestsTotal  int               `json:"tests_total"`
	HintsUsed   int               `json:"hints_used"`
	// Mastery maps concept id to level 0-4.
	Mastery map[string]int   `json:"mastery,omitempty"`
	Emotion *EmotionalSample `json:"emotion,omitempty"`
	// SessionDuration is seconds elapsed in the session at capture time.
	SessionDuration     float64       `json:"session_duration"`
	CompletedChallenges []string      `json:"completed_challenges,omitempty"`
	MasteredConcepts    []string      `json:"mastered_concepts,omitempty"`
	Peers               []PeerSummary `json:"peers,omitempty"`
}

// Success reports whether the snapshot shows all tests passing.
func (s StateSnapshot) Success() bool {
	return s.TestsTotal > 0 && s.TestsPassed == s.TestsTotal
}

// Clone returns a deep copy. Used by the compact codec when replaying deltas
// forward so no decoded snapshot aliases another's maps or slices.
func (s StateSnapshot) Clone() StateSnapshot {
	out := s
	out.Structure = s.Structure.Clone()
	if s.Mastery != nil {
		out.Mastery = make(map[string]int, len(s.Mastery))
		for k, v := range s.Mastery {
			out.Mastery[k] = v
		}
	}
	if s.Emotion != nil {
		e := *s.Emotion
		out.Emotion = &e
	}
	out.CompletedChallenges = cloneStrings(s.CompletedChallenges)
	out.MasteredConcepts = cloneStrings(s.MasteredConcepts)
	if s.Peers != nil {
		out.Peers = make([]PeerSummary, len(s.Peers))
		copy(out.Peers, s.Peers)
	}
	return out
}

// Clone returns a deep copy of the summary.
func (s StructuralSummary) Clone() StructuralSummary {
	out := s
	out.Functions = cloneSymbols(s.Functions)
	out.Variables = cloneSymbols(s.Variables)
	out.Calls = cloneSymbols(s.Calls)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneSymbols(in []SymbolInfo) []SymbolInfo {
	if in == nil {
		return nil
	}
	out := make([]SymbolInfo, len(in))
	copy(out, in)
	return out
}
