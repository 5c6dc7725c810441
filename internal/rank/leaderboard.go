package rank

import (
	"sort"
	"time"

	"github.com/lumenlearn/codetape/internal/diff"
	"github.com/lumenlearn/codetape/internal/tape"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank      int       `json:"rank"`
	PlayerID  string    `json:"player_id"`
	Time      float64   `json:"time"`
	HintsUsed int       `json:"hints_used"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Leaderboard ranks successful attempts at one challenge by completion time,
// hint count as tiebreak. Not safe for concurrent use.
type Leaderboard struct {
	challengeID string
	entries     []Entry
}

// NewLeaderboard creates an empty board for one challenge.
func NewLeaderboard(challengeID string) *Leaderboard {
	return &Leaderboard{challengeID: challengeID}
}

// ChallengeID returns the challenge this board ranks.
func (l *Leaderboard) ChallengeID() string {
	return l.challengeID
}

// Len returns the number of ranked entries.
func (l *Leaderboard) Len() int {
	return len(l.entries)
}

// Add ranks one recording. Unsuccessful recordings are ignored; recordings
// of another challenge fail with a ValidationError.
func (l *Leaderboard) Add(rec *tape.Recording) error {
	if rec.Meta.ChallengeID != l.challengeID {
		return tape.NewValidationError(
			"recording is for another challenge",
			rec.Meta.ChallengeID,
			[]string{l.challengeID},
		)
	}
	if !rec.Meta.Success {
		return nil
	}

	l.entries = append(l.entries, Entry{
		PlayerID:  rec.Meta.PlayerID,
		Time:      rec.Meta.Duration,
		HintsUsed: rec.HintsUsed(),
		Path:      diff.DetectPattern(rec),
		CreatedAt: rec.Meta.CreatedAt,
	})
	l.resort()
	return nil
}

// TopN returns the best n entries, fewer if the board is smaller.
func (l *Leaderboard) TopN(n int) []Entry {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

// PlayerRank returns the best entry for a player, false if the player has
// no successful attempt on the board.
func (l *Leaderboard) PlayerRank(playerID string) (Entry, bool) {
	for _, e := range l.entries {
		if e.PlayerID == playerID {
			return e, true
		}
	}
	return Entry{}, false
}

// resort keeps the stable (time asc, hints asc) order and reassigns 1-based
// ranks.
func (l *Leaderboard) resort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		if l.entries[i].Time != l.entries[j].Time {
			return l.entries[i].Time < l.entries[j].Time
		}
		return l.entries[i].HintsUsed < l.entries[j].HintsUsed
	})
	for i := range l.entries {
		l.entries[i].Rank = i + 1
	}
}
