package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/codetape/internal/tape"
	"github.com/lumenlearn/codetape/internal/testutil"
)

func solved(t *testing.T, player string, duration float64, hints int) *tape.Recording {
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{
		PlayerID: player,
		ID:       "rec-" + player,
		Steps:    5,
		Succeed:  true,
		Hints:    hints,
	})
	rec.Meta.Duration = duration
	return rec
}

// playerOrder projects the player ids of entries in rank order.
func playerOrder(entries []Entry) []string {
	players := make([]string, len(entries))
	for i, e := range entries {
		players[i] = e.PlayerID
	}
	return players
}

func TestLeaderboard_RanksByTimeThenHints(t *testing.T) {
	board := NewLeaderboard("challenge-fizzbuzz")
	require.NoError(t, board.Add(solved(t, "carol", 45, 0)))
	require.NoError(t, board.Add(solved(t, "alice", 30, 2)))
	require.NoError(t, board.Add(solved(t, "bob", 30, 1)))

	top := board.TopN(10)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"bob", "alice", "carol"}, playerOrder(top))
	for i, e := range top {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestLeaderboard_IgnoresFailures(t *testing.T) {
	board := NewLeaderboard("challenge-fizzbuzz")

	failed := testutil.BuildRecording(t, testutil.FixtureOptions{PlayerID: "dave", Steps: 5})
	require.False(t, failed.Meta.Success)
	require.NoError(t, board.Add(failed))

	assert.Zero(t, board.Len())
	_, ok := board.PlayerRank("dave")
	assert.False(t, ok)
}

func TestLeaderboard_RejectsOtherChallenge(t *testing.T) {
	board := NewLeaderboard("challenge-fizzbuzz")
	other := testutil.BuildRecording(t, testutil.FixtureOptions{
		ChallengeID: "challenge-sort", Succeed: true,
	})

	err := board.Add(other)
	require.Error(t, err)
	assert.True(t, tape.IsValidation(err))
}

func TestLeaderboard_TopN(t *testing.T) {
	board := NewLeaderboard("challenge-fizzbuzz")
	require.NoError(t, board.Add(solved(t, "alice", 30, 0)))
	require.NoError(t, board.Add(solved(t, "bob", 40, 0)))

	assert.Len(t, board.TopN(1), 1)
	assert.Equal(t, "alice", board.TopN(1)[0].PlayerID)
	assert.Len(t, board.TopN(5), 2)
	assert.Empty(t, board.TopN(0))
}

func TestLeaderboard_PlayerRankIsBestEntry(t *testing.T) {
	board := NewLeaderboard("challenge-fizzbuzz")
	require.NoError(t, board.Add(solved(t, "alice", 60, 0)))
	require.NoError(t, board.Add(solved(t, "alice", 25, 1)))
	require.NoError(t, board.Add(solved(t, "bob", 40, 0)))

	entry, ok := board.PlayerRank("alice")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Rank)
	assert.Equal(t, 25.0, entry.Time)

	entry, ok = board.PlayerRank("bob")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Rank)

	_, ok = board.PlayerRank("nobody")
	assert.False(t, ok)
}

func TestLeaderboard_EntryCarriesPathAndCreation(t *testing.T) {
	board := NewLeaderboard("challenge-fizzbuzz")
	rec := testutil.BuildRecording(t, testutil.FixtureOptions{
		PlayerID: "alice", Steps: 10, TestRunEvery: 2, Succeed: true,
	})
	require.NoError(t, board.Add(rec))

	entry, ok := board.PlayerRank("alice")
	require.True(t, ok)
	assert.Equal(t, "incremental", entry.Path)
	assert.Equal(t, testutil.Epoch, entry.CreatedAt)
}
