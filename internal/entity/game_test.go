package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
)

func TestNewGame(t *testing.T) {
	// Given/When: a freshly created game
	game := NewGame("AB12CD", "alice")

	// Then: only the creator is seated, X starts, phase is waiting
	assert.Equal(t, "AB12CD", game.ID)
	assert.Equal(t, "alice", game.PlayerXName)
	assert.Empty(t, game.PlayerOName)
	assert.Equal(t, MarkX, game.Turn)
	assert.Equal(t, MarkX, game.StartingMark)
	assert.Equal(t, StatusWaiting, game.Status)
	assert.Equal(t, Board{}, game.Board)
}

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game status is finished", func(t *testing.T) {
		game := &Game{Status: StatusFinished}
		assert.True(t, game.IsFinished())
	})

	t.Run("IsPlaying returns true when game status is playing", func(t *testing.T) {
		game := &Game{Status: StatusPlaying}
		assert.True(t, game.IsPlaying())
	})

	t.Run("IsWaiting returns true when game status is waiting", func(t *testing.T) {
		game := &Game{Status: StatusWaiting}
		assert.True(t, game.IsWaiting())
	})
}

func TestGame_ConfirmPlayingState(t *testing.T) {
	t.Run("Returns nil when game is playing", func(t *testing.T) {
		// Given: a game in the playing phase
		game := &Game{Status: StatusPlaying}

		// When/Then: it is confirmed playable
		assert.NoError(t, game.ConfirmPlayingState())
	})

	t.Run("Returns ErrGameIsNotStarted when game is waiting", func(t *testing.T) {
		game := &Game{Status: StatusWaiting}
		assert.ErrorIs(t, game.ConfirmPlayingState(), apperror.ErrGameIsNotStarted)
	})

	t.Run("Returns ErrGameFinished when game is finished", func(t *testing.T) {
		game := &Game{Status: StatusFinished}
		assert.ErrorIs(t, game.ConfirmPlayingState(), apperror.ErrGameFinished)
	})

	t.Run("Returns error for unknown game status", func(t *testing.T) {
		game := &Game{Status: "unknown"}

		err := game.ConfirmPlayingState()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown status")
	})
}

func TestGame_Queue(t *testing.T) {
	// Given: a game with distinct queues
	game := &Game{XQueue: []int{0, 1}, OQueue: []int{4}}

	// When/Then: each mark maps to its own queue
	assert.Equal(t, &game.XQueue, game.Queue(MarkX))
	assert.Equal(t, &game.OQueue, game.Queue(MarkO))

	// And: mutating through the pointer reaches the game
	*game.Queue(MarkO) = append(*game.Queue(MarkO), 5)
	assert.Equal(t, []int{4, 5}, game.OQueue)
}

func TestGame_HasTwoPlayers(t *testing.T) {
	assert.False(t, (&Game{PlayerXName: "alice"}).HasTwoPlayers())
	assert.True(t, (&Game{PlayerXName: "alice", PlayerOName: "bob"}).HasTwoPlayers())
}

func TestBoard(t *testing.T) {
	t.Run("MarkCount counts only the given mark", func(t *testing.T) {
		board := Board{MarkX, MarkO, MarkX, EmptyCell, MarkX, EmptyCell, MarkO, EmptyCell, EmptyCell}

		assert.Equal(t, 3, board.MarkCount(MarkX))
		assert.Equal(t, 2, board.MarkCount(MarkO))
	})

	t.Run("IsFull only when every cell is occupied", func(t *testing.T) {
		board := Board{MarkX, MarkO, MarkX, MarkO, MarkX, MarkO, MarkO, MarkX, MarkO}
		assert.True(t, board.IsFull())

		board[8] = EmptyCell
		assert.False(t, board.IsFull())
	})
}

func TestOpponentMark(t *testing.T) {
	assert.Equal(t, MarkO, OpponentMark(MarkX))
	assert.Equal(t, MarkX, OpponentMark(MarkO))
}
