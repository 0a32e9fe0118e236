package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/testing/suite"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a game with ID and status
	game := &entity.Game{
		ID:     "AB12CD",
		Status: entity.StatusWaiting,
	}

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and game is stored
	require.NoError(t, err)
}

func TestGameRepository_Create(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a stored game in progress
	existing := entity.NewGame("AB12CD", "alice")
	existing.Status = entity.StatusPlaying
	require.NoError(t, gameRepo.Create(ctx, existing))

	// When: another create generates the same code
	colliding := entity.NewGame("AB12CD", "mallory")
	err := gameRepo.Create(ctx, colliding)

	// Then: the code is reported taken and the stored record survives
	require.ErrorIs(t, err, apperror.ErrGameIDTaken)

	stored, err := gameRepo.GetByID(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.PlayerXName)
	assert.Equal(t, entity.StatusPlaying, stored.Status)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game with board state and queues
		game := entity.NewGame("AB12CD", "alice")
		game.Board[4] = entity.MarkX
		game.XQueue = []int{4}

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		require.Equal(t, game.ID, retrievedGame.ID)
		require.Equal(t, game.Status, retrievedGame.Status)
		assert.Equal(t, game.Board, retrievedGame.Board)
		assert.Equal(t, game.XQueue, retrievedGame.XQueue)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a stored game
	game := &entity.Game{
		ID:     "AB12CD",
		Status: entity.StatusWaiting,
	}
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// When: DeleteByID is called
	require.NoError(t, gameRepo.DeleteByID(ctx, game.ID))

	// Then: the game is gone
	_, err := gameRepo.GetByID(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
}

func TestGameRepository_PublishesOnWrite(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a subscriber on the game's events channel
	pubsub := st.Storage.Subscribe(ctx, GameEventsChannel("AB12CD"))
	t.Cleanup(func() {
		_ = pubsub.Close()
	})

	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	// When: the record is written
	game := entity.NewGame("AB12CD", "alice")
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// Then: the full record arrives on the channel
	select {
	case msg := <-pubsub.Channel():
		var published entity.Game
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &published))
		assert.Equal(t, game.ID, published.ID)
		assert.Equal(t, entity.StatusWaiting, published.Status)
	case <-time.After(10 * time.Second):
		t.Fatal("no publish received")
	}
}
