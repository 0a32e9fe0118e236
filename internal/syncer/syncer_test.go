package syncer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/internal/repository"
	"github.com/gridglow/vanishttt-backend/testing/suite"
)

const (
	testPollInterval   = 200 * time.Millisecond
	testReconnectDelay = 100 * time.Millisecond

	deliveryTimeout = 10 * time.Second
	silenceWindow   = 1 * time.Second
)

func awaitUpdate(t *testing.T, sub *Subscription) *entity.Game {
	t.Helper()

	select {
	case game, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return game
	case <-time.After(deliveryTimeout):
		t.Fatal("no update delivered")
		return nil
	}
}

func TestSyncer_DeliversWrites(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := repository.NewGameRepository(st.Storage)
	gameSyncer := New(st.Logger, st.Storage, gameRepo, testPollInterval, testReconnectDelay)

	// Given: a stored game and a subscription on it
	game := entity.NewGame("AB12CD", "alice")
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	sub := gameSyncer.Subscribe(ctx, game.ID)
	t.Cleanup(sub.Unsubscribe)

	// Then: the current record arrives (push or poll, whichever first)
	first := awaitUpdate(t, sub)
	assert.Equal(t, game.ID, first.ID)
	assert.Equal(t, entity.StatusWaiting, first.Status)

	// When: the record changes
	game.PlayerOName = "bob"
	game.Status = entity.StatusPlaying
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// Then: the new snapshot is delivered
	second := awaitUpdate(t, sub)
	assert.Equal(t, entity.StatusPlaying, second.Status)
}

func TestSyncer_DropsIdenticalUpdates(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := repository.NewGameRepository(st.Storage)
	gameSyncer := New(st.Logger, st.Storage, gameRepo, testPollInterval, testReconnectDelay)

	// Given: a delivered snapshot
	game := entity.NewGame("AB12CD", "alice")
	game.Status = entity.StatusPlaying
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	sub := gameSyncer.Subscribe(ctx, game.ID)
	t.Cleanup(sub.Unsubscribe)

	awaitUpdate(t, sub)

	// When: the same content is written again (only the timestamp moves)
	game.UpdatedAt = game.UpdatedAt.Add(time.Second)
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// Then: no redundant redraw is triggered
	select {
	case update := <-sub.Updates():
		t.Fatalf("unexpected update delivered: %+v", update)
	case <-time.After(silenceWindow):
	}

	// And: a real change still comes through
	game.Board[0] = entity.MarkX
	game.Turn = entity.MarkO
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	update := awaitUpdate(t, sub)
	assert.Equal(t, entity.MarkX, update.Board[0])
}

func TestSyncer_PollsWithoutPush(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := repository.NewGameRepository(st.Storage)
	gameSyncer := New(st.Logger, st.Storage, gameRepo, testPollInterval, testReconnectDelay)

	// Given: a record written directly, with no publish on the channel
	game := entity.NewGame("AB12CD", "alice")
	raw, err := json.Marshal(game)
	require.NoError(t, err)
	require.NoError(t, st.Storage.Set(ctx, "game:"+game.ID, raw, 0).Err())

	// When: subscribing
	sub := gameSyncer.Subscribe(ctx, game.ID)
	t.Cleanup(sub.Unsubscribe)

	// Then: the polling fallback still delivers the record
	update := awaitUpdate(t, sub)
	assert.Equal(t, game.ID, update.ID)
}

func TestSubscription_Unsubscribe(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := repository.NewGameRepository(st.Storage)
	gameSyncer := New(st.Logger, st.Storage, gameRepo, testPollInterval, testReconnectDelay)

	game := entity.NewGame("AB12CD", "alice")
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

	// Given: an active subscription
	sub := gameSyncer.Subscribe(ctx, game.ID)
	awaitUpdate(t, sub)

	// When: unsubscribing
	sub.Unsubscribe()

	// Then: the updates channel closes and no further state arrives
	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(deliveryTimeout):
		t.Fatal("updates channel did not close")
	}

	// And: unsubscribing twice is safe
	sub.Unsubscribe()
}

func TestSameSnapshot(t *testing.T) {
	base := entity.NewGame("AB12CD", "alice")

	t.Run("Nil never matches", func(t *testing.T) {
		assert.False(t, sameSnapshot(nil, base))
	})

	t.Run("Equal redraw fields match regardless of timestamp", func(t *testing.T) {
		other := *base
		other.UpdatedAt = other.UpdatedAt.Add(time.Minute)
		assert.True(t, sameSnapshot(base, &other))
	})

	t.Run("Board change breaks the match", func(t *testing.T) {
		other := *base
		other.Board[3] = entity.MarkO
		assert.False(t, sameSnapshot(base, &other))
	})

	t.Run("Turn change breaks the match", func(t *testing.T) {
		other := *base
		other.Turn = entity.MarkO
		assert.False(t, sameSnapshot(base, &other))
	})
}
