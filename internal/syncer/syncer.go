package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/internal/repository"
)

type gameFetcher interface {
	GetByID(ctx context.Context, id string) (*entity.Game, error)
}

// Syncer - keeps watchers of a game in step with the remote record. Each
// subscription is fed from two channels: pub/sub pushes of the full
// record, and a periodic re-fetch for clients whose push channel fails
// silently. Updates identical to the last delivered snapshot are dropped.
type Syncer struct {
	logger *slog.Logger
	client *redis.Client
	games  gameFetcher

	pollInterval   time.Duration
	reconnectDelay time.Duration
}

func New(logger *slog.Logger, client *redis.Client, games gameFetcher, pollInterval, reconnectDelay time.Duration) *Syncer {
	return &Syncer{
		logger: logger,
		client: client,
		games:  games,

		pollInterval:   pollInterval,
		reconnectDelay: reconnectDelay,
	}
}

// Subscription - a lazy, non-restartable sequence of record snapshots.
// Updates is closed after Unsubscribe; no further state or network
// activity happens once it is closed.
type Subscription struct {
	updates chan *entity.Game
	cancel  context.CancelFunc
	once    sync.Once
}

func (that *Subscription) Updates() <-chan *entity.Game {
	return that.updates
}

func (that *Subscription) Unsubscribe() {
	that.once.Do(that.cancel)
}

// Subscribe - starts watching the game. The subscription lives until
// Unsubscribe or until the parent context is canceled.
func (that *Syncer) Subscribe(ctx context.Context, gameID string) *Subscription {
	runCtx, cancel := context.WithCancel(ctx)

	sub := &Subscription{
		updates: make(chan *entity.Game, 1),
		cancel:  cancel,
	}

	go that.run(runCtx, gameID, sub)

	return sub
}

func (that *Syncer) run(ctx context.Context, gameID string, sub *Subscription) {
	log := that.logger.With("component", "syncer", "game_id", gameID)

	defer close(sub.updates)

	var cached *entity.Game

	deliver := func(game *entity.Game) {
		if game == nil || sameSnapshot(cached, game) {
			return
		}
		cached = game

		select {
		case sub.updates <- game:
		case <-ctx.Done():
		}
	}

	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	for {
		pubsub, err := that.openChannel(ctx, gameID)
		if err != nil {
			// retry loop gave up, which only happens on cancellation
			return
		}

		messages := pubsub.Channel()

	receive:
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return

			case msg, ok := <-messages:
				if !ok {
					// push channel dropped; fall back to reconnect
					break receive
				}

				var game entity.Game
				if err = json.Unmarshal([]byte(msg.Payload), &game); err != nil {
					log.Error("failed to unmarshal pushed record", "error", err)
					continue
				}

				deliver(&game)

			case <-ticker.C:
				game, err := that.games.GetByID(ctx, gameID)
				if err != nil {
					log.Debug("poll fetch failed", "error", err)
					continue
				}

				deliver(game)
			}
		}

		_ = pubsub.Close()
		log.Warn("push channel dropped, reconnecting", "delay", that.reconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(that.reconnectDelay):
		}
	}
}

// openChannel - subscribes to the game's pub/sub channel, retrying with a
// constant delay until the subscription is confirmed or the context ends.
func (that *Syncer) openChannel(ctx context.Context, gameID string) (*redis.PubSub, error) {
	var pubsub *redis.PubSub

	policy := backoff.WithContext(backoff.NewConstantBackOff(that.reconnectDelay), ctx)

	err := backoff.Retry(func() error {
		pubsub = that.client.Subscribe(ctx, repository.GameEventsChannel(gameID))

		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return err //nolint:wrapcheck // inspected by the retry policy only
		}

		return nil
	}, policy)
	if err != nil {
		return nil, err //nolint:wrapcheck // cancellation only
	}

	return pubsub, nil
}

// sameSnapshot - field-level comparison of the parts that drive a redraw:
// board, status, turn, winner. Equal snapshots are not re-delivered.
func sameSnapshot(a, b *entity.Game) bool {
	if a == nil || b == nil {
		return false
	}

	return a.Board == b.Board &&
		a.Status == b.Status &&
		a.Turn == b.Turn &&
		a.Winner == b.Winner
}
