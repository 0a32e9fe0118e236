package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
	"github.com/gridglow/vanishttt-backend/internal/entity"
)

const gameKeyPrefix = "game:"

// GameEventsChannel - pub/sub channel carrying the full record on every
// write to the given game.
func GameEventsChannel(gameID string) string {
	return "game:events:" + gameID
}

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

// Create - stores a new record only if the id is free. A taken id means
// the caller should generate another code, not overwrite a live game.
func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := gameKeyPrefix + game.ID

	stored, err := that.client.SetNX(ctx, gameKey, gameJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if !stored {
		return apperror.ErrGameIDTaken
	}

	if err = that.client.Publish(ctx, GameEventsChannel(game.ID), gameJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game update: %w", err)
	}

	return nil
}

// CreateOrUpdate - overwrites the whole record (last write wins) and
// publishes it so subscribers see the change without re-fetching.
func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := gameKeyPrefix + game.ID
	if err = that.client.Set(ctx, gameKey, gameJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	if err = that.client.Publish(ctx, GameEventsChannel(game.ID), gameJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish game update: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := gameKeyPrefix + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := gameKeyPrefix + id

	if err := that.client.Del(ctx, gameKey).Err(); err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	return nil
}
