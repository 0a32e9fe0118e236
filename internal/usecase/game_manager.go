package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
	"github.com/gridglow/vanishttt-backend/internal/engine"
	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/internal/pkg"
	"github.com/gridglow/vanishttt-backend/internal/session"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type sessionManager interface {
	Assign(ctx context.Context, sessionID, gameID, mark string) error
	Resolve(ctx context.Context, sessionID, gameID string) (string, string, error)
}

// GameManager - the operations a client performs against the shared
// record: create, join, move, restart, fetch. Every write computes the
// full next record locally and overwrites the stored one.
type GameManager struct {
	logger   *slog.Logger
	games    gameRepo
	sessions sessionManager

	now func() time.Time
}

func NewGameManager(logger *slog.Logger, games gameRepo, sessions sessionManager) *GameManager {
	return &GameManager{
		logger:   logger,
		games:    games,
		sessions: sessions,

		now: func() time.Time { return time.Now().UTC() },
	}
}

// createAttempts - how many fresh codes to try when one collides with a
// live game.
const createAttempts = 5

// CreateGame - fresh shareable code, record with only the creator's name,
// phase waiting. The creating session becomes X. A code already held by
// another game is never overwritten; a new one is generated instead.
func (that *GameManager) CreateGame(ctx context.Context, sessionID, playerName string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	for attempt := 0; attempt < createAttempts; attempt++ {
		game := entity.NewGame(pkg.GenerateGameID(), playerName)
		game.UpdatedAt = that.now()

		err := that.games.Create(ctx, game)
		if errors.Is(err, apperror.ErrGameIDTaken) {
			log.Warn("game code collision, regenerating", "game_id", game.ID)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}

		if err = that.sessions.Assign(ctx, sessionID, game.ID, entity.MarkX); err != nil {
			return nil, fmt.Errorf("failed to assign creator session: %w", err)
		}

		log.Info("game created", "game_id", game.ID)

		return game, nil
	}

	return nil, fmt.Errorf("failed to create game: %w", apperror.ErrGameIDTaken)
}

// JoinGame - takes the second seat. Rejected when the record is missing,
// no longer waiting, or already names a second player. The seat is
// assigned before the record write, so a failed write leaves a retryable
// half-join instead of a seated joiner the record does not know about.
func (that *GameManager) JoinGame(ctx context.Context, sessionID, gameID, playerName string) (*entity.Game, error) {
	log := that.logger.With("method", "JoinGame")

	gameID = pkg.NormalizeGameID(gameID)

	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	_, mark, err := that.sessions.Resolve(ctx, sessionID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	// the creator re-entering its own game is reconnecting, not joining
	if mark == entity.MarkX {
		return game, nil
	}

	if mark == "" {
		if !game.IsWaiting() {
			return nil, fmt.Errorf("%w: game %s is %s", apperror.ErrGameNotJoinable, gameID, game.Status)
		}

		if game.PlayerOName != "" {
			return nil, fmt.Errorf("%w: game %s", apperror.ErrGameFull, gameID)
		}

		if err = that.sessions.Assign(ctx, sessionID, game.ID, entity.MarkO); err != nil {
			return nil, fmt.Errorf("failed to assign joiner session: %w", err)
		}
	}

	// a seated O with no name on the record is either finishing a join or
	// retrying one whose record write failed
	if game.PlayerOName == "" {
		game.PlayerOName = playerName
		game.Status = entity.StatusPlaying
		game.UpdatedAt = that.now()

		if err = that.games.CreateOrUpdate(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		log.Info("player joined", "game_id", game.ID)
	}

	return game, nil
}

// MakeTurn - resolves the session's mark, applies the move through the
// rule engine and overwrites the record. A validation failure leaves the
// stored record untouched.
func (that *GameManager) MakeTurn(ctx context.Context, sessionID, gameID string, cell int) (*entity.Game, error) {
	gameID = pkg.NormalizeGameID(gameID)

	role, mark, err := that.sessions.Resolve(ctx, sessionID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if role == session.RoleUnassigned {
		return nil, apperror.ErrSessionNotFound
	}

	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmPlayingState(); err != nil {
		return nil, err
	}

	if err = engine.ApplyMove(game, mark, cell); err != nil {
		return nil, err
	}

	game.UpdatedAt = that.now()

	if err = that.games.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// Restart - clears the board in place and flips who starts. Allowed any
// time after the game has left the waiting phase.
func (that *GameManager) Restart(ctx context.Context, sessionID, gameID string) (*entity.Game, error) {
	gameID = pkg.NormalizeGameID(gameID)

	role, _, err := that.sessions.Resolve(ctx, sessionID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if role == session.RoleUnassigned {
		return nil, apperror.ErrSessionNotFound
	}

	game, err := that.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if game.IsWaiting() {
		return nil, apperror.ErrGameIsNotStarted
	}

	engine.Restart(game)
	game.UpdatedAt = that.now()

	if err = that.games.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// GetGame - authoritative record, e.g. after a manual reload.
func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.games.GetByID(ctx, pkg.NormalizeGameID(gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

// ResolveRole - the session's standing in a game, for clients re-deriving
// their seat after reload.
func (that *GameManager) ResolveRole(ctx context.Context, sessionID, gameID string) (string, string, error) {
	role, mark, err := that.sessions.Resolve(ctx, sessionID, pkg.NormalizeGameID(gameID))
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve session: %w", err)
	}

	return role, mark, nil
}
