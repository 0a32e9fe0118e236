package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
	"github.com/gridglow/vanishttt-backend/internal/entity"
)

// Role - what a browser session is to a given game. There are no
// spectators: a session without a stored assignment is unassigned and is
// offered the join flow.
const (
	RoleUnassigned = "unassigned"
	RoleCreator    = "creator"
	RoleJoiner     = "joiner"
)

type sessionRepo interface {
	Save(ctx context.Context, sessionID, gameID, mark string) error
	Get(ctx context.Context, sessionID, gameID string) (string, error)
	Delete(ctx context.Context, sessionID, gameID string) error
}

// Manager - persists and re-derives the seat a session holds in a game,
// so a page reload does not have to re-join.
type Manager struct {
	logger   *slog.Logger
	sessions sessionRepo
}

func NewManager(logger *slog.Logger, sessions sessionRepo) *Manager {
	return &Manager{
		logger:   logger,
		sessions: sessions,
	}
}

var ErrInvalidMark = errors.New("invalid mark")

// Assign - records that the session plays the given mark in the game.
func (that *Manager) Assign(ctx context.Context, sessionID, gameID, mark string) error {
	if mark != entity.MarkX && mark != entity.MarkO {
		return fmt.Errorf("%w: %q", ErrInvalidMark, mark)
	}

	if err := that.sessions.Save(ctx, sessionID, gameID, mark); err != nil {
		return fmt.Errorf("failed to assign session: %w", err)
	}

	return nil
}

// Resolve - returns the session's role and mark for the game. A missing
// assignment is not an error: the caller gets RoleUnassigned and presents
// the join flow. A corrupted assignment is dropped and treated the same.
func (that *Manager) Resolve(ctx context.Context, sessionID, gameID string) (string, string, error) {
	log := that.logger.With("method", "Resolve")

	mark, err := that.sessions.Get(ctx, sessionID, gameID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return RoleUnassigned, "", nil
	}

	if err != nil {
		return RoleUnassigned, "", fmt.Errorf("failed to resolve session: %w", err)
	}

	switch mark {
	case entity.MarkX:
		return RoleCreator, mark, nil
	case entity.MarkO:
		return RoleJoiner, mark, nil
	default:
		log.Warn("dropping corrupted session assignment", "game_id", gameID, "mark", mark)

		if err = that.sessions.Delete(ctx, sessionID, gameID); err != nil {
			return RoleUnassigned, "", fmt.Errorf("failed to drop corrupted session: %w", err)
		}

		return RoleUnassigned, "", nil
	}
}

// Forget - removes the stored assignment, e.g. when a game is abandoned.
func (that *Manager) Forget(ctx context.Context, sessionID, gameID string) error {
	if err := that.sessions.Delete(ctx, sessionID, gameID); err != nil {
		return fmt.Errorf("failed to forget session: %w", err)
	}

	return nil
}
