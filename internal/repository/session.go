package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
)

// SessionRepository - the locally persisted seat assignment: which mark a
// browser session holds in a given game. Plays the role the browser's
// local storage plays for a web client.
type SessionRepository interface {
	Save(ctx context.Context, sessionID, gameID, mark string) error
	Get(ctx context.Context, sessionID, gameID string) (string, error)
	Delete(ctx context.Context, sessionID, gameID string) error
}

type dbSession struct {
	conn *sql.DB
}

func NewSessionRepository(conn *sql.DB) SessionRepository {
	return &dbSession{
		conn: conn,
	}
}

func (that *dbSession) Save(ctx context.Context, sessionID, gameID, mark string) error {
	query := `INSERT INTO sessions (session_id, game_id, mark) VALUES (?, ?, ?)
		ON CONFLICT (session_id, game_id) DO UPDATE SET mark = excluded.mark`

	if _, err := that.conn.ExecContext(ctx, query, sessionID, gameID, mark); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (that *dbSession) Get(ctx context.Context, sessionID, gameID string) (string, error) {
	query := `SELECT mark FROM sessions WHERE session_id = ? AND game_id = ?`

	var mark string
	err := that.conn.QueryRowContext(ctx, query, sessionID, gameID).Scan(&mark)

	if errors.Is(err, sql.ErrNoRows) {
		return "", apperror.ErrSessionNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	return mark, nil
}

func (that *dbSession) Delete(ctx context.Context, sessionID, gameID string) error {
	query := `DELETE FROM sessions WHERE session_id = ? AND game_id = ?`

	if _, err := that.conn.ExecContext(ctx, query, sessionID, gameID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
