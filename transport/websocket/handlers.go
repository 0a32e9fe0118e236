package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gridglow/vanishttt-backend/internal/pkg"
)

func (that *Server) handleWatch(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleWatch")

	var payload watchPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.GameID == "" {
		return conn.send(msg.Action, ResponsePayload{Error: "game_id is required"})
	}

	// codes are case-insensitive; the store only ever sees upper case
	gameID := pkg.NormalizeGameID(payload.GameID)

	sub := that.syncer.Subscribe(ctx, gameID)
	conn.setWatch(sub)

	go func() {
		for game := range sub.Updates() {
			if err := conn.send("game:update", ResponsePayload{Game: game}); err != nil {
				log.Error("failed to push update", "game_id", game.ID, "error", err)
				sub.Unsubscribe()
				return
			}
		}
	}()

	log.Info("watching game", "game_id", gameID)

	return nil
}

func (that *Server) handleUnwatch(_ context.Context, conn *connection, _ *Message) error {
	conn.setWatch(nil)
	return nil
}

func (that *Server) handleTurn(ctx context.Context, conn *connection, msg *Message) error {
	var payload turnPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	game, err := that.manager.MakeTurn(ctx, conn.sessionID, payload.GameID, payload.Cell)
	if err != nil {
		// validation failures are presentable, not fatal to the socket
		return conn.send(msg.Action, ResponsePayload{Error: err.Error()})
	}

	return conn.send(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleRestart(ctx context.Context, conn *connection, msg *Message) error {
	var payload restartPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	game, err := that.manager.Restart(ctx, conn.sessionID, payload.GameID)
	if err != nil {
		return conn.send(msg.Action, ResponsePayload{Error: err.Error()})
	}

	return conn.send(msg.Action, ResponsePayload{Game: game})
}
