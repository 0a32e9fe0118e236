package websocket

import (
	"encoding/json"

	"github.com/gridglow/vanishttt-backend/internal/entity"
)

// Message - a client request with an action type and payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type watchPayload struct {
	GameID string `json:"game_id"`
}

type turnPayload struct {
	GameID string `json:"game_id"`
	Cell   int    `json:"cell"`
}

type restartPayload struct {
	GameID string `json:"game_id"`
}

// ResponsePayload - what the server pushes back: either a record snapshot
// or a presentable error.
type ResponsePayload struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}
