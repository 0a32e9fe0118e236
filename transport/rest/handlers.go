package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/internal/pkg"
)

type createGameRequest struct {
	PlayerName string `json:"player_name"`
}

type joinGameRequest struct {
	PlayerName string `json:"player_name"`
}

type makeTurnRequest struct {
	Cell int `json:"cell"`
}

type gameResponse struct {
	Game     *entity.Game `json:"game"`
	ShareURL string       `json:"share_url,omitempty"`
	Role     string       `json:"role,omitempty"`
	Mark     string       `json:"mark,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleCreateGame")

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PlayerName == "" {
		that.writeError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	game, err := that.manager.CreateGame(r.Context(), sessionID(r), req.PlayerName)
	if err != nil {
		log.Error("failed to create game", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	that.writeJSON(w, http.StatusCreated, gameResponse{
		Game:     game,
		ShareURL: pkg.GameURL(that.baseURL, game.ID),
		Mark:     entity.MarkX,
	})
}

func (that *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleJoinGame")

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PlayerName == "" {
		that.writeError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	game, err := that.manager.JoinGame(r.Context(), sessionID(r), chi.URLParam(r, "gameID"), req.PlayerName)
	if err != nil {
		that.writeGameError(log, w, err)
		return
	}

	// the creator re-entering its own game keeps playing X
	role, mark, err := that.manager.ResolveRole(r.Context(), sessionID(r), game.ID)
	if err != nil {
		log.Error("failed to resolve role", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Role: role, Mark: mark})
}

func (that *Server) handleMakeTurn(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleMakeTurn")

	var req makeTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := that.manager.MakeTurn(r.Context(), sessionID(r), chi.URLParam(r, "gameID"), req.Cell)
	if err != nil {
		that.writeGameError(log, w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRestart")

	game, err := that.manager.Restart(r.Context(), sessionID(r), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeGameError(log, w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetGame")

	gameID := chi.URLParam(r, "gameID")

	game, err := that.manager.GetGame(r.Context(), gameID)
	if err != nil {
		that.writeGameError(log, w, err)
		return
	}

	role, mark, err := that.manager.ResolveRole(r.Context(), sessionID(r), gameID)
	if err != nil {
		log.Error("failed to resolve role", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Role: role, Mark: mark})
}

// writeGameError - maps the error taxonomy onto status codes: validation
// and join failures are client errors with presentable text, everything
// else is a transport failure.
func (that *Server) writeGameError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeError(w, http.StatusNotFound, apperror.ErrGameNotFound.Error())
	case errors.Is(err, apperror.ErrGameNotJoinable),
		errors.Is(err, apperror.ErrGameFull),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrLineProtected),
		errors.Is(err, apperror.ErrSessionNotFound):
		that.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrInvalidCell):
		that.writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed", "error", err)
		that.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, errorResponse{Error: message})
}
