package apperror

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameIDTaken      = errors.New("game id is already taken")
	ErrGameNotJoinable  = errors.New("game is not available to join")
	ErrGameFull         = errors.New("game is already full")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")

	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrLineProtected = errors.New("move would sacrifice an active winning line")

	ErrSessionNotFound = errors.New("no session for this game")
)
