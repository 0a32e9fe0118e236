package entity

import (
	"fmt"
	"time"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""

	// MaxLiveMarks - each player keeps at most this many marks on the board.
	MaxLiveMarks = 3
)

// Board - the nine cells, row-major: indices 0..2 top row, 6..8 bottom row.
type Board [9]string

// Game - the shared game record. Field tags follow the remote row schema;
// clients replace the whole record on every write (last write wins).
type Game struct {
	ID           string    `json:"game_id"`
	PlayerXName  string    `json:"player_x_name"`
	PlayerOName  string    `json:"player_o_name,omitempty"`
	Board        Board     `json:"board"`
	Turn         string    `json:"current_turn"`
	Winner       string    `json:"winner,omitempty"`
	WinningLine  *[3]int   `json:"winning_line,omitempty"`
	Status       string    `json:"status"`
	XQueue       []int     `json:"x_queue"`
	OQueue       []int     `json:"o_queue"`
	StartingMark string    `json:"starting_mark"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewGame - creates a waiting game with only the creator's name set.
func NewGame(id, playerXName string) *Game {
	return &Game{
		ID:           id,
		PlayerXName:  playerXName,
		Turn:         MarkX,
		Status:       StatusWaiting,
		StartingMark: MarkX,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

// HasTwoPlayers - both seats are taken.
func (that *Game) HasTwoPlayers() bool {
	return that.PlayerXName != "" && that.PlayerOName != ""
}

func (that *Game) ConfirmPlayingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsPlaying():
		return nil
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrGameIsNotStarted, that.Status)
	}
}

// Queue - the mover's live-mark queue, oldest entry first.
func (that *Game) Queue(mark string) *[]int {
	if mark == MarkX {
		return &that.XQueue
	}
	return &that.OQueue
}

// MarkCount - how many cells currently hold the given mark.
func (that *Board) MarkCount(mark string) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}
	return count
}

// IsFull - every cell is occupied.
func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

func OpponentMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
