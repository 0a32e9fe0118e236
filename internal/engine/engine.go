package engine

import (
	"fmt"

	"github.com/gridglow/vanishttt-backend/internal/apperror"
	"github.com/gridglow/vanishttt-backend/internal/entity"
)

// WinLines - the 8 winning triples. Order matters: rows, then columns,
// then diagonals. Evaluate reports the first match in this order.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - checks the board against WinLines. Returns the winning mark
// and the first matching triple, or an empty mark and nil line.
func Evaluate(board entity.Board) (string, *[3]int) {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			winning := line
			return a, &winning
		}
	}

	return entity.EmptyCell, nil
}

// IsDraw - a draw needs every cell occupied and no winning triple. With
// the mark cap a legal game never fills the board, but arbitrary boards
// can.
func IsDraw(board entity.Board) bool {
	if winner, _ := Evaluate(board); winner != entity.EmptyCell {
		return false
	}
	return board.IsFull()
}

// ApplyMove - validates and applies one move for the given mark. Any
// rejection leaves the game untouched; a successful move updates board,
// queue, winner/line, status and turn in one go.
func ApplyMove(game *entity.Game, mark string, cell int) error {
	if cell < 0 || cell >= len(game.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.IsFinished() || game.Winner != entity.EmptyCell {
		return apperror.ErrGameFinished
	}

	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	queue := game.Queue(mark)

	if len(*queue) == entity.MaxLiveMarks {
		oldest := (*queue)[0]
		if sacrificesOwnWin(game.Board, mark, oldest) {
			return apperror.ErrLineProtected
		}

		game.Board[oldest] = entity.EmptyCell
		*queue = (*queue)[1:]
	}

	game.Board[cell] = mark
	*queue = append(*queue, cell)

	winner, line := Evaluate(game.Board)
	switch {
	case winner != entity.EmptyCell:
		game.Winner = winner
		game.WinningLine = line
		game.Status = entity.StatusFinished
	case game.Board.IsFull():
		game.Status = entity.StatusFinished
	default:
		game.Turn = entity.OpponentMark(mark)
	}

	return nil
}

// Restart - clears the board and queues in place and hands the first move
// to the other starter. Status goes straight back to playing.
func Restart(game *entity.Game) {
	next := entity.OpponentMark(game.StartingMark)

	game.Board = entity.Board{}
	game.XQueue = nil
	game.OQueue = nil
	game.Winner = entity.EmptyCell
	game.WinningLine = nil
	game.Status = entity.StatusPlaying
	game.StartingMark = next
	game.Turn = next
}

// sacrificesOwnWin - the vanishing-rule guard. If the oldest mark sits on
// a triple the mover already holds on the current board, vacating it would
// destroy that win, so the whole move is refused. With a recorded winner
// the game is over before this check runs, so the guard only fires on
// states where a win is on the board but not yet settled.
func sacrificesOwnWin(board entity.Board, mark string, oldest int) bool {
	for _, line := range WinLines {
		if board[line[0]] != mark || board[line[1]] != mark || board[line[2]] != mark {
			continue
		}
		if line[0] == oldest || line[1] == oldest || line[2] == oldest {
			return true
		}
	}

	return false
}
