package game

import "fmt"

// BoardArrayToSlice converts the game board to a slice of slices, the shape
// clients receive on the wire.
func BoardArrayToSlice(board Board) [][]PlayerMark {
	out := make([][]PlayerMark, 3)
	for r := range [3]int{} {
		out[r] = make([]PlayerMark, 3)
		for c := range [3]int{} {
			out[r][c] = board[r][c]
		}
	}
	return out
}

// Validate checks that s could have been produced by legal play from New:
// marks alternate starting with X, the status matches the board and the turn
// belongs to the right player.
func (s State) Validate() error {
	for r := range [3]int{} {
		for c := range [3]int{} {
			if cell := s.Board[r][c]; cell != None && !cell.IsPlayer() {
				return fmt.Errorf("%w: unknown mark %q at (%d, %d)", ErrInvalidState, cell, r, c)
			}
		}
	}

	xs, ys := s.Board.Count(PlayerX), s.Board.Count(PlayerO)
	if diff := xs - ys; diff != 0 && diff != 1 {
		return fmt.Errorf("%w: %d X marks against %d O marks", ErrInvalidState, xs, ys)
	}

	want := Evaluate(s.Board)
	if s.Status.Kind != want.Kind || s.Status.Winner != want.Winner {
		return fmt.Errorf("%w: status %s does not match board (%s)", ErrInvalidState, s.Status.Kind, want.Kind)
	}

	// While playing, X moves on equal counts. Once over, the turn stays with
	// whoever made the final move.
	turn := PlayerX
	if xs > ys {
		turn = PlayerO
	}
	if want.IsOver() {
		turn = turn.Next()
	}
	if s.CurrentTurn != turn {
		return fmt.Errorf("%w: turn %q, expected %q", ErrInvalidState, s.CurrentTurn, turn)
	}
	return nil
}
