package game

import (
	"errors"
	"fmt"
)

// IllegalMoveKind says why a move was rejected.
type IllegalMoveKind string

const (
	GameOver     IllegalMoveKind = "game_over"
	CellOccupied IllegalMoveKind = "cell_occupied"
	OutOfRange   IllegalMoveKind = "out_of_range"
)

var (
	ErrGameOver     = errors.New("game already finished")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrOutOfRange   = errors.New("position out of range")

	ErrInvalidState = errors.New("invalid game state")
)

// IllegalMoveError is returned by PlaceMark when the move is rejected.
// It unwraps to the sentinel matching its Kind.
type IllegalMoveError struct {
	Kind IllegalMoveKind
	Row  int
	Col  int
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move at (%d, %d): %v", e.Row, e.Col, e.Unwrap())
}

func (e *IllegalMoveError) Unwrap() error {
	switch e.Kind {
	case GameOver:
		return ErrGameOver
	case CellOccupied:
		return ErrCellOccupied
	default:
		return ErrOutOfRange
	}
}

// KindOf extracts the IllegalMoveKind from err, if any.
func KindOf(err error) (IllegalMoveKind, bool) {
	var moveErr *IllegalMoveError
	if errors.As(err, &moveErr) {
		return moveErr.Kind, true
	}
	return "", false
}
