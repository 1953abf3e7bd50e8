package repository

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"errors"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository")

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
)

// UpdateFunc computes the next state of a game from its current one. When it
// returns an error nothing is written and the error is passed through.
type UpdateFunc func(current game.State) (game.State, error)

// Snapshot is a stored state together with its revision. The revision is 1
// on creation and grows by one with every committed update, so it orders
// the states of one game even across resets.
type Snapshot struct {
	State    game.State
	Revision int64
}

// GameRepository holds the current state of every game session.
//
//go:generate mockgen -destination=mocks/mock_game_repository.go -package=mocks . GameRepository
type GameRepository interface {
	Create(ctx context.Context, id string, state game.State) error
	FindByID(ctx context.Context, id string) (Snapshot, error)
	// Update applies fn atomically with respect to other updates of the
	// same game and returns what was stored. When fn fails the current
	// snapshot is returned with fn's error.
	Update(ctx context.Context, id string, fn UpdateFunc) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}
