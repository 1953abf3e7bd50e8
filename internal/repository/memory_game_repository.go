package repository

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"sync"
)

type memoryGameRepository struct {
	mu    sync.Mutex
	games map[string]Snapshot
}

// NewMemoryGameRepository creates a GameRepository that lives and dies with
// the process.
func NewMemoryGameRepository() GameRepository {
	return &memoryGameRepository{games: make(map[string]Snapshot)}
}

func (r *memoryGameRepository) Create(ctx context.Context, id string, state game.State) error {
	_, span := tracer.Start(ctx, "GameRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; ok {
		return ErrGameAlreadyExists
	}
	r.games[id] = Snapshot{State: state, Revision: 1}
	return nil
}

func (r *memoryGameRepository) FindByID(ctx context.Context, id string) (Snapshot, error) {
	_, span := tracer.Start(ctx, "GameRepository.FindByID")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.games[id]
	if !ok {
		return Snapshot{}, ErrGameNotFound
	}
	return snap, nil
}

func (r *memoryGameRepository) Update(ctx context.Context, id string, fn UpdateFunc) (Snapshot, error) {
	_, span := tracer.Start(ctx, "GameRepository.Update")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.games[id]
	if !ok {
		return Snapshot{}, ErrGameNotFound
	}
	next, err := fn(current.State)
	if err != nil {
		return current, err
	}
	stored := Snapshot{State: next, Revision: current.Revision + 1}
	r.games[id] = stored
	return stored, nil
}

func (r *memoryGameRepository) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "GameRepository.Delete")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}
