package repository

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Hash fields of a game key.
const (
	fieldBoard    = "board"
	fieldNextTurn = "next_turn"
	fieldStatus   = "status"
	fieldWinner   = "winner"
	fieldRevision = "revision"
)

const maxTxRetries = 5

type redisGameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGameRepository creates a Redis-backed GameRepository. Each game is
// a hash under "game:<id>" that expires ttl after its last write; a zero ttl
// keeps games until they are deleted.
func NewRedisGameRepository(rdb *redis.Client, ttl time.Duration) GameRepository {
	return &redisGameRepository{rdb: rdb, ttl: ttl}
}

func gameKey(id string) string {
	return fmt.Sprintf("game:%s", id)
}

// Create stores the initial state of a new game.
func (r *redisGameRepository) Create(ctx context.Context, id string, state game.State) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("game.id", id))

	key := gameKey(id)
	fields, err := encodeState(Snapshot{State: state, Revision: 1})
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrGameAlreadyExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.write(ctx, pipe, key, fields)
			return nil
		})
		return err
	}

	if err := r.rdb.Watch(ctx, txf, key); err != nil {
		if !errors.Is(err, ErrGameAlreadyExists) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to create game")
		}
		return fmt.Errorf("failed to create game in redis: %w", err)
	}
	return nil
}

// FindByID retrieves the current game state from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID")
	defer span.End()
	span.SetAttributes(attribute.String("game.id", id))

	data, err := r.rdb.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		return Snapshot{}, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	return decodeState(data)
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the game in between.
func (r *redisGameRepository) Update(ctx context.Context, id string, fn UpdateFunc) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.String("game.id", id))

	key := gameKey(id)
	var result Snapshot

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		current, err := decodeState(data)
		if err != nil {
			return err
		}

		state, err := fn(current.State)
		if err != nil {
			result = current
			return err
		}
		next := Snapshot{State: state, Revision: current.Revision + 1}
		fields, err := encodeState(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.write(ctx, pipe, key, fields)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			span.AddEvent("transaction conflict", trace.WithAttributes(attribute.Int("tx.attempt", attempt)))
			continue
		}
		return result, err
	}

	span.SetStatus(codes.Error, "Too many transaction conflicts")
	return result, fmt.Errorf("failed to update game %s: %w", id, redis.TxFailedErr)
}

// Delete removes a game.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete")
	defer span.End()

	n, err := r.rdb.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *redisGameRepository) write(ctx context.Context, pipe redis.Pipeliner, key string, fields map[string]interface{}) {
	pipe.HSet(ctx, key, fields)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
}

func encodeState(snap Snapshot) (map[string]interface{}, error) {
	state := snap.State
	boardJSON, err := json.Marshal(state.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return map[string]interface{}{
		fieldBoard:    boardJSON,
		fieldNextTurn: string(state.CurrentTurn),
		fieldStatus:   string(state.Status.Kind),
		fieldWinner:   string(state.Status.Winner),
		fieldRevision: snap.Revision,
	}, nil
}

// decodeState rebuilds a state from its hash and rejects snapshots that
// legal play could not have produced.
func decodeState(data map[string]string) (Snapshot, error) {
	if len(data) == 0 {
		return Snapshot{}, ErrGameNotFound
	}

	var board game.Board
	if err := json.Unmarshal([]byte(data[fieldBoard]), &board); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	revision, err := strconv.ParseInt(data[fieldRevision], 10, 64)
	if err != nil || revision < 1 {
		return Snapshot{}, fmt.Errorf("%w: bad revision %q", game.ErrInvalidState, data[fieldRevision])
	}

	state := game.State{
		Board:       board,
		CurrentTurn: game.PlayerMark(data[fieldNextTurn]),
		Status: game.Status{
			Kind:   game.StatusKind(data[fieldStatus]),
			Winner: game.PlayerMark(data[fieldWinner]),
		},
	}
	if err := state.Validate(); err != nil {
		return Snapshot{}, err
	}
	// The winning line is derived, not stored.
	state.Status = game.Evaluate(board)
	return Snapshot{State: state, Revision: revision}, nil
}
