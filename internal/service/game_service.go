package service

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/repository"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("service")
	meter  = otel.Meter("service")
)

// Publisher is told about every committed transition. Calls for one game
// may arrive out of order; revision says which state is newer.
type Publisher interface {
	Publish(ctx context.Context, gameID string, revision int64, state game.State)
}

// GameService owns the state cell of every game session and is the only
// path through which a session's state changes.
type GameService interface {
	NewGame(ctx context.Context) (id string, state game.State, err error)
	PlaceMark(ctx context.Context, id string, row, col int) (game.State, error)
	Reset(ctx context.Context, id string) (game.State, error)
	CurrentState(ctx context.Context, id string) (game.State, error)
	CurrentSnapshot(ctx context.Context, id string) (repository.Snapshot, error)
	EndGame(ctx context.Context, id string) error
}

type gameMetrics struct {
	moves         metric.Int64Counter
	illegalMoves  metric.Int64Counter
	gamesFinished metric.Int64Counter
	gamesStarted  metric.Int64Counter
}

func newGameMetrics() *gameMetrics {
	fallback := noop.NewMeterProvider().Meter("service")
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Error("failed to create counter, using noop", "metric", name, "error", err)
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}
	return &gameMetrics{
		moves:         counter("tictactoe.moves", "Accepted moves"),
		illegalMoves:  counter("tictactoe.illegal_moves", "Rejected moves by kind"),
		gamesFinished: counter("tictactoe.games.finished", "Games that reached a terminal status"),
		gamesStarted:  counter("tictactoe.games.started", "Games started, including resets"),
	}
}

type gameService struct {
	repo      repository.GameRepository
	publisher Publisher
	metrics   *gameMetrics
	newID     func() string
}

// NewGameService creates a GameService storing sessions in repo and
// announcing transitions to publisher.
func NewGameService(repo repository.GameRepository, publisher Publisher) GameService {
	return &gameService{
		repo:      repo,
		publisher: publisher,
		metrics:   newGameMetrics(),
		newID:     uuid.NewString,
	}
}

// NewGame starts a session in the initial state.
func (s *gameService) NewGame(ctx context.Context) (string, game.State, error) {
	ctx, span := tracer.Start(ctx, "GameService.NewGame")
	defer span.End()

	id := s.newID()
	span.SetAttributes(attribute.String("game.id", id))

	state := game.New()
	if err := s.repo.Create(ctx, id, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create game")
		return "", game.State{}, fmt.Errorf("failed to create game: %w", err)
	}
	s.metrics.gamesStarted.Add(ctx, 1)

	slog.InfoContext(ctx, "Game created", "game.id", id)
	return id, state, nil
}

// PlaceMark applies a move for whoever's turn it is. Illegal moves come back
// as *game.IllegalMoveError together with the unchanged state.
func (s *gameService) PlaceMark(ctx context.Context, id string, row, col int) (game.State, error) {
	ctx, span := tracer.Start(ctx, "GameService.PlaceMark", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	snap, err := s.repo.Update(ctx, id, func(current game.State) (game.State, error) {
		return game.PlaceMark(current, row, col)
	})
	state := snap.State
	if err != nil {
		if kind, ok := game.KindOf(err); ok {
			s.metrics.illegalMoves.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
			span.SetAttributes(attribute.Bool("move.valid", false), attribute.String("move.rejected", string(kind)))
			slog.InfoContext(ctx, "Illegal move rejected", "game.id", id, "move.row", row, "move.col", col, "kind", kind)
			return state, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply move")
		if !errors.Is(err, repository.ErrGameNotFound) {
			slog.ErrorContext(ctx, "Failed to apply move", "game.id", id, "error", err)
		}
		return game.State{}, fmt.Errorf("failed to place mark: %w", err)
	}

	span.SetAttributes(attribute.Bool("move.valid", true), attribute.String("game.status", string(state.Status.Kind)))
	s.metrics.moves.Add(ctx, 1)
	if state.IsOver() {
		result := string(state.Status.Kind)
		if state.Status.Kind == game.Won {
			result = "won_" + string(state.Status.Winner)
		}
		s.metrics.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
		slog.InfoContext(ctx, "Game finished", "game.id", id, "status", state.Status.Kind, "winner", state.Status.Winner)
	}

	s.publisher.Publish(ctx, id, snap.Revision, state)
	return state, nil
}

// Reset replaces the session's state with a fresh game regardless of how
// the current one stands.
func (s *gameService) Reset(ctx context.Context, id string) (game.State, error) {
	ctx, span := tracer.Start(ctx, "GameService.Reset", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	snap, err := s.repo.Update(ctx, id, func(game.State) (game.State, error) {
		return game.Reset(), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to reset game")
		return game.State{}, fmt.Errorf("failed to reset game: %w", err)
	}
	s.metrics.gamesStarted.Add(ctx, 1)

	slog.InfoContext(ctx, "Game reset", "game.id", id)
	s.publisher.Publish(ctx, id, snap.Revision, snap.State)
	return snap.State, nil
}

// CurrentState reads the session's state.
func (s *gameService) CurrentState(ctx context.Context, id string) (game.State, error) {
	snap, err := s.CurrentSnapshot(ctx, id)
	return snap.State, err
}

// CurrentSnapshot reads the session's state with its revision.
func (s *gameService) CurrentSnapshot(ctx context.Context, id string) (repository.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "GameService.CurrentSnapshot", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	snap, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return repository.Snapshot{}, fmt.Errorf("failed to get game: %w", err)
	}
	return snap, nil
}

// EndGame drops a session.
func (s *gameService) EndGame(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameService.EndGame", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to end game: %w", err)
	}
	slog.InfoContext(ctx, "Game ended", "game.id", id)
	return nil
}
