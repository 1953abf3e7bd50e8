package notifier

import (
	"context"
	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/game"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("notifier")

// RedisRelay shares game updates between server instances that use the
// same Redis. Updates are published to the game's channel and every
// instance, this one included, feeds what it receives into its local Broker.
type RedisRelay struct {
	rdb   *redis.Client
	local *Broker
}

func NewRedisRelay(rdb *redis.Client, local *Broker) *RedisRelay {
	return &RedisRelay{rdb: rdb, local: local}
}

// Publish sends state to every instance. If Redis is unreachable the update
// still reaches local subscribers.
func (r *RedisRelay) Publish(ctx context.Context, gameID string, revision int64, state game.State) {
	ctx, span := tracer.Start(ctx, "RedisRelay.Publish", trace.WithAttributes(
		attribute.String("game.id", gameID),
	))
	defer span.End()

	data, err := events.NewStateChanged(gameID, revision, state)
	if err == nil {
		err = r.rdb.Publish(ctx, events.GameChannel(gameID), data).Err()
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish state_changed event", "game.id", gameID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish state_changed event")
		r.local.Publish(ctx, gameID, revision, state)
	}
}

// Start subscribes to every game channel and relays into the local Broker
// until ctx is done. It returns once the subscription is confirmed.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.rdb.PSubscribe(ctx, events.GameChannelPattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", events.GameChannelPattern, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.relay(ctx, msg)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) relay(ctx context.Context, msg *redis.Message) {
	gameID, ok := events.GameIDFromChannel(msg.Channel)
	if !ok {
		return
	}
	// Only decode for games someone on this instance is watching.
	if r.local.Subscribers(gameID) == 0 {
		return
	}

	payload, err := events.DecodeStateChanged([]byte(msg.Payload))
	if err != nil {
		slog.WarnContext(ctx, "Dropping malformed game event", "game.id", gameID, "error", err)
		return
	}
	r.local.Publish(ctx, payload.GameID, payload.Revision, payload.State)
}
