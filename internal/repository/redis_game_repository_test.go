package repository

import (
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/testutil"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGameRepository(t *testing.T) {
	client := testutil.StartRedis(t)

	runGameRepositoryContract(t, func(t *testing.T) GameRepository {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return NewRedisGameRepository(client, time.Hour)
	})
}

func TestRedisGameRepository_TTL(t *testing.T) {
	client := testutil.StartRedis(t)
	ctx := context.Background()
	repo := NewRedisGameRepository(client, time.Minute)

	require.NoError(t, repo.Create(ctx, "ttl", game.New()))

	ttl, err := client.TTL(ctx, gameKey("ttl")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisGameRepository_RejectsCorruptSnapshot(t *testing.T) {
	client := testutil.StartRedis(t)
	ctx := context.Background()
	repo := NewRedisGameRepository(client, 0)

	// Two X marks and no O cannot come out of legal play.
	require.NoError(t, client.HSet(ctx, gameKey("bad"), map[string]interface{}{
		fieldBoard:    `[["X","X",""],["","",""],["","",""]]`,
		fieldNextTurn: "O",
		fieldStatus:   string(game.InProgress),
		fieldWinner:   "",
		fieldRevision: 3,
	}).Err())

	_, err := repo.FindByID(ctx, "bad")
	assert.ErrorIs(t, err, game.ErrInvalidState)
}

func TestDecodeState_Missing(t *testing.T) {
	_, err := decodeState(map[string]string{})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestDecodeState_Revision(t *testing.T) {
	valid := map[string]string{
		fieldBoard:    `[["","",""],["","",""],["","",""]]`,
		fieldNextTurn: "X",
		fieldStatus:   string(game.InProgress),
		fieldRevision: "7",
	}
	snap, err := decodeState(valid)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{State: game.New(), Revision: 7}, snap)

	for _, bad := range []string{"", "zero", "0", "-2"} {
		data := maps.Clone(valid)
		data[fieldRevision] = bad
		_, err := decodeState(data)
		assert.ErrorIs(t, err, game.ErrInvalidState, "revision %q", bad)
	}
}
