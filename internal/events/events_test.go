package events

import (
	"ctchen222/tictactoe-solo/internal/game"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameChannel(t *testing.T) {
	channel := GameChannel("abc")
	assert.Equal(t, "channel:game:abc", channel)

	id, ok := GameIDFromChannel(channel)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = GameIDFromChannel(GameChannelPrefix)
	assert.False(t, ok)
	_, ok = GameIDFromChannel("channel:events")
	assert.False(t, ok)
}

func TestStateChanged(t *testing.T) {
	state := game.New()
	for _, m := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
		var err error
		state, err = game.PlaceMark(state, m[0], m[1])
		require.NoError(t, err)
	}

	data, err := NewStateChanged("g1", 6, state)
	require.NoError(t, err)

	payload, err := DecodeStateChanged(data)
	require.NoError(t, err)
	assert.Equal(t, "g1", payload.GameID)
	assert.Equal(t, int64(6), payload.Revision)
	assert.Equal(t, state, payload.State)
}

func TestDecodeStateChanged_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"other event":   `{"event":"match_made","payload":{}}`,
		"bad payload":   `{"event":"state_changed","payload":[]}`,
		"invalid state": `{"event":"state_changed","payload":{"game_id":"g","state":{"board":[["X","X",""],["","",""],["","",""]],"current_turn":"O","status":{"kind":"in_progress"}}}}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeStateChanged([]byte(data))
			assert.Error(t, err)
		})
	}
}
