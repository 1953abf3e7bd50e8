package events

import (
	"ctchen222/tictactoe-solo/internal/game"
	"encoding/json"
	"fmt"
	"strings"
)

// Pub/Sub channel constants
const (
	GameChannelPrefix  = "channel:game:"
	GameChannelPattern = GameChannelPrefix + "*"
)

// Event types.
const (
	TypeStateChanged = "state_changed"
)

// GameChannel is the Pub/Sub channel carrying gameID's events.
func GameChannel(gameID string) string {
	return GameChannelPrefix + gameID
}

// GameIDFromChannel is the inverse of GameChannel.
func GameIDFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, GameChannelPrefix)
	return id, ok && id != ""
}

// Event represents a message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// StateChangedPayload is the payload for the "state_changed" event.
type StateChangedPayload struct {
	GameID   string     `json:"game_id"`
	Revision int64      `json:"revision"`
	State    game.State `json:"state"`
}

// NewStateChanged encodes a "state_changed" event.
func NewStateChanged(gameID string, revision int64, state game.State) ([]byte, error) {
	payload, err := json.Marshal(StateChangedPayload{GameID: gameID, Revision: revision, State: state})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: TypeStateChanged, Payload: payload})
}

// DecodeStateChanged parses a "state_changed" event and checks the state
// it carries.
func DecodeStateChanged(data []byte) (StateChangedPayload, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return StateChangedPayload{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type != TypeStateChanged {
		return StateChangedPayload{}, fmt.Errorf("unexpected event type %q", event.Type)
	}

	var payload StateChangedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return StateChangedPayload{}, fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}
	if err := payload.State.Validate(); err != nil {
		return StateChangedPayload{}, err
	}
	return payload, nil
}
