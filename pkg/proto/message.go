package proto

import (
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/view"
)

// Client message types.
const (
	TypeMove  = "move"
	TypeReset = "reset"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset"`
	Position []int  `json:"position,omitempty" validate:"required_if=Type move,omitempty,len=2"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type        string              `json:"type" validate:"required"`
	Reason      string              `json:"reason,omitempty"`
	Kind        string              `json:"kind,omitempty"`
	Revision    int64               `json:"revision,omitempty"`
	Board       [][]game.PlayerMark `json:"board,omitempty"`
	Playable    [][]bool            `json:"playable,omitempty"`
	Next        game.PlayerMark     `json:"next,omitempty"`
	Status      game.StatusKind     `json:"status,omitempty"`
	Winner      game.PlayerMark     `json:"winner,omitempty"`
	WinningLine []game.Position     `json:"winning_line,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// NewUpdateMessage renders state, stored at revision, as an "update" message.
func NewUpdateMessage(state game.State, revision int64) *ServerToClientMessage {
	msg := &ServerToClientMessage{
		Type:     TypeUpdate,
		Revision: revision,
		Board:    game.BoardArrayToSlice(state.Board),
		Playable: view.PlayableCells(state),
		Next:     state.CurrentTurn,
		Status:   state.Status.Kind,
		Winner:   state.Status.Winner,
		Message:  view.StatusMessage(state),
	}
	if state.Status.Line != nil {
		msg.WinningLine = state.Status.Line[:]
	}
	return msg
}

// NewErrorMessage reports a rejected client message.
func NewErrorMessage(kind, reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Kind: kind, Reason: reason}
}
