package models

import (
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/view"
)

// MoveRequest defines the structure for a place-mark request. Pointers keep
// a zero coordinate distinguishable from a missing one.
type MoveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// GameStateResponse is a game state as rendered for API clients.
type GameStateResponse struct {
	Board       [][]game.PlayerMark `json:"board"`
	Playable    [][]bool            `json:"playable"`
	CurrentTurn game.PlayerMark     `json:"current_turn"`
	Status      game.StatusKind     `json:"status"`
	Winner      game.PlayerMark     `json:"winner,omitempty"`
	WinningLine []game.Position     `json:"winning_line,omitempty"`
	Message     string              `json:"message"`
}

// NewGameStateResponse renders s.
func NewGameStateResponse(s game.State) GameStateResponse {
	resp := GameStateResponse{
		Board:       game.BoardArrayToSlice(s.Board),
		Playable:    view.PlayableCells(s),
		CurrentTurn: s.CurrentTurn,
		Status:      s.Status.Kind,
		Winner:      s.Status.Winner,
		Message:     view.StatusMessage(s),
	}
	if s.Status.Line != nil {
		resp.WinningLine = s.Status.Line[:]
	}
	return resp
}

// NewGameResponse is returned when a session starts.
type NewGameResponse struct {
	GameID string            `json:"game_id"`
	Token  string            `json:"token"`
	State  GameStateResponse `json:"state"`
}
