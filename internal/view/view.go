// Package view turns game states into what players see: status lines,
// playable cells and a plain-text board.
package view

import (
	"ctchen222/tictactoe-solo/internal/game"
	"fmt"
	"io"
	"strings"
)

// StatusMessage is the one-line summary shown above the board.
func StatusMessage(s game.State) string {
	switch s.Status.Kind {
	case game.Won:
		return fmt.Sprintf("Player %s wins!", s.Status.Winner)
	case game.Draw:
		return "It's a draw!"
	default:
		return fmt.Sprintf("Player %s's turn", s.CurrentTurn)
	}
}

// Playable reports whether clicking (row, col) could be a legal move.
func Playable(s game.State, row, col int) bool {
	return !s.IsOver() && game.IsValidMove(s.Board, row, col)
}

// PlayableCells is Playable for every cell, indexed [row][col].
func PlayableCells(s game.State) [][]bool {
	cells := make([][]bool, len(s.Board))
	for r := range s.Board {
		cells[r] = make([]bool, len(s.Board[r]))
		for c := range s.Board[r] {
			cells[r][c] = Playable(s, r, c)
		}
	}
	return cells
}

// RenderBoard writes the board with row and column indexes. Cells of the
// winning line are bracketed.
func RenderBoard(w io.Writer, s game.State) error {
	winning := map[game.Position]bool{}
	if s.Status.Line != nil {
		for _, p := range s.Status.Line {
			winning[p] = true
		}
	}

	var b strings.Builder
	b.WriteString("     0   1   2\n")
	for r := range [3]int{} {
		cells := make([]string, 3)
		for c := range [3]int{} {
			mark := string(s.Board[r][c])
			if mark == "" {
				mark = " "
			}
			if winning[game.Position{Row: r, Col: c}] {
				cells[c] = "[" + mark + "]"
			} else {
				cells[c] = " " + mark + " "
			}
		}
		fmt.Fprintf(&b, "  %d %s\n", r, strings.Join(cells, "|"))
		if r < 2 {
			b.WriteString("    ---+---+---\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
