// Package cli is the terminal front end: two players share one keyboard.
package cli

import (
	"bufio"
	"context"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/view"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const helpText = `Commands:
  <row> <col>   place the current player's mark, e.g. "1 2"
  reset         start a new game
  help          show this help
  quit          leave
`

var errBadCommand = errors.New("unrecognised command")

type command struct {
	kind     string
	row, col int
}

const (
	cmdMove  = "move"
	cmdReset = "reset"
	cmdHelp  = "help"
	cmdQuit  = "quit"
)

// Session holds the state of one terminal game.
type Session struct {
	in    *bufio.Scanner
	out   io.Writer
	state game.State
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{
		in:    bufio.NewScanner(in),
		out:   out,
		state: game.New(),
	}
}

// State returns the current game state.
func (s *Session) State() game.State {
	return s.state
}

// Run reads commands until quit, end of input or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprint(s.out, helpText)
	if err := s.render(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprintf(s.out, "%s> ", s.prompt())
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		cmd, err := parseCommand(s.in.Text())
		if err != nil {
			fmt.Fprintf(s.out, "%v. Type help for the list of commands.\n", err)
			continue
		}

		switch cmd.kind {
		case cmdQuit:
			fmt.Fprintln(s.out, "Bye!")
			return nil
		case cmdHelp:
			fmt.Fprint(s.out, helpText)
			continue
		case cmdReset:
			s.state = game.Reset()
			slog.DebugContext(ctx, "Game reset")
		case cmdMove:
			next, err := game.PlaceMark(s.state, cmd.row, cmd.col)
			if err != nil {
				fmt.Fprintln(s.out, describe(err))
				continue
			}
			s.state = next
			slog.DebugContext(ctx, "Mark placed", "move.row", cmd.row, "move.col", cmd.col, "game.status", s.state.Status.Kind)
		}

		if err := s.render(); err != nil {
			return err
		}
	}
}

func (s *Session) render() error {
	fmt.Fprintln(s.out)
	if err := view.RenderBoard(s.out, s.state); err != nil {
		return err
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, view.StatusMessage(s.state))
	if s.state.IsOver() {
		fmt.Fprintln(s.out, "Type reset to play again or quit to leave.")
	}
	return nil
}

func (s *Session) prompt() string {
	if s.state.IsOver() {
		return "game over"
	}
	return string(s.state.CurrentTurn)
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ReplaceAll(strings.ToLower(line), ",", " "))
	if len(fields) == 0 {
		return command{}, errBadCommand
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return command{kind: cmdQuit}, nil
	case "reset", "new":
		return command{kind: cmdReset}, nil
	case "h", "help", "?":
		return command{kind: cmdHelp}, nil
	}

	if len(fields) != 2 {
		return command{}, errBadCommand
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return command{}, fmt.Errorf("%w: row %q is not a number", errBadCommand, fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return command{}, fmt.Errorf("%w: column %q is not a number", errBadCommand, fields[1])
	}
	return command{kind: cmdMove, row: row, col: col}, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, game.ErrGameOver):
		return "The game is over. Type reset to play again."
	case errors.Is(err, game.ErrCellOccupied):
		return "That cell is already taken."
	case errors.Is(err, game.ErrOutOfRange):
		return "Row and column must be between 0 and 2."
	default:
		return err.Error()
	}
}
