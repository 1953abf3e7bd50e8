package game

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		board  Board
		want   StatusKind
		winner PlayerMark
	}{
		{
			name:  "No winner - empty board",
			board: Board{},
			want:  InProgress,
		},
		{
			name: "No winner - partial board",
			board: Board{
				{PlayerX, None, None},
				{None, PlayerO, None},
				{None, None, None},
			},
			want: InProgress,
		},
		{
			name: "X wins - first row",
			board: Board{
				{PlayerX, PlayerX, PlayerX},
				{None, PlayerO, None},
				{None, None, PlayerO},
			},
			want:   Won,
			winner: PlayerX,
		},
		{
			name: "O wins - second column",
			board: Board{
				{PlayerX, PlayerO, None},
				{PlayerX, PlayerO, None},
				{None, PlayerO, PlayerX},
			},
			want:   Won,
			winner: PlayerO,
		},
		{
			name: "X wins - main diagonal",
			board: Board{
				{PlayerX, PlayerO, None},
				{None, PlayerX, PlayerO},
				{None, None, PlayerX},
			},
			want:   Won,
			winner: PlayerX,
		},
		{
			name: "O wins - anti-diagonal",
			board: Board{
				{PlayerX, PlayerX, PlayerO},
				{None, PlayerO, None},
				{PlayerO, None, PlayerX},
			},
			want:   Won,
			winner: PlayerO,
		},
		{
			name: "Full board without a line is a draw",
			board: Board{
				{PlayerX, PlayerO, PlayerX},
				{PlayerX, PlayerO, PlayerO},
				{PlayerO, PlayerX, PlayerX},
			},
			want: Draw,
		},
		{
			name: "Full board with a line is a win, not a draw",
			board: Board{
				{PlayerX, PlayerX, PlayerX},
				{PlayerO, PlayerO, PlayerX},
				{PlayerO, PlayerX, PlayerO},
			},
			want:   Won,
			winner: PlayerX,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.board)
			if got.Kind != tt.want || got.Winner != tt.winner {
				t.Errorf("Evaluate() got = %s/%q, want %s/%q", got.Kind, got.Winner, tt.want, tt.winner)
			}
			if got.Kind == Won && got.Line == nil {
				t.Errorf("Evaluate() returned a win without its line")
			}
			if got.Kind != Won && got.Line != nil {
				t.Errorf("Evaluate() returned line %v for status %s", *got.Line, got.Kind)
			}
		})
	}
}

func TestEvaluate_EveryLineWinsForBothPlayers(t *testing.T) {
	for i, line := range Lines() {
		for _, mark := range []PlayerMark{PlayerX, PlayerO} {
			var board Board
			for _, pos := range line {
				board[pos.Row][pos.Col] = mark
			}
			got := Evaluate(board)
			if got.Kind != Won || got.Winner != mark {
				t.Errorf("line %d for %s: got %s/%q", i, mark, got.Kind, got.Winner)
				continue
			}
			if *got.Line != line {
				t.Errorf("line %d for %s: reported line %v", i, mark, *got.Line)
			}
		}
	}
}

func TestNewAndReset(t *testing.T) {
	played := New()
	for _, m := range [][2]int{{0, 0}, {1, 1}, {0, 1}, {2, 2}, {0, 2}} {
		var err error
		played, err = PlaceMark(played, m[0], m[1])
		if err != nil {
			t.Fatalf("PlaceMark(%d, %d) failed: %v", m[0], m[1], err)
		}
	}
	if !played.IsOver() {
		t.Fatalf("expected the game to be over, got %s", played.Status.Kind)
	}

	for name, s := range map[string]State{"New": New(), "Reset after win": Reset()} {
		t.Run(name, func(t *testing.T) {
			if s.Board != (Board{}) {
				t.Errorf("board is not empty: %v", s.Board)
			}
			if s.CurrentTurn != PlayerX {
				t.Errorf("CurrentTurn = %q, want X", s.CurrentTurn)
			}
			if s.Status.Kind != InProgress {
				t.Errorf("Status = %s, want in_progress", s.Status.Kind)
			}
		})
	}

	if played.Board == (Board{}) {
		t.Errorf("Reset cleared the state it replaced")
	}
}

func TestPlaceMark_RowWin(t *testing.T) {
	s := New()
	moves := [][2]int{{0, 0}, {1, 1}, {0, 1}, {2, 2}, {0, 2}}
	for i, m := range moves {
		var err error
		s, err = PlaceMark(s, m[0], m[1])
		if err != nil {
			t.Fatalf("move %d (%d, %d) failed: %v", i+1, m[0], m[1], err)
		}
		if i < len(moves)-1 && s.Status.Kind != InProgress {
			t.Fatalf("move %d ended the game early: %s", i+1, s.Status.Kind)
		}
	}

	if s.Status.Kind != Won || s.Status.Winner != PlayerX {
		t.Fatalf("status = %s/%q, want won/X", s.Status.Kind, s.Status.Winner)
	}
	if *s.Status.Line != Lines()[0] {
		t.Errorf("winning line = %v, want row 0", *s.Status.Line)
	}
	if s.CurrentTurn != PlayerX {
		t.Errorf("CurrentTurn after the win = %q, want it left on X", s.CurrentTurn)
	}
}

func TestPlaceMark_Draw(t *testing.T) {
	s := New()
	moves := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2}}
	for i, m := range moves {
		var err error
		s, err = PlaceMark(s, m[0], m[1])
		if err != nil {
			t.Fatalf("move %d (%d, %d) failed: %v", i+1, m[0], m[1], err)
		}
		if i < len(moves)-1 && s.Status.Kind != InProgress {
			t.Fatalf("move %d ended the game early: %s", i+1, s.Status.Kind)
		}
	}

	if s.Status.Kind != Draw {
		t.Fatalf("status = %s, want draw", s.Status.Kind)
	}
	if !s.Board.IsFull() {
		t.Errorf("board should be full after a draw")
	}
	if s.Status.Winner != None {
		t.Errorf("draw has winner %q", s.Status.Winner)
	}
}

func TestPlaceMark_IllegalMoves(t *testing.T) {
	won := New()
	for _, m := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
		won, _ = PlaceMark(won, m[0], m[1])
	}
	started, _ := PlaceMark(New(), 0, 0)

	tests := []struct {
		name     string
		state    State
		row, col int
		kind     IllegalMoveKind
		sentinel error
	}{
		{"Occupied cell", started, 0, 0, CellOccupied, ErrCellOccupied},
		{"Row too large", New(), 3, 0, OutOfRange, ErrOutOfRange},
		{"Column too large", New(), 0, 3, OutOfRange, ErrOutOfRange},
		{"Negative row", New(), -1, 1, OutOfRange, ErrOutOfRange},
		{"Negative column", started, 1, -1, OutOfRange, ErrOutOfRange},
		{"Empty cell after a win", won, 2, 2, GameOver, ErrGameOver},
		{"Occupied cell after a win", won, 0, 0, GameOver, ErrGameOver},
		{"Out of range after a win", won, 5, 5, GameOver, ErrGameOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlaceMark(tt.state, tt.row, tt.col)
			if err == nil {
				t.Fatalf("PlaceMark(%d, %d) succeeded, want %s", tt.row, tt.col, tt.kind)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v does not match %v", err, tt.sentinel)
			}
			kind, ok := KindOf(err)
			if !ok || kind != tt.kind {
				t.Errorf("KindOf() = %q, %v, want %q", kind, ok, tt.kind)
			}
			if got != tt.state {
				t.Errorf("state changed on an illegal move")
			}
		})
	}
}

func TestPlaceMark_SamePlaceTwice(t *testing.T) {
	first, err := PlaceMark(New(), 0, 0)
	if err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	second, err := PlaceMark(first, 0, 0)
	if !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("second move error = %v, want %v", err, ErrCellOccupied)
	}
	if second.Board != first.Board || second.CurrentTurn != PlayerO {
		t.Errorf("board or turn changed after the rejected move")
	}
}

func TestPlaceMark_DoesNotMutateInput(t *testing.T) {
	before := New()
	after, err := PlaceMark(before, 1, 1)
	if err != nil {
		t.Fatalf("PlaceMark failed: %v", err)
	}
	if before.Board[1][1] != None || before.CurrentTurn != PlayerX {
		t.Errorf("input state was mutated")
	}
	if after.Board[1][1] != PlayerX || after.CurrentTurn != PlayerO {
		t.Errorf("after = %+v, want X at center and O to move", after)
	}
}

// Random legal playouts: X moves on odd turns, the mark counts never drift
// apart by more than one and every intermediate state validates.
func TestPlaceMark_RandomPlayouts(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for game := 0; game < 200; game++ {
		s := New()
		for n := 1; !s.IsOver(); n++ {
			wantTurn := PlayerO
			if n%2 == 1 {
				wantTurn = PlayerX
			}
			if s.CurrentTurn != wantTurn {
				t.Fatalf("game %d move %d: turn %q, want %q", game, n, s.CurrentTurn, wantTurn)
			}

			var free []Position
			for r := range [3]int{} {
				for c := range [3]int{} {
					if IsValidMove(s.Board, r, c) {
						free = append(free, Position{r, c})
					}
				}
			}
			pick := free[rng.IntN(len(free))]

			var err error
			s, err = PlaceMark(s, pick.Row, pick.Col)
			if err != nil {
				t.Fatalf("game %d move %d: %v", game, n, err)
			}
			if err := s.Validate(); err != nil {
				t.Fatalf("game %d move %d: %v", game, n, err)
			}
		}
	}
}

func TestIsValidMove(t *testing.T) {
	board := Board{}
	if !IsValidMove(board, 0, 0) {
		t.Errorf("(0, 0) should be valid on an empty board")
	}
	if IsValidMove(board, 3, 0) {
		t.Errorf("(3, 0) should be out of range")
	}
	board[2][2] = PlayerO
	if IsValidMove(board, 2, 2) {
		t.Errorf("(2, 2) is occupied")
	}
}

func TestPlayerMarkNext(t *testing.T) {
	if PlayerX.Next() != PlayerO || PlayerO.Next() != PlayerX {
		t.Errorf("X and O should alternate")
	}
	if None.Next() != None {
		t.Errorf("None has no opponent")
	}
}

func TestStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{"Fresh game", New(), false},
		{
			name: "Too many X marks",
			state: State{
				Board:       Board{{PlayerX, PlayerX, None}, {}, {}},
				CurrentTurn: PlayerO,
				Status:      Status{Kind: InProgress},
			},
			wantErr: true,
		},
		{
			name: "O moved first",
			state: State{
				Board:       Board{{PlayerO, None, None}, {}, {}},
				CurrentTurn: PlayerX,
				Status:      Status{Kind: InProgress},
			},
			wantErr: true,
		},
		{
			name: "Wrong player to move",
			state: State{
				Board:       Board{{PlayerX, None, None}, {}, {}},
				CurrentTurn: PlayerX,
				Status:      Status{Kind: InProgress},
			},
			wantErr: true,
		},
		{
			name: "Status disagrees with board",
			state: State{
				Board:       Board{{PlayerX, PlayerX, PlayerX}, {PlayerO, PlayerO, None}, {}},
				CurrentTurn: PlayerX,
				Status:      Status{Kind: InProgress},
			},
			wantErr: true,
		},
		{
			name: "Unknown mark",
			state: State{
				Board:       Board{{"Z", None, None}, {}, {}},
				CurrentTurn: PlayerO,
				Status:      Status{Kind: InProgress},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidState) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidState", err)
			}
		})
	}
}

func TestBoardArrayToSlice(t *testing.T) {
	board := Board{{PlayerX, None, None}, {None, PlayerO, None}, {}}
	rows := BoardArrayToSlice(board)
	if len(rows) != 3 || len(rows[0]) != 3 {
		t.Fatalf("got %dx%d rows", len(rows), len(rows[0]))
	}
	if rows[0][0] != PlayerX || rows[1][1] != PlayerO || rows[2][2] != None {
		t.Errorf("unexpected rows %v", rows)
	}
	rows[0][0] = PlayerO
	if board[0][0] != PlayerX {
		t.Errorf("slice aliases the board")
	}
}
