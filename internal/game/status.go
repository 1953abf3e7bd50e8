package game

// StatusKind is the tag of a Status.
type StatusKind string

const (
	InProgress StatusKind = "in_progress"
	Won        StatusKind = "won"
	Draw       StatusKind = "draw"
)

// Position addresses one cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Line is three cells that win when they hold the same mark.
type Line [3]Position

var lines = [8]Line{
	// rows
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	// columns
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	// diagonals
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Lines returns the eight winning lines: rows, then columns, then the main
// and anti-diagonal.
func Lines() [8]Line {
	return lines
}

// Status is the derived outcome of a board. Winner and Line are only set
// when Kind is Won.
type Status struct {
	Kind   StatusKind `json:"kind"`
	Winner PlayerMark `json:"winner,omitempty"`
	Line   *Line      `json:"line,omitempty"`
}

// IsOver reports whether the status is terminal.
func (s Status) IsOver() bool {
	return s.Kind == Won || s.Kind == Draw
}

// Evaluate computes the status of board. The first complete line in
// Lines order decides the winner.
func Evaluate(board Board) Status {
	for i := range lines {
		if mark, ok := lineOwner(board, lines[i]); ok {
			line := lines[i]
			return Status{Kind: Won, Winner: mark, Line: &line}
		}
	}
	if board.IsFull() {
		return Status{Kind: Draw}
	}
	return Status{Kind: InProgress}
}

func lineOwner(board Board, line Line) (PlayerMark, bool) {
	a := board[line[0].Row][line[0].Col]
	b := board[line[1].Row][line[1].Col]
	c := board[line[2].Row][line[2].Col]
	if a != None && a == b && b == c {
		return a, true
	}
	return None, false
}
