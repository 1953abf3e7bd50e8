package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board boundaries
	BorderMin = 0
	BorderMax = 2
)

// Next returns the opponent of the mark. None has no opponent.
func (m PlayerMark) Next() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// IsPlayer reports whether m is X or O.
func (m PlayerMark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

// Board is the 3x3 grid addressed as Board[row][col]. An empty cell holds None.
type Board [3][3]PlayerMark

// State is everything the rules need to judge the next move.
type State struct {
	Board       Board      `json:"board"`
	CurrentTurn PlayerMark `json:"current_turn"`
	Status      Status     `json:"status"`
}

// New returns the initial state: an empty board with X to move.
func New() State {
	return State{
		Board:       Board{},
		CurrentTurn: PlayerX,
		Status:      Status{Kind: InProgress},
	}
}

// Reset discards s and returns a brand-new initial state.
func Reset() State {
	return New()
}

// IsOver reports whether the game has reached a terminal status.
func (s State) IsOver() bool {
	return s.Status.IsOver()
}

// PlaceMark puts the current player's mark at (row, col) and returns the
// resulting state. On an illegal move the input state is returned untouched
// together with an *IllegalMoveError.
func PlaceMark(s State, row, col int) (State, error) {
	if s.Status.IsOver() {
		return s, &IllegalMoveError{Kind: GameOver, Row: row, Col: col}
	}
	if !InRange(row, col) {
		return s, &IllegalMoveError{Kind: OutOfRange, Row: row, Col: col}
	}
	if s.Board[row][col] != None {
		return s, &IllegalMoveError{Kind: CellOccupied, Row: row, Col: col}
	}

	next := s
	next.Board[row][col] = s.CurrentTurn
	next.Status = Evaluate(next.Board)
	if !next.Status.IsOver() {
		next.CurrentTurn = s.CurrentTurn.Next()
	}
	return next, nil
}

// InRange reports whether (row, col) addresses a cell of the board.
func InRange(row, col int) bool {
	return row >= BorderMin && row <= BorderMax && col >= BorderMin && col <= BorderMax
}

// IsValidMove reports whether (row, col) is on the board and empty.
// It does not look at the game status.
func IsValidMove(board Board, row, col int) bool {
	return InRange(row, col) && board[row][col] == None
}

// IsFull reports whether every cell is occupied.
func (b Board) IsFull() bool {
	for r := range [3]int{} {
		for c := range [3]int{} {
			if b[r][c] == None {
				return false
			}
		}
	}
	return true
}

// Count returns the number of cells holding mark.
func (b Board) Count(mark PlayerMark) int {
	n := 0
	for r := range [3]int{} {
		for c := range [3]int{} {
			if b[r][c] == mark {
				n++
			}
		}
	}
	return n
}
