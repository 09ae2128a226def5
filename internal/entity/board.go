package entity

type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

const BoardSize = 9

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]Mark

type Outcome int

const (
	Ongoing Outcome = iota
	XWins
	OWins
	Draw
)

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// DetermineOutcome - checks the board for a completed line, then for a full board.
func DetermineOutcome(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			if a == PlayerX {
				return XWins
			}
			return OWins
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == EmptyCell {
			return Ongoing
		}
	}

	return Draw
}

// Winner - returns the winning mark, if any.
func (that Outcome) Winner() (Mark, bool) {
	switch that {
	case XWins:
		return PlayerX, true
	case OWins:
		return PlayerO, true
	default:
		return EmptyCell, false
	}
}

func (that Outcome) IsTerminal() bool {
	return that != Ongoing
}

func (that Outcome) String() string {
	switch that {
	case XWins:
		return "X wins"
	case OWins:
		return "O wins"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// IsValidCell - reports whether cell addresses the board.
func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}
