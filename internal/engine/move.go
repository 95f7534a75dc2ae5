package engine

import "golang.org/x/exp/slices"

// Move is one ply. The moved and captured pieces are recorded when the move
// is built and never looked up again, so history replays report the pieces
// as they stood at the time.
type Move struct {
	From     Square
	To       Square
	Moved    Piece
	Captured Piece
}

func NewMove(from, to Square, board *Board) Move {
	return Move{
		From:     from,
		To:       to,
		Moved:    board.At(from),
		Captured: board.At(to),
	}
}

// Equal compares start and end squares only.
func (m Move) Equal(other Move) bool {
	return m.From == other.From && m.To == other.To
}

// ID packs the squares into a single comparable integer.
func (m Move) ID() int {
	return m.From.Rank*1000 + m.From.File*100 + m.To.Rank*10 + m.To.File
}

func (m Move) IsCapture() bool {
	return !m.Captured.IsEmpty()
}

// IsPromotion reports a pawn arriving on the far rank. Promotion is not
// supported, so such moves must be refused before they reach MakeMove.
func (m Move) IsPromotion() bool {
	if m.Moved.Type != Pawn {
		return false
	}
	return (m.Moved.Color == White && m.To.Rank == 0) || (m.Moved.Color == Black && m.To.Rank == 7)
}

// Notation renders the move as start and end squares, e.g. "e2e4".
func (m Move) Notation() string {
	return m.From.String() + m.To.String()
}

func (m Move) String() string {
	return m.Notation()
}

func ContainsMove(moves []Move, m Move) bool {
	return slices.ContainsFunc(moves, m.Equal)
}

// FindMove returns the entry of moves equal to (from, to).
func FindMove(moves []Move, from, to Square) (Move, bool) {
	i := slices.IndexFunc(moves, func(m Move) bool {
		return m.From == from && m.To == to
	})
	if i < 0 {
		return Move{}, false
	}
	return moves[i], true
}
