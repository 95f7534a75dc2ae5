package engine

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return ""
}

// Piece is a colored piece. The zero value is an empty cell.
type Piece struct {
	Color Color     `json:"color"`
	Type  PieceType `json:"type"`
}

var Empty = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Letter returns the FEN letter of the piece, uppercase for white.
func (p Piece) Letter() byte {
	var b byte
	switch p.Type {
	case Pawn:
		b = 'p'
	case Rook:
		b = 'r'
	case Knight:
		b = 'n'
	case Bishop:
		b = 'b'
	case Queen:
		b = 'q'
	case King:
		b = 'k'
	default:
		return '.'
	}
	if p.Color == White {
		b -= 'a' - 'A'
	}
	return b
}

func (p Piece) String() string {
	return string(p.Letter())
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
