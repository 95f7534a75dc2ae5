package engine

// Board is the 8x8 grid, indexed [rank][file].
type Board [8][8]Piece

func (b *Board) At(sq Square) Piece {
	return b[sq.Rank][sq.File]
}

func (b *Board) set(sq Square, p Piece) {
	b[sq.Rank][sq.File] = p
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func newBoard() Board {
	var b Board
	for file := 0; file < 8; file++ {
		b[0][file] = Piece{Color: Black, Type: backRank[file]}
		b[1][file] = Piece{Color: Black, Type: Pawn}
		b[6][file] = Piece{Color: White, Type: Pawn}
		b[7][file] = Piece{Color: White, Type: backRank[file]}
	}
	return b
}

// GameState is a position plus the history that led to it. It is mutated in
// place and is not safe for concurrent use: ValidMoves temporarily plays and
// takes back moves on the receiver.
type GameState struct {
	Board  Board
	ToMove Color

	whiteKing Square
	blackKing Square
	history   []Move

	// Clocks as loaded, before any move in history.
	halfmove int
	fullmove int
}

func NewGameState() *GameState {
	return &GameState{
		Board:     newBoard(),
		ToMove:    White,
		whiteKing: Square{Rank: 7, File: 4},
		blackKing: Square{Rank: 0, File: 4},
		fullmove:  1,
	}
}

func (gs *GameState) KingSquare(c Color) Square {
	if c == White {
		return gs.whiteKing
	}
	return gs.blackKing
}

func (gs *GameState) setKingSquare(c Color, sq Square) {
	if c == White {
		gs.whiteKing = sq
	} else {
		gs.blackKing = sq
	}
}

// History returns a copy of the applied moves, oldest first.
func (gs *GameState) History() []Move {
	out := make([]Move, len(gs.history))
	copy(out, gs.history)
	return out
}

// LastMove returns the most recently applied move.
func (gs *GameState) LastMove() (Move, bool) {
	if len(gs.history) == 0 {
		return Move{}, false
	}
	return gs.history[len(gs.history)-1], true
}

// MakeMove applies m without checking it. Callers pass moves taken from
// ValidMoves.
func (gs *GameState) MakeMove(m Move) {
	gs.Board.set(m.From, Empty)
	gs.Board.set(m.To, m.Moved)
	gs.history = append(gs.history, m)
	gs.ToMove = gs.ToMove.Opponent()
	if m.Moved.Type == King {
		gs.setKingSquare(m.Moved.Color, m.To)
	}
}

// UndoMove takes back the last move. It does nothing when there is no history.
func (gs *GameState) UndoMove() {
	if len(gs.history) == 0 {
		return
	}
	m := gs.history[len(gs.history)-1]
	gs.history = gs.history[:len(gs.history)-1]
	gs.Board.set(m.From, m.Moved)
	gs.Board.set(m.To, m.Captured)
	gs.ToMove = gs.ToMove.Opponent()
	if m.Moved.Type == King {
		gs.setKingSquare(m.Moved.Color, m.From)
	}
}

// HalfmoveClock counts plies since the last pawn move or capture.
func (gs *GameState) HalfmoveClock() int {
	for i := len(gs.history) - 1; i >= 0; i-- {
		if m := gs.history[i]; m.Moved.Type == Pawn || m.IsCapture() {
			return len(gs.history) - 1 - i
		}
	}
	return gs.halfmove + len(gs.history)
}

// FullmoveNumber starts at the loaded value and increases after each black move.
func (gs *GameState) FullmoveNumber() int {
	plies := len(gs.history)
	// The side that moved first is ToMove when the ply count is even.
	if (plies%2 == 0) == (gs.ToMove == Black) {
		plies++
	}
	return gs.fullmove + plies/2
}
