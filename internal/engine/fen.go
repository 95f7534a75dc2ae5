package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	chess "github.com/garlicgarrison/go-chess"
)

var ErrInvalidFEN = errors.New("invalid FEN")

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

var fenDefaults = []string{"", "w", "-", "-", "0", "1"}

var (
	fromChessType = map[chess.PieceType]PieceType{
		chess.Pawn:   Pawn,
		chess.Rook:   Rook,
		chess.Knight: Knight,
		chess.Bishop: Bishop,
		chess.Queen:  Queen,
		chess.King:   King,
	}
	toChessPiece = map[Piece]chess.Piece{
		{White, Pawn}: chess.WhitePawn, {White, Rook}: chess.WhiteRook,
		{White, Knight}: chess.WhiteKnight, {White, Bishop}: chess.WhiteBishop,
		{White, Queen}: chess.WhiteQueen, {White, King}: chess.WhiteKing,
		{Black, Pawn}: chess.BlackPawn, {Black, Rook}: chess.BlackRook,
		{Black, Knight}: chess.BlackKnight, {Black, Bishop}: chess.BlackBishop,
		{Black, Queen}: chess.BlackQueen, {Black, King}: chess.BlackKing,
	}
)

// FromFEN builds a GameState from a FEN string. Missing trailing fields are
// filled with defaults, so a bare piece placement is accepted. Castling and
// en passant fields are parsed but ignored. The position must hold exactly
// one king per side, and the side not to move must not be in check.
func FromFEN(fen string) (*GameState, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 || len(fields) > len(fenDefaults) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	fields = append(fields, fenDefaults[len(fields):]...)

	// Checked before decoding: positions without kings cannot be evaluated.
	white, black := strings.Count(fields[0], "K"), strings.Count(fields[0], "k")
	if white != 1 || black != 1 {
		return nil, fmt.Errorf("%w: need one king per side, got %d white and %d black",
			ErrInvalidFEN, white, black)
	}

	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()

	halfmove, err := strconv.Atoi(fields[4])
	if err != nil || halfmove < 0 {
		return nil, fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, fields[4])
	}
	fullmove, err := strconv.Atoi(fields[5])
	if err != nil || fullmove < 1 {
		return nil, fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fields[5])
	}

	gs := &GameState{ToMove: White, halfmove: halfmove, fullmove: fullmove}
	if pos.Turn() == chess.Black {
		gs.ToMove = Black
	}
	for sq, cp := range pos.Board().SquareMap() {
		t, ok := fromChessType[cp.Type()]
		if !ok {
			continue
		}
		p := Piece{Color: White, Type: t}
		if cp.Color() == chess.Black {
			p.Color = Black
		}
		at := Square{Rank: 7 - int(sq.Rank()), File: int(sq.File())}
		gs.Board.set(at, p)
		if t == King {
			gs.setKingSquare(p.Color, at)
		}
	}

	// Otherwise the side to move could capture the king.
	gs.ToMove = gs.ToMove.Opponent()
	exposed := gs.InCheck()
	gs.ToMove = gs.ToMove.Opponent()
	if exposed {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return gs, nil
}

// FEN renders the position. Castling and en passant are always "-"; the
// clocks continue from the values the position was loaded with.
func (gs *GameState) FEN() string {
	squares := make(map[chess.Square]chess.Piece)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			p := gs.Board[rank][file]
			if p.IsEmpty() {
				continue
			}
			squares[chess.Square((7-rank)*8+file)] = toChessPiece[p]
		}
	}
	turn := "w"
	if gs.ToMove == Black {
		turn = "b"
	}
	return fmt.Sprintf("%s %s - - %d %d", chess.NewBoard(squares).String(), turn,
		gs.HalfmoveClock(), gs.FullmoveNumber())
}
