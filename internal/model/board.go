package model

import "github.com/benbeisheim/chessbot-backend/internal/engine"

// BoardState is the drawable view of the grid. Empty squares are null.
type BoardState struct {
	Board             [][]*engine.Piece `json:"board"`
	BlackKingPosition engine.Square     `json:"blackKingPosition"`
	WhiteKingPosition engine.Square     `json:"whiteKingPosition"`
}

func newBoardState(gs *engine.GameState) BoardState {
	view := BoardState{
		Board:             make([][]*engine.Piece, 8),
		BlackKingPosition: gs.KingSquare(engine.Black),
		WhiteKingPosition: gs.KingSquare(engine.White),
	}
	for rank := range view.Board {
		view.Board[rank] = make([]*engine.Piece, 8)
		for file := range view.Board[rank] {
			if p := gs.Board[rank][file]; !p.IsEmpty() {
				view.Board[rank][file] = &p
			}
		}
	}
	return view
}
