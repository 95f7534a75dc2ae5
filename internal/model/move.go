package model

import "github.com/benbeisheim/chessbot-backend/internal/engine"

// WSMove is a move request from a client.
type WSMove struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

type WSSelect struct {
	Square engine.Square `json:"square"`
}

type Ply struct {
	ID            int           `json:"id"`
	Piece         engine.Piece  `json:"piece"`
	From          engine.Square `json:"from"`
	To            engine.Square `json:"to"`
	CapturedPiece *engine.Piece `json:"capturedPiece"`
	Notation      string        `json:"notation"`
}

type SimpleMove struct {
	From engine.Square `json:"from"`
	To   engine.Square `json:"to"`
}

func newPly(m engine.Move) Ply {
	ply := Ply{
		ID:       m.ID(),
		Piece:    m.Moved,
		From:     m.From,
		To:       m.To,
		Notation: m.Notation(),
	}
	if m.IsCapture() {
		captured := m.Captured
		ply.CapturedPiece = &captured
	}
	return ply
}
