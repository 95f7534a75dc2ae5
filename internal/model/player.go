package model

import "github.com/benbeisheim/chessbot-backend/internal/engine"

type Player struct {
	ID string
}

type ClientPlayer struct {
	ID    string      `json:"name"`
	Color PlayerColor `json:"color"`
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func colorOf(c engine.Color) PlayerColor {
	if c == engine.White {
		return PlayerColorWhite
	}
	return PlayerColorBlack
}
