package model

import "errors"

var (
	ErrGameFull             = errors.New("game is full")
	ErrNotInGame            = errors.New("player not in game")
	ErrNotAuthorized        = errors.New("not authorized to join this game")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrNoPiece              = errors.New("no piece at from square")
	ErrIllegalMove          = errors.New("invalid move, not legal")
	ErrPromotionUnsupported = errors.New("pawn promotion is not supported")
	ErrAlreadyQueued        = errors.New("player already in queue")
	ErrQueueTooShort        = errors.New("not enough players queued")
)
