package model

import "errors"

var (
	ErrNoLegalMoves  = errors.New("no legal moves")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game is over")
	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player not in game")
	ErrNotAuthorized = errors.New("not authorized to join this game")
)
