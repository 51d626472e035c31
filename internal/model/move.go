package model

import "github.com/MrPicklePinosaur/shogiman/internal/shogi"

// WSMove is a move as sent by a client.
type WSMove struct {
	From    shogi.Square `json:"from"`
	To      shogi.Square `json:"to"`
	Promote bool         `json:"promote"`
}

func (m WSMove) Move() shogi.Move {
	return shogi.Move{From: m.From, To: m.To, Promote: m.Promote}
}

// Ply is one committed move in the game history.
type Ply struct {
	Number        int          `json:"number"`
	Piece         shogi.Piece  `json:"piece"`
	From          shogi.Square `json:"from"`
	To            shogi.Square `json:"to"`
	CapturedPiece *shogi.Piece `json:"capturedPiece"`
	Promotion     bool         `json:"promotion"`
	Notation      string       `json:"notation"`
}

type SimpleMove struct {
	From shogi.Square `json:"from"`
	To   shogi.Square `json:"to"`
}
