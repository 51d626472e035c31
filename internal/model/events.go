package model

import "github.com/MrPicklePinosaur/shogiman/internal/shogi"

type EventType string

const (
	EventPieceMoved  EventType = "pieceMoved"
	EventTurnChanged EventType = "turnChanged"
	EventGameEnded   EventType = "gameEnded"
)

type Event interface {
	Type() EventType
}

// Listener receives controller events in commit order.
type Listener func(Event)

type PieceMoved struct {
	Piece    shogi.Piece  `json:"piece"`
	From     shogi.Square `json:"from"`
	To       shogi.Square `json:"to"`
	Captured *shogi.Piece `json:"captured"`
	Promoted bool         `json:"promoted"`
	Ply      int          `json:"ply"`
}

func (PieceMoved) Type() EventType { return EventPieceMoved }

type TurnChanged struct {
	Side shogi.Color `json:"side"`
	Ply  int         `json:"ply"`
}

func (TurnChanged) Type() EventType { return EventTurnChanged }

type Result string

const (
	ResultCheckmate  Result = "checkmate"
	ResultStalemate  Result = "stalemate"
	ResultRepetition Result = "repetition"
	ResultResign     Result = "resign"
	ResultTimeout    Result = "timeout"
)

// Outcome describes a finished game. Winner is nil for a draw.
type Outcome struct {
	Result Result       `json:"result"`
	Winner *shogi.Color `json:"winner"`
}

type GameEnded struct {
	Outcome
}

func (GameEnded) Type() EventType { return EventGameEnded }
