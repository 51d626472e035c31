package model

import "github.com/MrPicklePinosaur/shogiman/internal/shogi"

// ComputerID is the player id the computer opponent sits under.
const ComputerID = "computer"

// Player is someone waiting in the matchmaking queue.
type Player struct {
	ID string
}

type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    shogi.Color `json:"color"`
	TimeLeft int         `json:"timeLeft"`
	Computer bool        `json:"computer"`
}
