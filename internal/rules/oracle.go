// Package rules decides which board moves are legal and applies them.
package rules

import (
	"errors"

	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

var ErrIllegalMove = errors.New("illegal move")

// Oracle answers move questions about a position. Implementations must not
// modify pos in LegalDestinations, and must leave pos untouched when ApplyMove
// fails.
type Oracle interface {
	LegalDestinations(pos *shogi.Position, sq shogi.Square, piece shogi.Piece) []shogi.Square
	ApplyMove(pos *shogi.Position, m shogi.Move) error
}

// CheckDetector is implemented by oracles that can tell whether a king is
// attacked. It is used to tell checkmate from stalemate.
type CheckDetector interface {
	InCheck(pos *shogi.Position, c shogi.Color) bool
}
