package rules

import "github.com/MrPicklePinosaur/shogiman/internal/shogi"

type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return "ongoing"
}

// HasLegalMove reports whether any piece of color c has a destination.
func HasLegalMove(o Oracle, pos *shogi.Position, c shogi.Color) bool {
	for _, sq := range pos.Occupied(c) {
		pc, _ := pos.PieceAt(sq)
		if len(o.LegalDestinations(pos, sq, pc)) > 0 {
			return true
		}
	}
	return false
}

// Evaluate classifies the position for the side to move. Without a
// CheckDetector a side with no moves is reported as checkmated.
func Evaluate(o Oracle, pos *shogi.Position) Status {
	side := pos.SideToMove()
	if HasLegalMove(o, pos, side) {
		return Ongoing
	}
	if cd, ok := o.(CheckDetector); ok && !cd.InCheck(pos, side) {
		return Stalemate
	}
	return Checkmate
}
