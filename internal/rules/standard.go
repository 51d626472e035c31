package rules

import (
	"fmt"
	"sort"

	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

type direction struct {
	df, dr int
}

// Directions are written for Black, who moves toward rank 0.
var (
	kingSteps   = []direction{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	goldSteps   = []direction{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}
	silverSteps = []direction{{-1, -1}, {0, -1}, {1, -1}, {-1, 1}, {1, 1}}
	knightSteps = []direction{{-1, -2}, {1, -2}}
	pawnSteps   = []direction{{0, -1}}
	orthogonal  = []direction{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	diagonal    = []direction{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	lanceSlides = []direction{{0, -1}}
)

type movement struct {
	steps  []direction
	slides []direction
}

var movements = map[shogi.PieceType]movement{
	shogi.King:      {steps: kingSteps},
	shogi.Gold:      {steps: goldSteps},
	shogi.Silver:    {steps: silverSteps},
	shogi.Knight:    {steps: knightSteps},
	shogi.Pawn:      {steps: pawnSteps},
	shogi.Lance:     {slides: lanceSlides},
	shogi.Rook:      {slides: orthogonal},
	shogi.Bishop:    {slides: diagonal},
	shogi.ProRook:   {steps: diagonal, slides: orthogonal},
	shogi.ProBishop: {steps: orthogonal, slides: diagonal},
	shogi.ProSilver: {steps: goldSteps},
	shogi.ProKnight: {steps: goldSteps},
	shogi.ProLance:  {steps: goldSteps},
	shogi.ProPawn:   {steps: goldSteps},
}

// Standard is the built-in rules engine for board moves. Drops are not
// generated.
type Standard struct{}

func NewStandard() *Standard {
	return &Standard{}
}

// pseudoDestinations lists squares the piece on from could reach ignoring
// the safety of its own king.
func pseudoDestinations(pos *shogi.Position, from shogi.Square, piece shogi.Piece) []shogi.Square {
	mv, ok := movements[piece.Type]
	if !ok {
		return nil
	}
	sign := 1
	if piece.Color == shogi.White {
		sign = -1
	}

	var out []shogi.Square
	for _, d := range mv.steps {
		to := from.Offset(d.df*sign, d.dr*sign)
		if !to.Valid() {
			continue
		}
		if occupant, ok := pos.PieceAt(to); ok && occupant.Color == piece.Color {
			continue
		}
		out = append(out, to)
	}
	for _, d := range mv.slides {
		to := from.Offset(d.df*sign, d.dr*sign)
		for to.Valid() {
			occupant, ok := pos.PieceAt(to)
			if ok {
				if occupant.Color != piece.Color {
					out = append(out, to)
				}
				break
			}
			out = append(out, to)
			to = to.Offset(d.df*sign, d.dr*sign)
		}
	}
	return out
}

func attacks(pos *shogi.Position, from shogi.Square, piece shogi.Piece, target shogi.Square) bool {
	for _, sq := range pseudoDestinations(pos, from, piece) {
		if sq == target {
			return true
		}
	}
	return false
}

// InCheck reports whether the king of color c is attacked. A side without a
// king is never in check.
func (s *Standard) InCheck(pos *shogi.Position, c shogi.Color) bool {
	king, ok := pos.KingSquare(c)
	if !ok {
		return false
	}
	for _, sq := range pos.Occupied(c.Opponent()) {
		pc, _ := pos.PieceAt(sq)
		if attacks(pos, sq, pc, king) {
			return true
		}
	}
	return false
}

// leavesKingSafe plays the move on a copy and checks the mover's king.
func (s *Standard) leavesKingSafe(pos *shogi.Position, from, to shogi.Square, piece shogi.Piece) bool {
	next := *pos
	next.Clear(from)
	next.SetPiece(to, piece)
	return !s.InCheck(&next, piece.Color)
}

func (s *Standard) LegalDestinations(pos *shogi.Position, sq shogi.Square, piece shogi.Piece) []shogi.Square {
	onBoard, ok := pos.PieceAt(sq)
	if !ok || onBoard != piece {
		return nil
	}
	var out []shogi.Square
	for _, to := range pseudoDestinations(pos, sq, piece) {
		if s.leavesKingSafe(pos, sq, to, piece) {
			out = append(out, to)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].File < out[j].File
	})
	return out
}

// ApplyMove validates m for the piece standing on m.From and plays it. The
// side to move is not checked here; callers gate turns.
func (s *Standard) ApplyMove(pos *shogi.Position, m shogi.Move) error {
	if !m.From.Valid() || !m.To.Valid() {
		return fmt.Errorf("%w: %s off the board", ErrIllegalMove, m)
	}
	piece, ok := pos.PieceAt(m.From)
	if !ok {
		return fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}

	reachable := false
	for _, to := range pseudoDestinations(pos, m.From, piece) {
		if to == m.To {
			reachable = true
			break
		}
	}
	if !reachable {
		return fmt.Errorf("%w: %s cannot reach %s", ErrIllegalMove, piece, m.To)
	}
	if m.Promote && !CanPromote(piece, m.From, m.To) {
		return fmt.Errorf("%w: %s cannot promote on %s", ErrIllegalMove, piece, m)
	}
	if !m.Promote && PromotionRequired(piece, m.To) {
		return fmt.Errorf("%w: %s must promote on %s", ErrIllegalMove, piece, m.To)
	}
	if !s.leavesKingSafe(pos, m.From, m.To, piece) {
		return fmt.Errorf("%w: %s leaves the king in check", ErrIllegalMove, m)
	}

	if captured, ok := pos.PieceAt(m.To); ok {
		pos.AddToHand(piece.Color, captured.Type)
	}
	moved := piece
	if m.Promote {
		moved.Type = piece.Type.Promote()
	}
	pos.Clear(m.From)
	pos.SetPiece(m.To, moved)
	pos.Advance()
	return nil
}

func inPromotionZone(c shogi.Color, sq shogi.Square) bool {
	if c == shogi.Black {
		return sq.Rank <= 2
	}
	return sq.Rank >= shogi.BoardSize-3
}

// CanPromote reports whether the move from -> to may promote: the piece kind
// must be promotable and either end of the move must lie in the enemy camp.
func CanPromote(piece shogi.Piece, from, to shogi.Square) bool {
	if !piece.Type.Promotable() {
		return false
	}
	return inPromotionZone(piece.Color, from) || inPromotionZone(piece.Color, to)
}

// PromotionRequired reports whether an unpromoted piece arriving on to would
// have no further moves.
func PromotionRequired(piece shogi.Piece, to shogi.Square) bool {
	// distance to the far edge, counted in ranks
	ahead := to.Rank
	if piece.Color == shogi.White {
		ahead = shogi.BoardSize - 1 - to.Rank
	}
	switch piece.Type {
	case shogi.Pawn, shogi.Lance:
		return ahead < 1
	case shogi.Knight:
		return ahead < 2
	}
	return false
}
