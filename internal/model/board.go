package model

import (
	"github.com/MrPicklePinosaur/shogiman/internal/rules"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

const DefaultScale = 32.0

// Vec2 is a point in world space, origin at the board centre.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Board wraps a position and the rules oracle that judges it.
type Board struct {
	oracle rules.Oracle
	pos    shogi.Position
	scale  float64
}

func NewBoard(oracle rules.Oracle, pos shogi.Position, scale float64) *Board {
	if oracle == nil {
		oracle = rules.NewStandard()
	}
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Board{
		oracle: oracle,
		pos:    pos,
		scale:  scale,
	}
}

// NewBoardFromSFEN sets up a board from a starting-position record.
func NewBoardFromSFEN(oracle rules.Oracle, sfen string, scale float64) (*Board, error) {
	pos, err := shogi.ParseSFEN(sfen)
	if err != nil {
		return nil, err
	}
	return NewBoard(oracle, pos, scale), nil
}

func newBoard() *Board {
	return NewBoard(rules.NewStandard(), shogi.StartPosition(), DefaultScale)
}

func (b *Board) PieceAt(sq shogi.Square) (shogi.Piece, bool) {
	return b.pos.PieceAt(sq)
}

func (b *Board) LegalDestinations(sq shogi.Square, piece shogi.Piece) []shogi.Square {
	return b.oracle.LegalDestinations(&b.pos, sq, piece)
}

// ApplyMove plays m through the oracle and returns the captured piece, if
// any. Whose turn it is is not checked here.
func (b *Board) ApplyMove(m shogi.Move) (*shogi.Piece, error) {
	captured, hadCapture := b.pos.PieceAt(m.To)
	if err := b.oracle.ApplyMove(&b.pos, m); err != nil {
		return nil, err
	}
	if !hadCapture {
		return nil, nil
	}
	return &captured, nil
}

func (b *Board) SideToMove() shogi.Color {
	return b.pos.SideToMove()
}

// SquareToWorld returns the centre of sq in world space. Square (8,8) lands
// on (-4*scale, -4*scale).
func (b *Board) SquareToWorld(sq shogi.Square) Vec2 {
	half := b.scale / 2
	return Vec2{
		X: float64(8-sq.File)*b.scale - b.scale*9/2 + half,
		Y: float64(8-sq.Rank)*b.scale - b.scale*9/2 + half,
	}
}

func (b *Board) Scale() float64 {
	return b.scale
}

// Position returns a copy of the current position.
func (b *Board) Position() shogi.Position {
	return b.pos
}

func (b *Board) SFEN() string {
	return b.pos.SFEN()
}

func (b *Board) Oracle() rules.Oracle {
	return b.oracle
}

func (b *Board) InCheck(c shogi.Color) bool {
	cd, ok := b.oracle.(rules.CheckDetector)
	if !ok {
		return false
	}
	return cd.InCheck(&b.pos, c)
}

func (b *Board) Status() rules.Status {
	return rules.Evaluate(b.oracle, &b.pos)
}
