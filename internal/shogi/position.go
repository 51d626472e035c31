package shogi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

var ErrInvalidSFEN = errors.New("invalid sfen")

// Hand holds captured piece counts indexed like HandTypes.
type Hand [len(HandTypes)]int

func (h Hand) Count(t PieceType) int {
	i := handIndex(t.Demote())
	if i < 0 {
		return 0
	}
	return h[i]
}

func (h Hand) Empty() bool {
	return h == Hand{}
}

// Position is the full board state. It holds no pointers, so a copy is an
// independent clone and == compares positions exactly.
type Position struct {
	board [NumSquares]Piece
	hands [2]Hand
	side  Color
	ply   int
}

func NewPosition() Position {
	return Position{side: Black, ply: 1}
}

// StartPosition returns the standard even-game setup.
func StartPosition() Position {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	pc := p.board[sq.index()]
	return pc, !pc.IsZero()
}

// SetPiece places pc on sq; a zero Piece clears the square.
func (p *Position) SetPiece(sq Square, pc Piece) {
	if !sq.Valid() {
		return
	}
	p.board[sq.index()] = pc
}

func (p *Position) Clear(sq Square) {
	p.SetPiece(sq, Piece{})
}

func (p *Position) SideToMove() Color {
	return p.side
}

func (p *Position) SetSideToMove(c Color) {
	p.side = c
}

func (p *Position) Ply() int {
	return p.ply
}

func (p *Position) Hand(c Color) Hand {
	return p.hands[c]
}

func (p *Position) AddToHand(c Color, t PieceType) {
	if i := handIndex(t.Demote()); i >= 0 {
		p.hands[c][i]++
	}
}

// Advance toggles the side to move and bumps the ply counter.
func (p *Position) Advance() {
	p.side = p.side.Opponent()
	p.ply++
}

// Occupied returns the squares holding pieces of color c.
func (p *Position) Occupied(c Color) []Square {
	var out []Square
	for i, pc := range p.board {
		if !pc.IsZero() && pc.Color == c {
			out = append(out, squareAt(i))
		}
	}
	return out
}

// KingSquare finds the king of color c.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for i, pc := range p.board {
		if pc.Type == King && pc.Color == c {
			return squareAt(i), true
		}
	}
	return Square{}, false
}

// Key identifies the position for repetition purposes: board, hands and side,
// without the ply counter.
func (p *Position) Key() string {
	fields := strings.Fields(p.SFEN())
	return strings.Join(fields[:3], " ")
}

// SFEN formats the position, e.g. StartSFEN.
func (p *Position) SFEN() string {
	var b strings.Builder
	for rank := 0; rank < BoardSize; rank++ {
		if rank > 0 {
			b.WriteByte('/')
		}
		empty := 0
		for file := BoardSize - 1; file >= 0; file-- {
			pc, ok := p.PieceAt(Square{File: file, Rank: rank})
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(pc.SFEN())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
	}

	b.WriteByte(' ')
	if p.side == White {
		b.WriteByte('w')
	} else {
		b.WriteByte('b')
	}

	b.WriteByte(' ')
	hands := ""
	for _, c := range []Color{Black, White} {
		for i, t := range HandTypes {
			n := p.hands[c][i]
			if n == 0 {
				continue
			}
			if n > 1 {
				hands += strconv.Itoa(n)
			}
			hands += Piece{Type: t, Color: c}.SFEN()
		}
	}
	if hands == "" {
		hands = "-"
	}
	b.WriteString(hands)

	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.ply))
	return b.String()
}

// ParseSFEN reads "board side hands [ply]".
func ParseSFEN(text string) (Position, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 || len(fields) > 4 {
		return Position{}, fmt.Errorf("%w: expected 3 or 4 fields, got %d", ErrInvalidSFEN, len(fields))
	}

	pos := NewPosition()
	rows := strings.Split(fields[0], "/")
	if len(rows) != BoardSize {
		return Position{}, fmt.Errorf("%w: expected %d ranks, got %d", ErrInvalidSFEN, BoardSize, len(rows))
	}
	for rank, row := range rows {
		file := BoardSize - 1
		promoted := false
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case ch == '+':
				promoted = true
				continue
			case ch >= '1' && ch <= '9':
				if promoted {
					return Position{}, fmt.Errorf("%w: dangling '+' in rank %d", ErrInvalidSFEN, rank+1)
				}
				file -= int(ch - '0')
				continue
			}
			t, ok := pieceTypeFromLetter(ch)
			if !ok {
				return Position{}, fmt.Errorf("%w: unknown piece %q", ErrInvalidSFEN, ch)
			}
			if promoted {
				if !t.Promotable() {
					return Position{}, fmt.Errorf("%w: %q cannot be promoted", ErrInvalidSFEN, ch)
				}
				t = t.Promote()
				promoted = false
			}
			if file < 0 {
				return Position{}, fmt.Errorf("%w: rank %d too long", ErrInvalidSFEN, rank+1)
			}
			color := Black
			if ch >= 'a' && ch <= 'z' {
				color = White
			}
			pos.SetPiece(Square{File: file, Rank: rank}, Piece{Type: t, Color: color})
			file--
		}
		if file != -1 {
			return Position{}, fmt.Errorf("%w: rank %d has wrong width", ErrInvalidSFEN, rank+1)
		}
	}

	switch fields[1] {
	case "b":
		pos.side = Black
	case "w":
		pos.side = White
	default:
		return Position{}, fmt.Errorf("%w: side to move %q", ErrInvalidSFEN, fields[1])
	}

	if fields[2] != "-" {
		count := 0
		for i := 0; i < len(fields[2]); i++ {
			ch := fields[2][i]
			if ch >= '0' && ch <= '9' {
				count = count*10 + int(ch-'0')
				continue
			}
			t, ok := pieceTypeFromLetter(ch)
			if !ok || t == King {
				return Position{}, fmt.Errorf("%w: hand piece %q", ErrInvalidSFEN, ch)
			}
			if count == 0 {
				count = 1
			}
			color := Black
			if ch >= 'a' && ch <= 'z' {
				color = White
			}
			pos.hands[color][handIndex(t)] += count
			count = 0
		}
		if count != 0 {
			return Position{}, fmt.Errorf("%w: dangling hand count", ErrInvalidSFEN)
		}
	}

	if len(fields) == 4 {
		ply, err := strconv.Atoi(fields[3])
		if err != nil || ply < 1 {
			return Position{}, fmt.Errorf("%w: move number %q", ErrInvalidSFEN, fields[3])
		}
		pos.ply = ply
	}
	return pos, nil
}
