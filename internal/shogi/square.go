package shogi

import (
	"errors"
	"fmt"
)

const (
	BoardSize  = 9
	NumSquares = BoardSize * BoardSize
)

var ErrInvalidSquare = errors.New("invalid square")

// Square is a board coordinate. File 0 is the file written "1" and rank 0 is
// rank "a", White's back rank.
type Square struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

func NewSquare(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < BoardSize && s.Rank >= 0 && s.Rank < BoardSize
}

func (s Square) index() int {
	return s.Rank*BoardSize + s.File
}

func squareAt(index int) Square {
	return Square{File: index % BoardSize, Rank: index / BoardSize}
}

// Offset returns the square shifted by the given deltas. The result may be off
// the board.
func (s Square) Offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

// String returns the USI form, e.g. "7g".
func (s Square) String() string {
	if !s.Valid() {
		return "??"
	}
	return fmt.Sprintf("%d%c", s.File+1, 'a'+s.Rank)
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidSquare
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(text []byte) error {
	sq, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// ParseSquare reads a USI square such as "5e".
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
	}
	sq := Square{File: int(text[0] - '1'), Rank: int(text[1] - 'a')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
	}
	return sq, nil
}

// Squares lists every square in index order.
func Squares() []Square {
	out := make([]Square, 0, NumSquares)
	for i := 0; i < NumSquares; i++ {
		out = append(out, squareAt(i))
	}
	return out
}
