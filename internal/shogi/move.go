package shogi

import (
	"fmt"
	"strings"
)

// Move is a normal board move. Drops are not represented.
type Move struct {
	From    Square `json:"from"`
	To      Square `json:"to"`
	Promote bool   `json:"promote"`
}

// String returns the USI form, e.g. "7g7f" or "8h2b+".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promote {
		s += "+"
	}
	return s
}

func ParseMove(text string) (Move, error) {
	promote := strings.HasSuffix(text, "+")
	text = strings.TrimSuffix(text, "+")
	if len(text) != 4 {
		return Move{}, fmt.Errorf("invalid move %q", text)
	}
	from, err := ParseSquare(text[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(text[2:])
	if err != nil {
		return Move{}, err
	}
	return Move{From: from, To: to, Promote: promote}, nil
}
