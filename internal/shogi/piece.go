package shogi

import (
	"fmt"
	"strings"
)

type Color int

const (
	Black Color = iota
	White
)

func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseColor(text string) (Color, error) {
	switch strings.ToLower(text) {
	case "black", "b", "sente":
		return Black, nil
	case "white", "w", "gote":
		return White, nil
	}
	return Black, fmt.Errorf("unknown color %q", text)
}

type PieceType int

const (
	NoPieceType PieceType = iota
	King
	Rook
	Bishop
	Gold
	Silver
	Knight
	Lance
	Pawn
	ProRook
	ProBishop
	ProSilver
	ProKnight
	ProLance
	ProPawn
)

var pieceTypeNames = map[PieceType]string{
	King:      "king",
	Rook:      "rook",
	Bishop:    "bishop",
	Gold:      "gold",
	Silver:    "silver",
	Knight:    "knight",
	Lance:     "lance",
	Pawn:      "pawn",
	ProRook:   "dragon",
	ProBishop: "horse",
	ProSilver: "promoted_silver",
	ProKnight: "promoted_knight",
	ProLance:  "promoted_lance",
	ProPawn:   "tokin",
}

func (t PieceType) String() string {
	if name, ok := pieceTypeNames[t]; ok {
		return name
	}
	return "none"
}

func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PieceType) UnmarshalText(text []byte) error {
	for pt, name := range pieceTypeNames {
		if name == string(text) {
			*t = pt
			return nil
		}
	}
	return fmt.Errorf("unknown piece type %q", text)
}

func (t PieceType) Promotable() bool {
	switch t {
	case Rook, Bishop, Silver, Knight, Lance, Pawn:
		return true
	}
	return false
}

func (t PieceType) Promoted() bool {
	return t >= ProRook
}

// Promote returns the promoted kind, or t itself when t cannot promote.
func (t PieceType) Promote() PieceType {
	switch t {
	case Rook:
		return ProRook
	case Bishop:
		return ProBishop
	case Silver:
		return ProSilver
	case Knight:
		return ProKnight
	case Lance:
		return ProLance
	case Pawn:
		return ProPawn
	}
	return t
}

// Demote returns the unpromoted kind. Captured pieces go to hand demoted.
func (t PieceType) Demote() PieceType {
	switch t {
	case ProRook:
		return Rook
	case ProBishop:
		return Bishop
	case ProSilver:
		return Silver
	case ProKnight:
		return Knight
	case ProLance:
		return Lance
	case ProPawn:
		return Pawn
	}
	return t
}

// sfen letters for the unpromoted kinds, Black's case.
var sfenLetters = map[PieceType]byte{
	King:   'K',
	Rook:   'R',
	Bishop: 'B',
	Gold:   'G',
	Silver: 'S',
	Knight: 'N',
	Lance:  'L',
	Pawn:   'P',
}

func pieceTypeFromLetter(b byte) (PieceType, bool) {
	upper := b
	if b >= 'a' && b <= 'z' {
		upper = b - 'a' + 'A'
	}
	for t, letter := range sfenLetters {
		if letter == upper {
			return t, true
		}
	}
	return NoPieceType, false
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

func (p Piece) IsZero() bool {
	return p.Type == NoPieceType
}

// SFEN returns the piece code used in SFEN board fields, e.g. "P", "+p".
func (p Piece) SFEN() string {
	letter := sfenLetters[p.Type.Demote()]
	if p.Color == White {
		letter = letter - 'A' + 'a'
	}
	if p.Type.Promoted() {
		return "+" + string(letter)
	}
	return string(letter)
}

func (p Piece) String() string {
	return fmt.Sprintf("%s %s", p.Color, p.Type)
}

var spriteCodes = map[PieceType]string{
	King:      "OU",
	Rook:      "HI",
	Bishop:    "KA",
	Gold:      "KI",
	Silver:    "GI",
	Knight:    "KE",
	Lance:     "KY",
	Pawn:      "FU",
	ProRook:   "RY",
	ProBishop: "UM",
	ProSilver: "NG",
	ProKnight: "NK",
	ProLance:  "NY",
	ProPawn:   "TO",
}

// Sprite is the sprite file name for the piece, e.g. "0FU.svg" for a Black
// pawn.
func (p Piece) Sprite() string {
	color := "0"
	if p.Color == White {
		color = "1"
	}
	return color + spriteCodes[p.Type] + ".svg"
}

// HandTypes lists the kinds that can be held in hand, in record order.
var HandTypes = [...]PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

func handIndex(t PieceType) int {
	for i, ht := range HandTypes {
		if ht == t {
			return i
		}
	}
	return -1
}
