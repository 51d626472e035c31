package kif

import (
	"fmt"
	"strings"

	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

var fwDigits = map[int]string{
	1: "１", 2: "２", 3: "３", 4: "４", 5: "５", 6: "６", 7: "７", 8: "８", 9: "９",
}

var rankKanji = map[int]string{
	1: "一", 2: "二", 3: "三", 4: "四", 5: "五", 6: "六", 7: "七", 8: "八", 9: "九",
}

var pieceJP = map[shogi.PieceType]string{
	shogi.King:      "玉",
	shogi.Rook:      "飛",
	shogi.Bishop:    "角",
	shogi.Gold:      "金",
	shogi.Silver:    "銀",
	shogi.Knight:    "桂",
	shogi.Lance:     "香",
	shogi.Pawn:      "歩",
	shogi.ProRook:   "竜",
	shogi.ProBishop: "馬",
	shogi.ProSilver: "全",
	shogi.ProKnight: "圭",
	shogi.ProLance:  "杏",
	shogi.ProPawn:   "と",
}

// SqToKIF renders sq as full-width file plus kanji rank, e.g. ７六.
func SqToKIF(sq shogi.Square) string {
	return fwDigits[sq.File+1] + rankKanji[sq.Rank+1]
}

// SqToParen renders the origin of a move, e.g. (77).
func SqToParen(sq shogi.Square) string {
	return fmt.Sprintf("(%d%d)", sq.File+1, sq.Rank+1)
}

func InvCountKanji(n int) string {
	inv := map[int]string{
		1: "", 2: "二", 3: "三", 4: "四", 5: "五", 6: "六", 7: "七", 8: "八", 9: "九",
		10: "十", 11: "十一", 12: "十二", 13: "十三", 14: "十四", 15: "十五", 16: "十六", 17: "十七", 18: "十八",
	}
	if v, ok := inv[n]; ok {
		return v
	}
	return fmt.Sprintf("%d", n)
}

// HandToKIF lists a hand as 飛　歩三, or なし when empty.
func HandToKIF(h shogi.Hand) string {
	parts := make([]string, 0, len(shogi.HandTypes))
	for _, t := range shogi.HandTypes {
		n := h.Count(t)
		if n <= 0 {
			continue
		}
		parts = append(parts, pieceJP[t]+InvCountKanji(n))
	}
	if len(parts) == 0 {
		return "なし"
	}
	return strings.Join(parts, "　")
}

// BoardToKIF draws the board as a KIF diagram, White pieces marked with v.
func BoardToKIF(pos *shogi.Position) string {
	lines := make([]string, 0, 11)
	lines = append(lines, "  ９ ８ ７ ６ ５ ４ ３ ２ １")
	lines = append(lines, "+---------------------------+")
	for r := 0; r < shogi.BoardSize; r++ {
		var row strings.Builder
		for f := shogi.BoardSize - 1; f >= 0; f-- {
			p, ok := pos.PieceAt(shogi.NewSquare(f, r))
			if !ok {
				row.WriteString(" ・")
				continue
			}
			if p.Color == shogi.White {
				row.WriteString("v")
			} else {
				row.WriteString(" ")
			}
			row.WriteString(pieceJP[p.Type])
		}
		lines = append(lines, "|"+row.String()+"|"+rankKanji[r+1])
	}
	lines = append(lines, "+---------------------------+")
	return strings.Join(lines, "\n")
}

func colorJP(c shogi.Color) string {
	if c == shogi.White {
		return "後手"
	}
	return "先手"
}
