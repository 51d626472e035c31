// Package kif writes finished or in-progress games as KIF records, the plain
// text kifu format most Japanese shogi software reads.
package kif

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const timeLayout = "2006/01/02 15:04:05"

var NowFunc = func() string {
	return time.Now().Format(timeLayout)
}

type Result int

const (
	ResultNone Result = iota
	ResultMate
	ResultResign
	ResultTimeout
	ResultRepetition
)

// Move is a board move with the piece as it stood before moving.
type Move struct {
	Piece   shogi.Piece
	From    shogi.Square
	To      shogi.Square
	Promote bool
}

type Record struct {
	Start     shogi.Position
	StartedAt time.Time
	Black     string
	White     string
	Moves     []Move
	Result    Result
	// Winner is nil for draws and unfinished games.
	Winner *shogi.Color
}

type Encoding int

const (
	UTF8 Encoding = iota
	ShiftJIS
)

// ParseEncoding accepts the charset names clients commonly send. Empty means UTF-8.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "sjis", "shift_jis", "shift-jis", "cp932":
		return ShiftJIS, nil
	}
	return UTF8, fmt.Errorf("unknown kif encoding %q", name)
}

func (e Encoding) ContentType() string {
	if e == ShiftJIS {
		return "text/plain; charset=Shift_JIS"
	}
	return "text/plain; charset=UTF-8"
}

// MoveLine renders the idx-th move. prevTo is the previous destination, used
// for the 同 shorthand.
func MoveLine(idx int, mv Move, prevTo *shogi.Square) string {
	dst := SqToKIF(mv.To)
	if prevTo != nil && *prevTo == mv.To {
		dst = "同　"
	}
	name := pieceJP[mv.Piece.Type]
	if mv.Promote {
		name += "成"
	}
	return fmt.Sprintf("%4d %s%s%s", idx, dst, name, SqToParen(mv.From))
}

// Format renders rec as KIF text.
func Format(rec Record) string {
	out := make([]string, 0, len(rec.Moves)+24)

	out = append(out, "# ---- shogiman kifu file ----")
	if !rec.StartedAt.IsZero() {
		out = append(out, "開始日時："+rec.StartedAt.Format(timeLayout))
	}
	out = append(out, "終了日時："+NowFunc())

	start := shogi.StartPosition()
	if rec.Start.Key() == start.Key() {
		out = append(out, "手合割：平手")
	}
	out = append(out, "先手："+rec.Black)
	out = append(out, "後手："+rec.White)
	if rec.Start.Key() != start.Key() {
		out = append(out, "後手の持駒："+HandToKIF(rec.Start.Hand(shogi.White)))
		out = append(out, BoardToKIF(&rec.Start))
		out = append(out, "先手の持駒："+HandToKIF(rec.Start.Hand(shogi.Black)))
		if rec.Start.SideToMove() == shogi.White {
			out = append(out, "後手番")
		}
	}
	out = append(out, "手数----指手---------消費時間--")

	var prevTo *shogi.Square
	for i, mv := range rec.Moves {
		out = append(out, MoveLine(i+1, mv, prevTo))
		to := mv.To
		prevTo = &to
	}

	out = append(out, resultLines(rec)...)
	return strings.Join(out, "\n") + "\n"
}

func resultLines(rec Record) []string {
	n := len(rec.Moves)
	winner := ""
	if rec.Winner != nil {
		winner = colorJP(*rec.Winner)
	}
	switch rec.Result {
	case ResultMate:
		return []string{fmt.Sprintf("%4d 詰み", n+1), fmt.Sprintf("まで%d手で詰み", n)}
	case ResultResign:
		return []string{fmt.Sprintf("%4d 投了", n+1), fmt.Sprintf("まで%d手で%sの勝ち", n, winner)}
	case ResultTimeout:
		return []string{fmt.Sprintf("%4d 切れ負け", n+1), fmt.Sprintf("まで%d手で時間切れにより%sの勝ち", n, winner)}
	case ResultRepetition:
		return []string{fmt.Sprintf("%4d 千日手", n+1), fmt.Sprintf("まで%d手で千日手", n)}
	}
	return nil
}

// Write renders rec to w in the given encoding.
func Write(w io.Writer, rec Record, enc Encoding) error {
	text := Format(rec)
	if enc != ShiftJIS {
		_, err := io.WriteString(w, text)
		return err
	}
	tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	if _, err := io.WriteString(tw, text); err != nil {
		return fmt.Errorf("encode shift_jis: %w", err)
	}
	return tw.Close()
}
