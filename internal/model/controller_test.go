package model

import (
	"errors"
	"testing"

	"github.com/MrPicklePinosaur/shogiman/internal/rules"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

func sq(t *testing.T, text string) shogi.Square {
	t.Helper()
	s, err := shogi.ParseSquare(text)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", text, err)
	}
	return s
}

type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type()
	}
	return out
}

func newTestController(t *testing.T, sfen string) (*Controller, *recorder) {
	t.Helper()
	board, err := NewBoardFromSFEN(nil, sfen, 0)
	if err != nil {
		t.Fatalf("NewBoardFromSFEN: %v", err)
	}
	ctrl := NewController(board, nil)
	rec := &recorder{}
	ctrl.Subscribe(rec.listen)
	return ctrl, rec
}

func sameTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rejectingOracle offers the usual destinations but refuses every move.
type rejectingOracle struct {
	*rules.Standard
}

func (rejectingOracle) ApplyMove(*shogi.Position, shogi.Move) error {
	return rules.ErrIllegalMove
}

func TestClickPawnAdvance(t *testing.T) {
	ctrl, rec := newTestController(t, shogi.StartSFEN)

	if err := ctrl.Click(sq(t, "5g")); err != nil {
		t.Fatalf("select: %v", err)
	}
	sel, ok := ctrl.Hand()
	if !ok || sel.Origin != sq(t, "5g") || sel.Piece.Type != shogi.Pawn {
		t.Fatalf("hand = %+v, %v", sel, ok)
	}
	targets := ctrl.Targets()
	if len(targets) != 1 || targets[0] != sq(t, "5f") {
		t.Fatalf("targets = %v, want [5f]", targets)
	}

	if err := ctrl.Click(sq(t, "5f")); err != nil {
		t.Fatalf("move: %v", err)
	}

	want := []EventType{EventPieceMoved, EventTurnChanged}
	if got := rec.types(); !sameTypes(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	moved := rec.events[0].(PieceMoved)
	if moved.From != sq(t, "5g") || moved.To != sq(t, "5f") || moved.Captured != nil {
		t.Errorf("PieceMoved = %+v", moved)
	}
	if tc := rec.events[1].(TurnChanged); tc.Side != shogi.White || tc.Ply != 1 {
		t.Errorf("TurnChanged = %+v", tc)
	}

	board := ctrl.Board()
	if _, ok := board.PieceAt(sq(t, "5g")); ok {
		t.Error("origin still occupied")
	}
	if pc, ok := board.PieceAt(sq(t, "5f")); !ok || pc != (shogi.Piece{Type: shogi.Pawn, Color: shogi.Black}) {
		t.Errorf("destination = %v, %v", pc, ok)
	}
	if board.SideToMove() != shogi.White {
		t.Error("side to move did not change")
	}
	if _, ok := ctrl.Hand(); ok {
		t.Error("hand not cleared after move")
	}
	if len(ctrl.Targets()) != 0 {
		t.Error("targets not cleared after move")
	}
	if h := ctrl.History(); len(h) != 1 || h[0].Notation != "5g5f" {
		t.Errorf("history = %+v", h)
	}
}

func TestClickIgnoredSelections(t *testing.T) {
	tests := []struct {
		name   string
		square string
	}{
		{"empty square", "5e"},
		{"opponent piece", "3c"},
		{"opponent king", "5a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, rec := newTestController(t, shogi.StartSFEN)
			before := ctrl.Board().Position()

			if err := ctrl.Click(sq(t, tt.square)); err != nil {
				t.Fatalf("Click: %v", err)
			}
			if _, ok := ctrl.Hand(); ok {
				t.Error("hand set")
			}
			if len(ctrl.Targets()) != 0 {
				t.Error("targets set")
			}
			if len(rec.events) != 0 {
				t.Errorf("events = %v", rec.types())
			}
			if ctrl.Board().Position() != before {
				t.Error("position changed")
			}
		})
	}
}

func TestClickReselects(t *testing.T) {
	ctrl, rec := newTestController(t, shogi.StartSFEN)

	if err := ctrl.Click(sq(t, "7g")); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Click(sq(t, "2h")); err != nil {
		t.Fatal(err)
	}
	sel, ok := ctrl.Hand()
	if !ok || sel.Piece.Type != shogi.Rook {
		t.Fatalf("hand = %+v, %v; want rook", sel, ok)
	}
	if ctrl.IsTarget(sq(t, "7f")) {
		t.Error("stale target from previous selection")
	}

	// a non-target empty square drops the selection
	if err := ctrl.Click(sq(t, "5e")); err != nil {
		t.Fatal(err)
	}
	if _, ok := ctrl.Hand(); ok {
		t.Error("hand kept after clicking a non-target")
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v", rec.types())
	}
}

func TestClickRejectedMoveKeepsSelection(t *testing.T) {
	pos := shogi.StartPosition()
	board := NewBoard(rejectingOracle{rules.NewStandard()}, pos, 0)
	ctrl := NewController(board, nil)
	rec := &recorder{}
	ctrl.Subscribe(rec.listen)

	if err := ctrl.Click(sq(t, "7g")); err != nil {
		t.Fatal(err)
	}
	err := ctrl.Click(sq(t, "7f"))
	if !errors.Is(err, rules.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if sel, ok := ctrl.Hand(); !ok || sel.Origin != sq(t, "7g") {
		t.Errorf("selection lost: %+v, %v", sel, ok)
	}
	if !ctrl.IsTarget(sq(t, "7f")) {
		t.Error("targets lost")
	}
	if ctrl.Board().Position() != pos {
		t.Error("position changed")
	}
	if len(rec.events) != 0 || len(ctrl.History()) != 0 {
		t.Errorf("events = %v, history = %v", rec.types(), ctrl.History())
	}
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name    string
		move    string
		wantErr error
	}{
		{"legal", "7g7f", nil},
		{"wrong side", "3c3d", ErrNotYourTurn},
		{"empty origin", "5e5d", rules.ErrIllegalMove},
		{"unreachable", "7g7e", rules.ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, rec := newTestController(t, shogi.StartSFEN)
			m, err := shogi.ParseMove(tt.move)
			if err != nil {
				t.Fatal(err)
			}
			before := ctrl.Board().Position()

			err = ctrl.Play(m)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Play: %v", err)
				}
				if len(rec.events) != 2 {
					t.Errorf("events = %v", rec.types())
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if ctrl.Board().Position() != before {
				t.Error("position changed after rejected move")
			}
			if len(rec.events) != 0 {
				t.Errorf("events = %v", rec.types())
			}
		})
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	ctrl, rec := newTestController(t, "8k/9/7SG/9/9/9/9/9/K8 b - 1")

	if err := ctrl.Click(sq(t, "1c")); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Click(sq(t, "1b")); err != nil {
		t.Fatal(err)
	}

	want := []EventType{EventPieceMoved, EventTurnChanged, EventGameEnded}
	if got := rec.types(); !sameTypes(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	o, ok := ctrl.Outcome()
	if !ok || o.Result != ResultCheckmate || o.Winner == nil || *o.Winner != shogi.Black {
		t.Fatalf("outcome = %+v, %v", o, ok)
	}
	if err := ctrl.Click(sq(t, "1a")); !errors.Is(err, ErrGameOver) {
		t.Errorf("Click after mate: %v", err)
	}
	if err := ctrl.Play(shogi.Move{From: sq(t, "1a"), To: sq(t, "2a")}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Play after mate: %v", err)
	}
}

func TestBeginChecksStartPosition(t *testing.T) {
	tests := []struct {
		name   string
		sfen   string
		result Result
		winner shogi.Color
	}{
		{"stalemate", "8k/9/9/9/9/9/9/6+r2/8K b - 1", ResultStalemate, shogi.White},
		{"checkmate", "8k/8G/7S1/9/9/9/9/9/K8 w - 1", ResultCheckmate, shogi.Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, rec := newTestController(t, tt.sfen)
			ctrl.Begin()
			ctrl.Begin()

			if got, want := rec.types(), []EventType{EventGameEnded}; !sameTypes(got, want) {
				t.Fatalf("events = %v, want %v", got, want)
			}
			o, ok := ctrl.Outcome()
			if !ok || o.Result != tt.result || o.Winner == nil || *o.Winner != tt.winner {
				t.Fatalf("outcome = %+v, %v", o, ok)
			}
		})
	}

	ctrl, rec := newTestController(t, shogi.StartSFEN)
	ctrl.Begin()
	if ctrl.Finished() || len(rec.events) != 0 {
		t.Errorf("opening ended: %v", rec.types())
	}
}

func TestRepetitionIsDraw(t *testing.T) {
	ctrl, rec := newTestController(t, "4k4/9/9/9/9/9/9/9/4K4 b - 1")
	cycle := []string{"5i4i", "5a4a", "4i5i", "4a5a"}

	for i := 0; i < 3; i++ {
		for _, text := range cycle {
			if ctrl.Finished() {
				t.Fatalf("finished early after %d plies", len(ctrl.History()))
			}
			m, _ := shogi.ParseMove(text)
			if err := ctrl.Play(m); err != nil {
				t.Fatalf("Play(%s): %v", text, err)
			}
		}
	}

	o, ok := ctrl.Outcome()
	if !ok || o.Result != ResultRepetition || o.Winner != nil {
		t.Fatalf("outcome = %+v, %v", o, ok)
	}
	if len(ctrl.History()) != 12 {
		t.Errorf("history length = %d", len(ctrl.History()))
	}
	last := rec.events[len(rec.events)-1]
	if last.Type() != EventGameEnded {
		t.Errorf("last event = %v", last.Type())
	}
}

func TestResign(t *testing.T) {
	ctrl, rec := newTestController(t, shogi.StartSFEN)
	if err := ctrl.Click(sq(t, "7g")); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Resign(shogi.Black, ResultResign); err != nil {
		t.Fatal(err)
	}
	if _, ok := ctrl.Hand(); ok {
		t.Error("selection survived resignation")
	}
	o, _ := ctrl.Outcome()
	if o.Result != ResultResign || o.Winner == nil || *o.Winner != shogi.White {
		t.Errorf("outcome = %+v", o)
	}
	if got := rec.types(); !sameTypes(got, []EventType{EventGameEnded}) {
		t.Errorf("events = %v", got)
	}
	if err := ctrl.Resign(shogi.White, ResultResign); !errors.Is(err, ErrGameOver) {
		t.Errorf("second resign: %v", err)
	}
}

func TestDispatchIsNotReentrant(t *testing.T) {
	ctrl, _ := newTestController(t, shogi.StartSFEN)
	var order []EventType
	ctrl.Subscribe(func(ev Event) {
		order = append(order, ev.Type())
		if tc, ok := ev.(TurnChanged); ok && tc.Side == shogi.White && tc.Ply == 1 {
			m, _ := shogi.ParseMove("3c3d")
			if err := ctrl.Play(m); err != nil {
				t.Errorf("reply: %v", err)
			}
		}
	})

	m, _ := shogi.ParseMove("7g7f")
	if err := ctrl.Play(m); err != nil {
		t.Fatal(err)
	}
	want := []EventType{EventPieceMoved, EventTurnChanged, EventPieceMoved, EventTurnChanged}
	if !sameTypes(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}
