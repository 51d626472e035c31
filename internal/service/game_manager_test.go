package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrPicklePinosaur/shogiman/internal/kif"
	"github.com/MrPicklePinosaur/shogiman/internal/model"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

func newTestManager() *GameManager {
	return NewGameManager(ManagerConfig{
		StartSFEN:     shogi.StartSFEN,
		ClockTime:     time.Minute,
		MatchInterval: 10 * time.Millisecond,
	})
}

func square(t *testing.T, text string) shogi.Square {
	t.Helper()
	s, err := shogi.ParseSquare(text)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func colorPtr(c shogi.Color) *shogi.Color {
	return &c
}

func TestCreateAndJoin(t *testing.T) {
	gs := NewGameService(newTestManager())

	gameID, err := gs.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if c, err := gs.JoinGame(gameID, "alice"); err != nil || c != shogi.Black {
		t.Fatalf("alice: %v, %v", c, err)
	}
	if c, err := gs.JoinGame(gameID, "bob"); err != nil || c != shogi.White {
		t.Fatalf("bob: %v, %v", c, err)
	}
	if _, err := gs.JoinGame(gameID, "carol"); !errors.Is(err, model.ErrGameFull) {
		t.Errorf("carol: %v", err)
	}
	if _, err := gs.JoinGame("missing", "alice"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("missing game: %v", err)
	}
}

func TestCreateGameOptions(t *testing.T) {
	gm := newTestManager()

	if err := gm.CreateGame("dup", CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := gm.CreateGame("dup", CreateOptions{}); !errors.Is(err, ErrGameExists) {
		t.Errorf("duplicate id: %v", err)
	}
	if err := gm.CreateGame("bad", CreateOptions{SFEN: "nonsense"}); !errors.Is(err, shogi.ErrInvalidSFEN) {
		t.Errorf("bad sfen: %v", err)
	}
	if _, err := gm.GetGame("bad"); !errors.Is(err, ErrGameNotFound) {
		t.Error("game with bad sfen was stored")
	}

	// the computer opens when it plays Black
	if err := gm.CreateGame("cpu", CreateOptions{VsComputer: true, ComputerSide: colorPtr(shogi.Black)}); err != nil {
		t.Fatal(err)
	}
	st, err := gm.GetGameState("cpu")
	if err != nil {
		t.Fatal(err)
	}
	if len(st.MoveHistory) != 1 || !st.Players.Black.Computer {
		t.Errorf("history=%d black=%+v", len(st.MoveHistory), st.Players.Black)
	}

	// without a side the computer plays White
	if err := gm.CreateGame("cpu-default", CreateOptions{VsComputer: true}); err != nil {
		t.Fatal(err)
	}
	st, _ = gm.GetGameState("cpu-default")
	if len(st.MoveHistory) != 0 || !st.Players.White.Computer || st.Players.Black.Computer {
		t.Errorf("history=%d black=%+v white=%+v", len(st.MoveHistory), st.Players.Black, st.Players.White)
	}
}

func TestCreateGameFromStalledStart(t *testing.T) {
	gm := newTestManager()
	const sfen = "8k/9/9/9/9/9/9/6+r2/8K b - 1"

	tests := []struct {
		id   string
		opts CreateOptions
	}{
		{"humans", CreateOptions{SFEN: sfen}},
		{"computer", CreateOptions{SFEN: sfen, VsComputer: true, ComputerSide: colorPtr(shogi.Black)}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if err := gm.CreateGame(tt.id, tt.opts); err != nil {
				t.Fatalf("CreateGame: %v", err)
			}
			st, err := gm.GetGameState(tt.id)
			if err != nil {
				t.Fatal(err)
			}
			if st.Resolve == nil || st.Resolve.Result != model.ResultStalemate || len(st.MoveHistory) != 0 {
				t.Errorf("resolve = %+v history = %d", st.Resolve, len(st.MoveHistory))
			}
		})
	}
}

func TestPlayThroughManager(t *testing.T) {
	gm := newTestManager()
	if err := gm.CreateGame("g", CreateOptions{VsComputer: true, ComputerSide: colorPtr(shogi.White)}); err != nil {
		t.Fatal(err)
	}
	if _, err := gm.AddPlayerToGame("g", "alice"); err != nil {
		t.Fatal(err)
	}

	if err := gm.Click("g", "alice", square(t, "7g")); err != nil {
		t.Fatal(err)
	}
	if err := gm.Click("g", "alice", square(t, "7f")); err != nil {
		t.Fatal(err)
	}
	st, _ := gm.GetGameState("g")
	if len(st.MoveHistory) != 2 {
		t.Fatalf("history = %d", len(st.MoveHistory))
	}
	if err := gm.MakeMove("g", "alice", model.WSMove{From: square(t, "2g"), To: square(t, "2f")}); err != nil {
		t.Fatal(err)
	}
	if err := gm.Resign("g", "alice"); err != nil {
		t.Fatal(err)
	}
	if err := gm.Resign("nope", "alice"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("resign missing: %v", err)
	}

	data, enc, err := NewGameService(gm).ExportKIF("g", "")
	if err != nil {
		t.Fatal(err)
	}
	if enc != kif.UTF8 {
		t.Errorf("encoding = %v", enc)
	}
	text := string(data)
	for _, want := range []string{"先手：alice", "後手：computer", "   1 ７六歩(77)", "   5 投了", "まで4手で後手の勝ち"} {
		if !strings.Contains(text, want) {
			t.Errorf("kif missing %q:\n%s", want, text)
		}
	}
	if _, _, err := NewGameService(gm).ExportKIF("g", "ebcdic"); err == nil {
		t.Error("unknown encoding accepted")
	}
}

func TestMatchmaking(t *testing.T) {
	gm := newTestManager()

	if st := gm.MatchmakingStatus("alice"); st.Status != MatchIdle {
		t.Errorf("status = %+v", st)
	}
	for _, id := range []string{"alice", "bob", "carol"} {
		if err := gm.JoinMatchmaking(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := gm.JoinMatchmaking("alice"); !errors.Is(err, model.ErrAlreadyQueued) {
		t.Errorf("double queue: %v", err)
	}
	if err := gm.JoinMatchmaking(model.ComputerID); !errors.Is(err, model.ErrNotAuthorized) {
		t.Errorf("computer queued: %v", err)
	}
	if st := gm.MatchmakingStatus("alice"); st.Status != MatchQueued {
		t.Errorf("status = %+v", st)
	}

	if n := gm.processMatchmaking(); n != 1 {
		t.Fatalf("started %d games", n)
	}

	alice := gm.MatchmakingStatus("alice")
	bob := gm.MatchmakingStatus("bob")
	if alice.Status != MatchMatched || bob.Status != MatchMatched || alice.GameID != bob.GameID {
		t.Fatalf("alice=%+v bob=%+v", alice, bob)
	}
	if *alice.Color != shogi.Black || *bob.Color != shogi.White {
		t.Errorf("colors = %v, %v", *alice.Color, *bob.Color)
	}
	if st := gm.MatchmakingStatus("carol"); st.Status != MatchQueued {
		t.Errorf("carol = %+v", st)
	}
	if !gm.LeaveMatchmaking("carol") {
		t.Error("carol was not queued")
	}
	if gm.LeaveMatchmaking("carol") {
		t.Error("carol left twice")
	}
	if st := gm.MatchmakingStatus("carol"); st.Status != MatchIdle {
		t.Errorf("carol after leaving = %+v", st)
	}
	game, err := gm.GetGame(alice.GameID)
	if err != nil {
		t.Fatal(err)
	}
	st := game.GetState()
	if st.Players.Black.ID != "alice" || st.Players.White.ID != "bob" {
		t.Errorf("seats = %+v", st.Players)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	gm := newTestManager()
	gm.JoinMatchmaking("alice")
	gm.JoinMatchmaking("bob")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gm.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for gm.MatchmakingStatus("alice").Status != MatchMatched {
		select {
		case <-deadline:
			t.Fatal("no match within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
