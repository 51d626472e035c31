package model

import (
	"math/rand"
	"time"

	"github.com/MrPicklePinosaur/shogiman/internal/rules"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
	"go.uber.org/zap"
)

// Opponent is the computer player: it answers its own turn with a uniformly
// random legal move.
type Opponent struct {
	side   shogi.Color
	ctrl   *Controller
	rng    *rand.Rand
	logger *zap.Logger
}

// NewOpponent attaches a computer player for side to ctrl. A nil rng is seeded
// from the clock.
func NewOpponent(ctrl *Controller, side shogi.Color, rng *rand.Rand, logger *zap.Logger) *Opponent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Opponent{
		side:   side,
		ctrl:   ctrl,
		rng:    rng,
		logger: logger.With(zap.Stringer("computer", side)),
	}
	ctrl.Subscribe(o.handle)
	return o
}

func (o *Opponent) Side() shogi.Color {
	return o.side
}

func (o *Opponent) handle(ev Event) {
	tc, ok := ev.(TurnChanged)
	if !ok || tc.Side != o.side {
		return
	}
	if err := o.Move(); err != nil {
		o.logger.Error("computer move failed", zap.Error(err))
	}
}

// Start moves right away when the computer has the first move.
func (o *Opponent) Start() error {
	if o.ctrl.Board().SideToMove() != o.side {
		return nil
	}
	return o.Move()
}

// ChooseMove picks a random legal move for the computer's side.
func (o *Opponent) ChooseMove() (shogi.Move, error) {
	board := o.ctrl.Board()
	pos := board.Position()
	squares := pos.Occupied(o.side)
	o.rng.Shuffle(len(squares), func(i, j int) {
		squares[i], squares[j] = squares[j], squares[i]
	})

	for _, from := range squares {
		piece, _ := board.PieceAt(from)
		dests := board.LegalDestinations(from, piece)
		if len(dests) == 0 {
			continue
		}
		o.rng.Shuffle(len(dests), func(i, j int) {
			dests[i], dests[j] = dests[j], dests[i]
		})
		to := dests[0]
		return shogi.Move{From: from, To: to, Promote: rules.PromotionRequired(piece, to)}, nil
	}
	return shogi.Move{}, ErrNoLegalMoves
}

// Move chooses and plays a move. It does nothing once the game is over.
func (o *Opponent) Move() error {
	if o.ctrl.Finished() {
		return nil
	}
	m, err := o.ChooseMove()
	if err != nil {
		return err
	}
	o.logger.Debug("computer chose move", zap.String("move", m.String()))
	return o.ctrl.Play(m)
}
