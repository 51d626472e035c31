package model

import (
	"fmt"

	"github.com/MrPicklePinosaur/shogiman/internal/rules"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
	"go.uber.org/zap"
)

// repetitionLimit is the number of occurrences of one position that ends the
// game as a draw (sennichite).
const repetitionLimit = 4

// Selection is the piece a player has picked up.
type Selection struct {
	Piece  shogi.Piece  `json:"piece"`
	Origin shogi.Square `json:"origin"`
}

// Controller owns a board and drives selection, move application and turn
// changes. It is not safe for concurrent use; Game serialises access.
type Controller struct {
	board   *Board
	logger  *zap.Logger
	hand    *Selection
	targets map[shogi.Square]struct{}
	history []Ply
	seen    map[string]int
	outcome *Outcome

	listeners   []Listener
	pending     []Event
	dispatching bool
}

func NewController(board *Board, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		board:   board,
		logger:  logger,
		targets: make(map[shogi.Square]struct{}),
		history: make([]Ply, 0),
		seen:    make(map[string]int),
	}
	pos := board.Position()
	c.seen[pos.Key()] = 1
	return c
}

// Subscribe registers l for every event emitted after this call.
func (c *Controller) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Controller) Board() *Board {
	return c.board
}

// Hand returns the current selection, if any.
func (c *Controller) Hand() (Selection, bool) {
	if c.hand == nil {
		return Selection{}, false
	}
	return *c.hand, true
}

func (c *Controller) IsTarget(sq shogi.Square) bool {
	_, ok := c.targets[sq]
	return ok
}

// Targets returns the highlighted destinations in board order.
func (c *Controller) Targets() []shogi.Square {
	out := make([]shogi.Square, 0, len(c.targets))
	for _, sq := range shogi.Squares() {
		if c.IsTarget(sq) {
			out = append(out, sq)
		}
	}
	return out
}

func (c *Controller) History() []Ply {
	out := make([]Ply, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) Outcome() (Outcome, bool) {
	if c.outcome == nil {
		return Outcome{}, false
	}
	return *c.outcome, true
}

func (c *Controller) Finished() bool {
	return c.outcome != nil
}

// Click handles a click on sq. With a piece selected and sq highlighted the
// move is played; any other click (re)selects. A rejected move keeps the
// selection and returns the error.
func (c *Controller) Click(sq shogi.Square) error {
	if c.Finished() {
		return ErrGameOver
	}

	if c.hand != nil && c.IsTarget(sq) {
		m := shogi.Move{
			From:    c.hand.Origin,
			To:      sq,
			Promote: rules.PromotionRequired(c.hand.Piece, sq),
		}
		if err := c.commit(m); err != nil {
			c.logger.Warn("move rejected",
				zap.String("move", m.String()),
				zap.Error(err),
			)
			return err
		}
		return nil
	}

	c.clearSelection()
	c.selectPiece(sq)
	return nil
}

func (c *Controller) selectPiece(sq shogi.Square) {
	piece, ok := c.board.PieceAt(sq)
	if !ok || piece.Color != c.board.SideToMove() {
		return
	}
	c.hand = &Selection{Piece: piece, Origin: sq}
	for _, to := range c.board.LegalDestinations(sq, piece) {
		c.targets[to] = struct{}{}
	}
	c.logger.Debug("piece selected",
		zap.String("square", sq.String()),
		zap.Stringer("piece", piece),
		zap.Int("targets", len(c.targets)),
	)
}

func (c *Controller) clearSelection() {
	c.hand = nil
	for sq := range c.targets {
		delete(c.targets, sq)
	}
}

// Play commits m for the side to move without going through selection.
func (c *Controller) Play(m shogi.Move) error {
	if c.Finished() {
		return ErrGameOver
	}
	piece, ok := c.board.PieceAt(m.From)
	if !ok {
		return fmt.Errorf("%w: no piece on %s", rules.ErrIllegalMove, m.From)
	}
	if piece.Color != c.board.SideToMove() {
		return ErrNotYourTurn
	}
	return c.commit(m)
}

// Resign ends the game with side losing for the given reason.
func (c *Controller) Resign(side shogi.Color, reason Result) error {
	if c.Finished() {
		return ErrGameOver
	}
	c.clearSelection()
	winner := side.Opponent()
	c.finish(Outcome{Result: reason, Winner: &winner})
	c.dispatch()
	return nil
}

func (c *Controller) commit(m shogi.Move) error {
	piece, _ := c.board.PieceAt(m.From)
	captured, err := c.board.ApplyMove(m)
	if err != nil {
		return err
	}

	c.clearSelection()
	ply := Ply{
		Number:        len(c.history) + 1,
		Piece:         piece,
		From:          m.From,
		To:            m.To,
		CapturedPiece: captured,
		Promotion:     m.Promote,
		Notation:      m.String(),
	}
	c.history = append(c.history, ply)
	c.logger.Info("move played",
		zap.Int("ply", ply.Number),
		zap.String("move", ply.Notation),
		zap.Stringer("piece", piece),
	)

	c.emit(PieceMoved{
		Piece:    piece,
		From:     m.From,
		To:       m.To,
		Captured: captured,
		Promoted: m.Promote,
		Ply:      ply.Number,
	})
	c.emit(TurnChanged{Side: c.board.SideToMove(), Ply: ply.Number})
	c.checkTerminal(piece.Color)
	c.dispatch()
	return nil
}

// checkTerminal ends the game when the side to move has no board move or the
// position has repeated too often. mover is the side that just played.
func (c *Controller) checkTerminal(mover shogi.Color) {
	pos := c.board.Position()
	key := pos.Key()
	c.seen[key]++
	if c.seen[key] >= repetitionLimit {
		c.finish(Outcome{Result: ResultRepetition})
		return
	}

	c.checkNoMoves(mover)
}

// Begin ends the game before the first move when the side to move starts
// without a legal move. The other side wins.
func (c *Controller) Begin() {
	if c.outcome != nil || len(c.history) > 0 {
		return
	}
	c.checkNoMoves(c.board.SideToMove().Opponent())
	c.dispatch()
}

func (c *Controller) checkNoMoves(winner shogi.Color) {
	switch c.board.Status() {
	case rules.Checkmate:
		c.finish(Outcome{Result: ResultCheckmate, Winner: &winner})
	case rules.Stalemate:
		// A side without a move loses in shogi.
		c.finish(Outcome{Result: ResultStalemate, Winner: &winner})
	}
}

func (c *Controller) finish(o Outcome) {
	c.outcome = &o
	fields := []zap.Field{zap.String("result", string(o.Result))}
	if o.Winner != nil {
		fields = append(fields, zap.Stringer("winner", *o.Winner))
	}
	c.logger.Info("game ended", fields...)
	c.emit(GameEnded{Outcome: o})
}

func (c *Controller) emit(ev Event) {
	c.pending = append(c.pending, ev)
}

// dispatch delivers queued events. Events queued by a listener are delivered
// after the ones already pending, never re-entrantly.
func (c *Controller) dispatch() {
	if c.dispatching {
		return
	}
	c.dispatching = true
	defer func() { c.dispatching = false }()

	for len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		for _, l := range c.listeners {
			l(ev)
		}
	}
}
