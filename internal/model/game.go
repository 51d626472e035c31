package model

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/MrPicklePinosaur/shogiman/internal/kif"
	"github.com/MrPicklePinosaur/shogiman/internal/rules"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
	"github.com/MrPicklePinosaur/shogiman/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const DefaultClockTime = 600 * time.Second

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// GameConfig describes how a game is set up. Zero values pick the defaults.
type GameConfig struct {
	StartSFEN string
	Oracle    rules.Oracle
	Scale     float64
	ClockTime time.Duration
	// Computer seats the random opponent on this side when set.
	Computer *shogi.Color
	Rand     *rand.Rand
	Logger   *zap.Logger
}

// Game is one session: the controller plus players, clocks and the
// websocket observers. All controller access goes through mu.
type Game struct {
	ID          string
	mu          sync.Mutex
	ctrl        *Controller
	opponent    *Opponent
	start       shogi.Position
	startedAt   time.Time
	players     [2]ClientPlayer
	clocks      [2]*Clock
	outbox      []Event
	connections *GameConnections
	logger      *zap.Logger
}

type GameState struct {
	ID             string         `json:"id"`
	SFEN           string         `json:"sfen"`
	Board          []ClientPiece  `json:"board"`
	Hands          ClientHands    `json:"hands"`
	ToMove         shogi.Color    `json:"toMove"`
	MoveHistory    []Ply          `json:"moveHistory"`
	IsCheck        bool           `json:"isCheck"`
	SelectedSquare *shogi.Square  `json:"selectedSquare"`
	LegalMoves     []shogi.Square `json:"legalMoves"`
	Resolve        *Outcome       `json:"resolve"`
	Players        struct {
		Black ClientPlayer `json:"black"`
		White ClientPlayer `json:"white"`
	} `json:"players"`
	LastMove *SimpleMove `json:"lastMove"`
}

// ClientPiece is a piece with what a renderer needs to place it.
type ClientPiece struct {
	Square   shogi.Square `json:"square"`
	Piece    shogi.Piece  `json:"piece"`
	Sprite   string       `json:"sprite"`
	Position Vec2         `json:"position"`
}

type ClientHands struct {
	Black map[string]int `json:"black"`
	White map[string]int `json:"white"`
}

func NewGame(id string, cfg GameConfig) (*Game, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("game_id", id))

	sfen := cfg.StartSFEN
	if sfen == "" {
		sfen = shogi.StartSFEN
	}
	board, err := NewBoardFromSFEN(cfg.Oracle, sfen, cfg.Scale)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	clockTime := cfg.ClockTime
	if clockTime <= 0 {
		clockTime = DefaultClockTime
	}

	g := &Game{
		ID:          id,
		ctrl:        NewController(board, logger),
		start:       board.Position(),
		startedAt:   time.Now(),
		clocks:      [2]*Clock{NewClock(clockTime), NewClock(clockTime)},
		connections: NewGameConnections(),
		logger:      logger,
	}
	for _, c := range []shogi.Color{shogi.Black, shogi.White} {
		g.players[c] = ClientPlayer{Color: c, TimeLeft: g.clocks[c].Tenths()}
	}
	g.ctrl.Subscribe(g.onEvent)

	if cfg.Computer != nil {
		side := *cfg.Computer
		g.players[side] = ClientPlayer{ID: ComputerID, Color: side, TimeLeft: g.clocks[side].Tenths(), Computer: true}
		g.opponent = NewOpponent(g.ctrl, side, cfg.Rand, logger)
	}
	return g, nil
}

func (g *Game) onEvent(ev Event) {
	g.outbox = append(g.outbox, ev)
	switch e := ev.(type) {
	case TurnChanged:
		g.clocks[e.Side.Opponent()].Stop()
		g.clocks[e.Side].Start()
	case GameEnded:
		g.clocks[shogi.Black].Stop()
		g.clocks[shogi.White].Stop()
	}
}

// Start ends the game at once if the side to move has no legal move, and
// otherwise lets the computer make the first move when it has it.
func (g *Game) Start() error {
	g.mu.Lock()
	g.ctrl.Begin()
	var err error
	if g.opponent != nil {
		err = g.opponent.Start()
	}
	events, state := g.flush()
	g.release(events, state)
	return err
}

func (g *Game) AddPlayer(playerID string) (shogi.Color, error) {
	if playerID == ComputerID {
		return shogi.Black, ErrNotAuthorized
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, nil
	}
	for _, c := range []shogi.Color{shogi.Black, shogi.White} {
		if g.players[c].ID == "" {
			g.players[c].ID = playerID
			g.logger.Info("player joined", zap.String("player_id", playerID), zap.Stringer("color", c))
			return c, nil
		}
	}
	return shogi.Black, ErrGameFull
}

// colorOf finds the human seat held by playerID. The computer's seat is never
// returned, whatever id a client claims.
func (g *Game) colorOf(playerID string) (shogi.Color, bool) {
	for _, c := range []shogi.Color{shogi.Black, shogi.White} {
		p := g.players[c]
		if p.ID != "" && !p.Computer && p.ID == playerID {
			return c, true
		}
	}
	return shogi.Black, false
}

func (g *Game) isPlayerInGame(playerID string) bool {
	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) canSpectate() bool {
	return g.players[shogi.Black].ID == "" || g.players[shogi.White].ID == ""
}

// seatFor returns the color playerID plays if it is that side's turn.
func (g *Game) seatFor(playerID string) (shogi.Color, error) {
	c, ok := g.colorOf(playerID)
	if !ok {
		return c, ErrNotInGame
	}
	if g.ctrl.Board().SideToMove() != c {
		return c, ErrNotYourTurn
	}
	return c, nil
}

// checkFlag ends the game on time when side's clock has run out.
func (g *Game) checkFlag(side shogi.Color) error {
	if !g.clocks[side].Expired() {
		return nil
	}
	if err := g.ctrl.Resign(side, ResultTimeout); err != nil {
		return err
	}
	return ErrGameOver
}

// Click forwards a square click from playerID to the controller.
func (g *Game) Click(playerID string, sq shogi.Square) error {
	g.mu.Lock()
	err := g.click(playerID, sq)
	events, state := g.flush()
	g.release(events, state)
	return err
}

func (g *Game) click(playerID string, sq shogi.Square) error {
	side, err := g.seatFor(playerID)
	if err != nil {
		return err
	}
	if err := g.checkFlag(side); err != nil {
		return err
	}
	return g.ctrl.Click(sq)
}

// MakeMove plays a fully specified move for playerID.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	err := g.makeMove(playerID, move)
	events, state := g.flush()
	g.release(events, state)
	return err
}

func (g *Game) makeMove(playerID string, move WSMove) error {
	side, err := g.seatFor(playerID)
	if err != nil {
		return err
	}
	if err := g.checkFlag(side); err != nil {
		return err
	}
	return g.ctrl.Play(move.Move())
}

func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	var err error
	if side, ok := g.colorOf(playerID); ok {
		err = g.ctrl.Resign(side, ResultResign)
	} else {
		err = ErrNotInGame
	}
	events, state := g.flush()
	g.release(events, state)
	return err
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) Outcome() (Outcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctrl.Outcome()
}

// Record returns the game as a KIF record.
func (g *Game) Record() kif.Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := kif.Record{
		Start:     g.start,
		StartedAt: g.startedAt,
		Black:     g.players[shogi.Black].ID,
		White:     g.players[shogi.White].ID,
	}
	for _, p := range g.ctrl.History() {
		rec.Moves = append(rec.Moves, kif.Move{
			Piece:   p.Piece,
			From:    p.From,
			To:      p.To,
			Promote: p.Promotion,
		})
	}
	if o, ok := g.ctrl.Outcome(); ok {
		rec.Result = kifResult(o.Result)
		rec.Winner = o.Winner
	}
	return rec
}

func kifResult(r Result) kif.Result {
	switch r {
	case ResultCheckmate, ResultStalemate:
		return kif.ResultMate
	case ResultRepetition:
		return kif.ResultRepetition
	case ResultResign:
		return kif.ResultResign
	case ResultTimeout:
		return kif.ResultTimeout
	}
	return kif.ResultNone
}

func (g *Game) flush() ([]Event, GameState) {
	events := g.outbox
	g.outbox = nil
	return events, g.state()
}

func (g *Game) state() GameState {
	board := g.ctrl.Board()
	pos := board.Position()

	st := GameState{
		ID:          g.ID,
		SFEN:        pos.SFEN(),
		Board:       make([]ClientPiece, 0, 40),
		ToMove:      pos.SideToMove(),
		MoveHistory: g.ctrl.History(),
		IsCheck:     board.InCheck(pos.SideToMove()),
		LegalMoves:  g.ctrl.Targets(),
		Hands: ClientHands{
			Black: handCounts(pos.Hand(shogi.Black)),
			White: handCounts(pos.Hand(shogi.White)),
		},
	}
	for _, sq := range shogi.Squares() {
		pc, ok := pos.PieceAt(sq)
		if !ok {
			continue
		}
		st.Board = append(st.Board, ClientPiece{
			Square:   sq,
			Piece:    pc,
			Sprite:   pc.Sprite(),
			Position: board.SquareToWorld(sq),
		})
	}
	if sel, ok := g.ctrl.Hand(); ok {
		origin := sel.Origin
		st.SelectedSquare = &origin
	}
	if o, ok := g.ctrl.Outcome(); ok {
		st.Resolve = &o
	}
	if h := st.MoveHistory; len(h) > 0 {
		last := h[len(h)-1]
		st.LastMove = &SimpleMove{From: last.From, To: last.To}
	}
	for _, c := range []shogi.Color{shogi.Black, shogi.White} {
		g.players[c].TimeLeft = g.clocks[c].Tenths()
	}
	st.Players.Black = g.players[shogi.Black]
	st.Players.White = g.players[shogi.White]
	return st
}

func handCounts(h shogi.Hand) map[string]int {
	out := make(map[string]int)
	for _, t := range shogi.HandTypes {
		if n := h.Count(t); n > 0 {
			out[t.String()] = n
		}
	}
	return out
}

// RegisterConnection adds conn as playerID's observer and sends everyone the
// current state. The state is taken and sent under the same hand-off as
// release, so it cannot overtake a newer one.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	if !g.isPlayerInGame(playerID) && !g.canSpectate() {
		g.mu.Unlock()
		return ErrNotAuthorized
	}
	state := g.state()
	g.connections.mu.Lock()
	g.mu.Unlock()
	defer g.connections.mu.Unlock()

	if _, exists := g.connections.connections[playerID]; exists {
		// keep the healthy connection, reject the duplicate
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.logger.Info("connection registered", zap.String("player_id", playerID))

	g.writeAll(nil, state)
	return nil
}

// UnregisterConnection drops playerID's connection if it is still conn.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		g.logger.Info("connection unregistered", zap.String("player_id", playerID))
	}
}

// Send writes msg to playerID's connection only.
func (g *Game) Send(playerID string, msg ws.Message) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	conn, exists := g.connections.connections[playerID]
	if !exists {
		return ErrNotInGame
	}
	return conn.WriteJSON(msg)
}

// release must be called with mu held. It hands over to the connections lock
// before unlocking mu, so broadcasts leave in commit order.
func (g *Game) release(events []Event, state GameState) {
	g.connections.mu.Lock()
	g.mu.Unlock()
	defer g.connections.mu.Unlock()
	g.writeAll(events, state)
}

// writeAll sends events followed by the resulting state to every connection.
// Connections that fail a write are dropped.
func (g *Game) writeAll(events []Event, state GameState) {
	messages := make([]ws.Message, 0, len(events)+1)
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			g.logger.Error("failed to marshal event", zap.String("type", string(ev.Type())), zap.Error(err))
			continue
		}
		messages = append(messages, ws.Message{Type: ws.MessageType(ev.Type()), Payload: payload})
	}
	payload, err := json.Marshal(state)
	if err != nil {
		g.logger.Error("failed to marshal state", zap.Error(err))
		return
	}
	messages = append(messages, ws.Message{Type: ws.MessageTypeGameState, Payload: payload})

	for playerID, conn := range g.connections.connections {
		for _, msg := range messages {
			if err := conn.WriteJSON(msg); err != nil {
				g.logger.Warn("failed to send to player", zap.String("player_id", playerID), zap.Error(err))
				delete(g.connections.connections, playerID)
				break
			}
		}
	}
}
