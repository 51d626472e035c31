package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/MrPicklePinosaur/shogiman/internal/kif"
	"github.com/MrPicklePinosaur/shogiman/internal/model"
	"github.com/MrPicklePinosaur/shogiman/internal/rules"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type ManagerConfig struct {
	StartSFEN     string
	ClockTime     time.Duration
	Scale         float64
	MatchInterval time.Duration
	Logger        *zap.Logger
}

// CreateOptions are the per-game choices a client makes.
type CreateOptions struct {
	VsComputer bool `json:"vsComputer"`
	// ComputerSide is the computer's color. It plays White when unset.
	ComputerSide *shogi.Color `json:"computerSide"`
	// SFEN overrides the server's default start position.
	SFEN string `json:"sfen"`
}

type MatchState string

const (
	MatchIdle    MatchState = "idle"
	MatchQueued  MatchState = "queued"
	MatchMatched MatchState = "matched"
)

type MatchStatus struct {
	Status MatchState   `json:"status"`
	GameID string       `json:"gameId,omitempty"`
	Color  *shogi.Color `json:"color,omitempty"`
}

type GameManager struct {
	games   map[string]*model.Game
	queue   *model.Queue
	matches map[string]model.MatchFoundEvent // playerID -> last match found
	oracle  rules.Oracle
	cfg     ManagerConfig
	logger  *zap.Logger
	mu      sync.RWMutex
}

func NewGameManager(cfg ManagerConfig) *GameManager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MatchInterval <= 0 {
		cfg.MatchInterval = time.Second
	}
	return &GameManager{
		games:   make(map[string]*model.Game),
		queue:   model.NewQueue(),
		matches: make(map[string]model.MatchFoundEvent),
		oracle:  rules.NewStandard(),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run pairs queued players every MatchInterval until ctx is done.
func (gm *GameManager) Run(ctx context.Context) {
	ticker := time.NewTicker(gm.cfg.MatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.processMatchmaking()
		}
	}
}

// processMatchmaking starts a game for every pair in the queue and returns
// how many games it started.
func (gm *GameManager) processMatchmaking() int {
	started := 0
	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return started
		}

		gameID := uuid.New().String()
		if err := gm.CreateGame(gameID, CreateOptions{}); err != nil {
			gm.logger.Error("failed to create matched game", zap.Error(err))
			return started
		}
		game, _ := gm.GetGame(gameID)

		gm.mu.Lock()
		for _, p := range []model.Player{player1, player2} {
			color, err := game.AddPlayer(p.ID)
			if err != nil {
				gm.logger.Error("failed to seat matched player",
					zap.String("game_id", gameID),
					zap.String("player_id", p.ID),
					zap.Error(err),
				)
				continue
			}
			gm.matches[p.ID] = model.MatchFoundEvent{GameID: gameID, Color: color}
		}
		gm.mu.Unlock()

		gm.logger.Info("match found",
			zap.String("game_id", gameID),
			zap.String("black", player1.ID),
			zap.String("white", player2.ID),
		)
		started++
	}
}

func (gm *GameManager) CreateGame(gameID string, opts CreateOptions) error {
	sfen := opts.SFEN
	if sfen == "" {
		sfen = gm.cfg.StartSFEN
	}
	cfg := model.GameConfig{
		StartSFEN: sfen,
		Oracle:    gm.oracle,
		Scale:     gm.cfg.Scale,
		ClockTime: gm.cfg.ClockTime,
		Logger:    gm.logger,
	}
	if opts.VsComputer {
		side := shogi.White
		if opts.ComputerSide != nil {
			side = *opts.ComputerSide
		}
		cfg.Computer = &side
	}

	if _, err := gm.GetGame(gameID); err == nil {
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	game, err := model.NewGame(gameID, cfg)
	if err != nil {
		return err
	}
	// Only a started game is registered, so a failed start leaves nothing
	// behind under gameID.
	if err := game.Start(); err != nil {
		return err
	}

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.logger.Info("game created", zap.String("game_id", gameID), zap.Bool("vs_computer", opts.VsComputer))
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (shogi.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return shogi.Black, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if playerID == model.ComputerID {
		return model.ErrNotAuthorized
	}
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}

	gm.mu.Lock()
	delete(gm.matches, playerID)
	gm.mu.Unlock()
	gm.logger.Debug("player queued", zap.String("player_id", playerID), zap.Int("queue_size", gm.queue.Size()))
	return nil
}

// LeaveMatchmaking takes playerID out of the queue. It reports false when the
// player was not queued.
func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	removed := gm.queue.Remove(playerID)
	if removed {
		gm.logger.Debug("player left queue", zap.String("player_id", playerID))
	}
	return removed
}

func (gm *GameManager) MatchmakingStatus(playerID string) MatchStatus {
	gm.mu.RLock()
	match, found := gm.matches[playerID]
	gm.mu.RUnlock()

	if found {
		color := match.Color
		return MatchStatus{Status: MatchMatched, GameID: match.GameID, Color: &color}
	}
	if gm.queue.Contains(playerID) {
		return MatchStatus{Status: MatchQueued}
	}
	return MatchStatus{Status: MatchIdle}
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) Click(gameID string, playerID string, sq shogi.Square) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Click(playerID, sq)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Resign(playerID)
}

func (gm *GameManager) WriteKIF(gameID string, w io.Writer, enc kif.Encoding) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return kif.Write(w, game.Record(), enc)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
