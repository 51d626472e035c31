package service

import (
	"bytes"
	"fmt"

	"github.com/MrPicklePinosaur/shogiman/internal/kif"
	"github.com/MrPicklePinosaur/shogiman/internal/model"
	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
	"github.com/MrPicklePinosaur/shogiman/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (shogi.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame(opts CreateOptions) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID, opts); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) error {
	if !gs.gameManager.LeaveMatchmaking(playerID) {
		return model.ErrNotQueued
	}
	return nil
}

func (gs *GameService) MatchmakingStatus(playerID string) MatchStatus {
	return gs.gameManager.MatchmakingStatus(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleClick(gameID string, playerID string, sq shogi.Square) error {
	return gs.gameManager.Click(gameID, playerID, sq)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) HandleResign(gameID string, playerID string) error {
	return gs.gameManager.Resign(gameID, playerID)
}

// ExportKIF renders the game record. encoding is a charset name; empty
// means UTF-8.
func (gs *GameService) ExportKIF(gameID string, encoding string) ([]byte, kif.Encoding, error) {
	enc, err := kif.ParseEncoding(encoding)
	if err != nil {
		return nil, enc, err
	}
	var buf bytes.Buffer
	if err := gs.gameManager.WriteKIF(gameID, &buf, enc); err != nil {
		return nil, enc, err
	}
	return buf.Bytes(), enc, nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

// SendError reports err to the player's own connection.
func (gs *GameService) SendError(gameID string, playerID string, err error) error {
	game, getErr := gs.gameManager.GetGame(gameID)
	if getErr != nil {
		return getErr
	}
	return game.Send(playerID, ws.NewError(err))
}
