package controller

import (
	"github.com/MrPicklePinosaur/shogiman/internal/middleware"
	"github.com/MrPicklePinosaur/shogiman/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// SetupRoutes mounts the REST and websocket endpoints on app. origins limits
// which pages may open the websocket; empty allows all.
func SetupRoutes(app *fiber.App, gameService *service.GameService, origins []string, logger *zap.Logger) {
	gameController := NewGameController(gameService, logger)
	wsController := NewWebSocketController(gameService, logger)

	app.Use("/ws", middleware.EnsurePlayerID(logger))
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}))

	api := app.Group("/api", middleware.EnsurePlayerID(logger))

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gameController.JoinMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gameController.LeaveMatchmaking)
	gameRoutes.Get("/matchmaking/status", gameController.MatchmakingStatus)
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId/kif", gameController.ExportKIF)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
}
