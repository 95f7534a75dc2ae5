package service

import (
	"fmt"

	"github.com/benbeisheim/chessbot-backend/internal/model"
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

func (gs *GameService) JoinGame(gameID string, playerID string) (model.PlayerColor, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

// CreateGame registers a new game. An empty fen means the standard start.
func (gs *GameService) CreateGame(fen string) (string, error) {
	gameID := uuid.New().String()

	var err error
	if fen == "" {
		err = gs.gameManager.CreateGame(gameID)
	} else {
		err = gs.gameManager.CreateGameFromFEN(gameID, fen)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

// GameExists reports whether gameID is registered.
func (gs *GameService) GameExists(gameID string) bool {
	_, err := gs.gameManager.GetGame(gameID)
	return err == nil
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) HandleUndo(gameID string, playerID string) error {
	return gs.gameManager.Undo(gameID, playerID)
}

func (gs *GameService) HandleSelect(gameID string, playerID string, sel model.WSSelect) error {
	return gs.gameManager.Select(gameID, playerID, sel)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}

func (gs *GameService) SendError(gameID string, conn *websocket.Conn, errorMsg string) error {
	return gs.gameManager.SendError(gameID, conn, errorMsg)
}
