package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chessbot-backend/internal/middleware"
	"github.com/benbeisheim/chessbot-backend/internal/model"
	"github.com/benbeisheim/chessbot-backend/internal/service"
	"github.com/benbeisheim/chessbot-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals(middleware.PlayerIDKey).(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: failed to register connection for %s: %v", gameID, playerID, err)
		wsc.sendError(gameID, c, err.Error())
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read error for %s: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("game %s: parse error from %s: %v", gameID, playerID, err)
			wsc.sendError(gameID, c, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: %s message from %s rejected: %v", gameID, msg.Type, playerID, err)
			wsc.sendError(gameID, c, err.Error())
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeSelect:
		var sel model.WSSelect
		if err := json.Unmarshal(msg.Payload, &sel); err != nil {
			return err
		}
		return wsc.gameService.HandleSelect(gameID, playerID, sel)

	case ws.MessageTypeUndo:
		return wsc.gameService.HandleUndo(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(gameID string, c *websocket.Conn, errorMsg string) {
	if err := wsc.gameService.SendError(gameID, c, errorMsg); err != nil {
		log.Debugf("game %s: failed to send error message: %v", gameID, err)
	}
}
