package controller

import (
	"errors"
	"time"

	"github.com/benbeisheim/chessbot-backend/internal/engine"
	"github.com/benbeisheim/chessbot-backend/internal/middleware"
	"github.com/benbeisheim/chessbot-backend/internal/model"
	"github.com/benbeisheim/chessbot-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
	matchWait   time.Duration
}

func NewGameController(gameService *service.GameService, matchWait time.Duration) *GameController {
	return &GameController{gameService: gameService, matchWait: matchWait}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	if err := gc.gameService.HandleMove(gameID, playerID, move); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	if err := gc.gameService.HandleUndo(gameID, playerID); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

// JoinMatchmaking queues the player and waits up to matchWait for a match.
// Calling it again while queued resumes waiting.
func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := middleware.PlayerID(c)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		return respondError(c, err)
	}

	ch := make(chan string, 1)
	if err := gc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		return respondError(c, err)
	}

	timer := time.NewTimer(gc.matchWait)
	defer timer.Stop()
	select {
	case event, ok := <-ch:
		return matchResponse(c, event, ok)
	case <-timer.C:
		gc.gameService.UnregisterMatchmakingChannel(playerID)
		// The match may have landed between the timeout and unregistering.
		select {
		case event, ok := <-ch:
			return matchResponse(c, event, ok)
		default:
		}
		return c.JSON(fiber.Map{"status": "queued"})
	}
}

func matchResponse(c *fiber.Ctx, event string, ok bool) error {
	if !ok {
		// Replaced by a newer request from the same player.
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "superseded"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(event)
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	playerID := middleware.PlayerID(c)
	gc.gameService.UnregisterMatchmakingChannel(playerID)
	return c.JSON(fiber.Map{"removed": gc.gameService.LeaveMatchmaking(playerID)})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrGameFull), errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrNotInGame), errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrPromotionUnsupported):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidFEN), errors.Is(err, engine.ErrInvalidSquare):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return errorJSON(c, status, err)
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
