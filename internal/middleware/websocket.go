package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// GameLookup reports whether a game id refers to a live game.
type GameLookup func(gameID string) bool

// WebSocketUpgrade lets a request through to the websocket handler only if
// it is an upgrade for a known game from an identified player. Failures are
// answered over plain HTTP before the protocol switch.
func WebSocketUpgrade(exists GameLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if PlayerID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player id required",
			})
		}
		if gameID := c.Params("gameId"); gameID == "" || !exists(gameID) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "game not found",
			})
		}
		return c.Next()
	}
}
