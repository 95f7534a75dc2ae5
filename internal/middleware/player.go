package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	PlayerIDKey    = "playerID"
	PlayerIDHeader = "X-Player-ID"
	PlayerIDQuery  = "playerId"

	maxPlayerIDLen = 64
)

// PlayerID returns the id stored by EnsurePlayerID, or "" if there is none.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}

// EnsurePlayerID takes the caller's id from the X-Player-ID header, falling
// back to the playerId query parameter, which browsers need for websockets.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PlayerID(c) != "" {
			return c.Next()
		}

		id := strings.TrimSpace(c.Get(PlayerIDHeader))
		if id == "" {
			id = strings.TrimSpace(c.Query(PlayerIDQuery))
		}
		switch {
		case id == "":
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player id required",
			})
		case len(id) > maxPlayerIDLen:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "player id too long",
			})
		}

		c.Locals(PlayerIDKey, id)
		return c.Next()
	}
}
