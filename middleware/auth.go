package middleware

import (
	"strings"

	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserContextMiddleware extracts the identity headers set by the
// gateway after wallet verification. Secured paths require X-User-ID;
// public paths pass through with whatever is present.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		wallet := strings.ToLower(c.Get("X-Wallet-Address"))

		path := c.Path()
		isSecured := strings.HasPrefix(path, "/s/")
		if isSecured && userID == "" {
			utils.WithFields(logrus.Fields{"path": path}).
				Warn("X-User-ID required but missing on secured route")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("wallet_address", wallet)
		return c.Next()
	}
}
