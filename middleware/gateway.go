package middleware

import (
	"log"
	"os"
	"strings"

	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// GatewayAuthMiddleware validates the service token set by the gateway.
// Everything except health and the Strava webhook sits behind it.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("CHALLENGE_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("CHALLENGE_SERVICE_TOKEN is not set — service cannot authenticate gateway")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			utils.WithFields(logrus.Fields{"path": c.Path()}).
				Warn("missing Authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != expectedToken {
			utils.WithFields(logrus.Fields{"path": c.Path()}).
				Warn("invalid gateway token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}
		return c.Next()
	}
}
