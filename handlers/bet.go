package handlers

import (
	"grindstake/middleware"
	"grindstake/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBetRoutes(app *fiber.App, betService *services.BetService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/bets", betService.Create)
	secured.Get("/bets", betService.List)
}
