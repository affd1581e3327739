package handlers

import (
	"grindstake/middleware"
	"grindstake/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users/me", userService.Me)
	secured.Patch("/users/me", userService.UpdateMe)

	// Called by the gateway itself after wallet verification.
	app.Post("/users/connect", userService.Connect)
}
