package handlers

import (
	"grindstake/middleware"
	"grindstake/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCoachRoutes(app *fiber.App, coachService *services.CoachService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/coach/chat", coachService.Chat)
	secured.Get("/coach/conversations", coachService.ListConversations)
	secured.Get("/coach/conversations/:id", coachService.GetConversation)
}
