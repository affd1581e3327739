package handlers

import (
	"grindstake/middleware"
	"grindstake/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWorkoutRoutes(app *fiber.App, workoutService *services.WorkoutService,
	stravaService *services.StravaService, statsService *services.StatsService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/workouts", workoutService.Create)
	secured.Get("/workouts", workoutService.List)
	secured.Delete("/workouts/:id", workoutService.Delete)

	secured.Get("/stats", statsService.Get)

	secured.Post("/strava/sync", stravaService.SyncNow)
	secured.Delete("/strava/connection", stravaService.Disconnect)

	// Webhook endpoints are called by Strava directly, outside the
	// gateway. Main registers them before gateway auth.
}

// SetupStravaWebhookRoutes registers the unauthenticated webhook pair.
func SetupStravaWebhookRoutes(app *fiber.App, stravaService *services.StravaService) {
	app.Get("/strava/webhook", stravaService.VerifyWebhook)
	app.Post("/strava/webhook", stravaService.HandleWebhook)
}
