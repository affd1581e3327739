package handlers

import (
	"grindstake/middleware"
	"grindstake/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService,
	checkInService *services.CheckInService, escrowService *services.EscrowService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// /challenges/mine must register before /challenges/:id.
	secured.Get("/challenges/mine", challengeService.GetMine)
	secured.Post("/challenges", challengeService.Create)
	secured.Patch("/challenges/:id", challengeService.Update)
	secured.Get("/challenges/:id/invite", challengeService.GetInviteToken)

	// Lifecycle transitions
	secured.Patch("/challenges/:id/register", challengeService.Register)
	secured.Post("/challenges/:id/resolve", challengeService.Resolve)
	secured.Post("/challenges/:id/finalize", challengeService.Finalize)

	secured.Post("/challenges/:id/checkins", checkInService.Create)

	// Public routes still sit behind gateway auth, just without user context.
	app.Get("/challenges", challengeService.GetAll)
	app.Get("/challenges/:id", challengeService.GetByID)
	app.Get("/challenges/:id/progress", challengeService.GetProgress)
	app.Get("/challenges/:id/checkins", checkInService.List)
	app.Get("/challenges/:id/escrow", escrowService.GetMirror)
	app.Get("/escrow/challenges/:contractId", escrowService.GetByContractID)
}
