package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grindstake/handlers"
	"grindstake/middleware"
	"grindstake/models"
	"grindstake/services"
	"grindstake/utils"
	"grindstake/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}
	utils.InitLogger()

	app := fiber.New(fiber.Config{
		AppName: "grindstake-challenge-service",
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-Wallet-Address",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.Bet{},
		&models.Workout{},
		&models.DailyCheckIn{},
		&models.EscrowMirror{},
		&models.CoachConversation{},
		&models.CoachMessage{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	escrowClient, err := services.NewEscrowClient()
	if err != nil {
		log.Fatal("failed to initialize escrow client:", err)
	}
	if escrowClient == nil {
		log.Println("ETH_RPC_URL or ESCROW_CONTRACT_ADDRESS unset — running chain-blind")
	}

	challengeService := services.NewChallengeService(db)
	betService := services.NewBetService(db, escrowClient)
	checkInService := services.NewCheckInService(db)
	workoutService := services.NewWorkoutService(db)
	stravaService := services.NewStravaService(db)
	coachService := services.NewCoachService(db)
	userService := services.NewUserService(db)
	statsService := services.NewStatsService(db)
	escrowService := services.NewEscrowService(db, escrowClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if escrowClient != nil {
		escrowWorker := workers.NewEscrowSyncWorker(db, escrowClient)
		go escrowWorker.PollEscrow(ctx, 30*time.Second)
	}

	stravaWorker := workers.NewStravaSyncWorker(db, stravaService)
	go stravaWorker.Start(ctx)

	progressScheduler := challengeService.StartProgressScheduler()

	// Strava calls the webhook directly, so it registers before gateway
	// auth. Everything after the Use requires the service token.
	handlers.SetupStravaWebhookRoutes(app, stravaService)
	app.Use(middleware.GatewayAuthMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handlers.SetupUserRoutes(app, userService)
	handlers.SetupChallengeRoutes(app, challengeService, checkInService, escrowService)
	handlers.SetupBetRoutes(app, betService)
	handlers.SetupWorkoutRoutes(app, workoutService, stravaService, statsService)
	handlers.SetupCoachRoutes(app, coachService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Printf("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = progressScheduler.Shutdown()
	if escrowClient != nil {
		escrowClient.Close()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
