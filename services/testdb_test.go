package services

import (
	"testing"
	"time"

	"grindstake/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test an isolated in-memory database with the
// full schema. Single connection: sqlite memory DBs are per-connection.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.Bet{},
		&models.Workout{},
		&models.DailyCheckIn{},
		&models.EscrowMirror{},
		&models.CoachConversation{},
		&models.CoachMessage{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:            uuid.NewString(),
		WalletAddress: "0x" + uuid.NewString()[:8],
		Name:          "Test User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedChallenge creates an ACTIVE single-day distance challenge with a
// deadline seven days out, overridable via mutate.
func seedChallenge(t *testing.T, db *gorm.DB, creatorID string, mutate func(*models.Challenge)) *models.Challenge {
	t.Helper()
	challenge := &models.Challenge{
		ID:            uuid.NewString(),
		CreatorID:     creatorID,
		Title:         "Run 50k",
		Slug:          "run-50k",
		ChallengeMode: models.ModeSingleDay,
		GoalType:      models.GoalDistanceKm,
		GoalTarget:    50,
		GoalUnit:      "km",
		Status:        models.ChallengeActive,
		Deadline:      time.Now().UTC().Add(7 * 24 * time.Hour),
		CheckInSource: models.CheckInManual,
		InviteToken:   uuid.NewString(),
	}
	if mutate != nil {
		mutate(challenge)
	}
	require.NoError(t, db.Create(challenge).Error)
	return challenge
}

func seedWorkout(t *testing.T, db *gorm.DB, userID string, mutate func(*models.Workout)) *models.Workout {
	t.Helper()
	workout := &models.Workout{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Morning Run",
		Type:      models.WorkoutRun,
		Source:    models.SourceManual,
		StartTime: time.Now().UTC(),
	}
	if mutate != nil {
		mutate(workout)
	}
	require.NoError(t, db.Create(workout).Error)
	return workout
}
