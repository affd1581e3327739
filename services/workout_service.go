package services

import (
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WorkoutService struct {
	DB *gorm.DB
}

func NewWorkoutService(db *gorm.DB) *WorkoutService {
	return &WorkoutService{DB: db}
}

var validWorkoutTypes = map[models.WorkoutType]bool{
	models.WorkoutRun:            true,
	models.WorkoutRide:           true,
	models.WorkoutSwim:           true,
	models.WorkoutWalk:           true,
	models.WorkoutHike:           true,
	models.WorkoutWeightTraining: true,
	models.WorkoutYoga:           true,
	models.WorkoutCrossfit:       true,
	models.WorkoutSport:          true,
	models.WorkoutOther:          true,
}

type CreateWorkoutRequest struct {
	Name            string   `json:"name"`
	Type            string   `json:"workout_type"`
	StartTime       string   `json:"start_time"`
	DurationSeconds int      `json:"duration_seconds"`
	DistanceMeters  float64  `json:"distance_meters"`
	ElevationGainM  float64  `json:"elevation_gain_m"`
	CaloriesBurned  int      `json:"calories_burned"`
	AvgHeartRate    int      `json:"avg_heart_rate"`
	WeightKg        *float64 `json:"weight_kg"`
	Notes           string   `json:"notes"`
}

// CreateWorkout inserts a manual workout and runs auto-linking so any
// open challenge of the user picks it up immediately.
func CreateWorkout(db *gorm.DB, userID string, req CreateWorkoutRequest) (*models.Workout, error) {
	wType := models.WorkoutType(req.Type)
	if !validWorkoutTypes[wType] {
		return nil, &ValidationError{Field: "workout_type", Reason: "unknown workout type"}
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, &ValidationError{Field: "start_time", Reason: "must be RFC3339"}
	}
	if req.DurationSeconds < 0 || req.DistanceMeters < 0 {
		return nil, &ValidationError{Field: "duration_seconds", Reason: "metrics cannot be negative"}
	}
	if req.WeightKg != nil && *req.WeightKg <= 0 {
		return nil, &ValidationError{Field: "weight_kg", Reason: "must be positive"}
	}

	workout := models.Workout{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            req.Name,
		Type:            wType,
		Source:          models.SourceManual,
		StartTime:       startTime.UTC(),
		DurationSeconds: req.DurationSeconds,
		MovingSeconds:   req.DurationSeconds,
		DistanceMeters:  req.DistanceMeters,
		ElevationGainM:  req.ElevationGainM,
		CaloriesBurned:  req.CaloriesBurned,
		AvgHeartRate:    req.AvgHeartRate,
		WeightKg:        req.WeightKg,
		Notes:           req.Notes,
	}
	if err := db.Create(&workout).Error; err != nil {
		return nil, err
	}

	if err := AutoLinkAndUpdate(db, userID); err != nil {
		utils.WithFields(logrus.Fields{"user_id": userID, "workout_id": workout.ID}).
			Warnf("auto-link after workout failed: %v", err)
	}
	return &workout, nil
}

// Create handles POST /workouts.
func (s *WorkoutService) Create(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var req CreateWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	workout, err := CreateWorkout(s.DB, callerID, req)
	if err != nil {
		return challengeError(c, err)
	}
	return c.Status(201).JSON(workout)
}

// List handles GET /workouts — the caller's workouts newest first,
// optionally filtered by ?challenge_id=.
func (s *WorkoutService) List(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	q := s.DB.Where("user_id = ?", callerID).Order("start_time DESC")
	if challengeID := c.Query("challenge_id"); challengeID != "" {
		q = q.Where("challenge_id = ?", challengeID)
	}

	var workouts []models.Workout
	if err := q.Find(&workouts).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch workouts"})
	}
	return c.JSON(workouts)
}

// Delete handles DELETE /workouts/:id. Owner-only; linked challenges
// get their progress recomputed after the row is gone.
func (s *WorkoutService) Delete(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	var workout models.Workout
	if err := s.DB.First(&workout, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "workout not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch workout"})
	}
	if workout.UserID != callerID {
		return c.Status(403).JSON(fiber.Map{"error": "not your workout"})
	}

	if err := s.DB.Delete(&workout).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete workout"})
	}
	if workout.ChallengeID != nil {
		if err := RecalcChallengeProgress(s.DB, *workout.ChallengeID); err != nil {
			utils.WithFields(logrus.Fields{"challenge_id": *workout.ChallengeID}).
				Warnf("progress recalc after delete failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"message": "workout deleted"})
}
