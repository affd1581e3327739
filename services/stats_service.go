package services

import (
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

type UserStats struct {
	TotalWorkouts   int64   `json:"total_workouts"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalDuration   int     `json:"total_duration_seconds"`
	TotalCalories   int     `json:"total_calories"`
	CurrentStreak   int     `json:"current_streak_days"`
	LongestStreak   int     `json:"longest_streak_days"`
	ThisWeekCount   int64   `json:"this_week_count"`
}

// computeStreaks walks distinct workout days newest first. The current
// streak counts back from today (yesterday still counts, a workout
// today just hasn't happened yet).
func computeStreaks(workouts []models.Workout, now time.Time) (current, longest int) {
	if len(workouts) == 0 {
		return 0, 0
	}

	seen := map[int64]bool{}
	var days []time.Time
	for _, w := range workouts {
		day := utils.DayUTC(w.StartTime)
		if !seen[day.Unix()] {
			seen[day.Unix()] = true
			days = append(days, day)
		}
	}
	// Workouts arrive ordered by start_time DESC, so days is too.

	today := utils.DayUTC(now)
	if days[0].Equal(today) || days[0].Equal(today.AddDate(0, 0, -1)) {
		current = 1
		for i := 1; i < len(days); i++ {
			if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
				current++
			} else {
				break
			}
		}
	}

	longest = 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return current, longest
}

// GetUserStats aggregates a user's lifetime and streak figures.
func (s *StatsService) GetUserStats(userID string, now time.Time) (*UserStats, error) {
	var workouts []models.Workout
	if err := s.DB.Where("user_id = ?", userID).
		Order("start_time DESC").Find(&workouts).Error; err != nil {
		return nil, err
	}

	stats := &UserStats{TotalWorkouts: int64(len(workouts))}
	weekStart := utils.DayUTC(now).AddDate(0, 0, -int(now.Weekday()))
	for _, w := range workouts {
		stats.TotalDistanceKm += w.DistanceMeters / 1000
		stats.TotalDuration += w.DurationSeconds
		stats.TotalCalories += w.CaloriesBurned
		if !w.StartTime.Before(weekStart) {
			stats.ThisWeekCount++
		}
	}
	stats.CurrentStreak, stats.LongestStreak = computeStreaks(workouts, now)
	return stats, nil
}

// Get handles GET /stats.
func (s *StatsService) Get(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	stats, err := s.GetUserStats(callerID, time.Now().UTC())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	return c.JSON(stats)
}
