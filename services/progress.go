package services

import (
	"sort"

	"grindstake/models"
	"grindstake/utils"

	"gorm.io/gorm"
)

// ComputeProgress derives a challenge's progress from the full ledger
// of linked workouts and check-ins. Pure: same inputs, same number.
// Always recomputed from scratch — never incrementally patched — so a
// replayed sync or a concurrent recompute can't drift the stored value.
func ComputeProgress(challenge *models.Challenge, workouts []models.Workout, checkIns []models.DailyCheckIn) float64 {
	var progress float64

	if challenge.ChallengeMode == models.ModeMultiDay {
		// Multi-day: progress = number of distinct check-in days,
		// regardless of goal type.
		days := make(map[int64]struct{}, len(checkIns))
		for _, ci := range checkIns {
			days[utils.DayUTC(ci.Date).Unix()] = struct{}{}
		}
		progress = float64(len(days))
	} else {
		switch challenge.GoalType {
		case models.GoalDistanceKm:
			for _, w := range workouts {
				progress += w.DistanceMeters / 1000
			}
		case models.GoalWorkoutCount:
			progress = float64(len(workouts))
		case models.GoalCaloriesBurned:
			for _, w := range workouts {
				progress += float64(w.CaloriesBurned)
			}
		case models.GoalWeightLossKg:
			// Loss = first reading minus most recent; anything between
			// the endpoints is ignored.
			weighted := make([]models.Workout, 0, len(workouts))
			for _, w := range workouts {
				if w.WeightKg != nil {
					weighted = append(weighted, w)
				}
			}
			sort.Slice(weighted, func(i, j int) bool {
				return weighted[i].StartTime.Before(weighted[j].StartTime)
			})
			if len(weighted) >= 2 {
				progress = *weighted[0].WeightKg - *weighted[len(weighted)-1].WeightKg
			}
		default:
			// CUSTOM and anything unrecognized fall back to a count.
			progress = float64(len(workouts))
		}
	}

	// Weight gain reads as 0, never negative.
	if progress < 0 {
		progress = 0
	}
	return progress
}

// RecalcChallengeProgress reloads the challenge's ledger and persists a
// freshly computed CurrentProgress. Re-entrant: concurrent recomputes
// over the same ledger state write the same number.
func RecalcChallengeProgress(db *gorm.DB, challengeID string) error {
	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	var workouts []models.Workout
	if err := db.Where("challenge_id = ?", challengeID).Find(&workouts).Error; err != nil {
		return err
	}
	var checkIns []models.DailyCheckIn
	if err := db.Where("challenge_id = ?", challengeID).Find(&checkIns).Error; err != nil {
		return err
	}

	progress := ComputeProgress(&challenge, workouts, checkIns)
	return db.Model(&models.Challenge{}).
		Where("id = ?", challengeID).
		Update("current_progress", progress).Error
}
