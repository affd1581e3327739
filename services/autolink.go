package services

import (
	"grindstake/models"
	"grindstake/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoLinkAndUpdate matches the user's unlinked workouts to their
// ACTIVE challenges by time-window overlap, derives check-ins for
// multi-day challenges, then recomputes progress for every active
// challenge touched. Runs after any workout write (manual entry, bulk
// sync, or webhook), so it has to be safe to invoke repeatedly.
func AutoLinkAndUpdate(db *gorm.DB, userID string) error {
	var activeChallenges []models.Challenge
	if err := db.Where("creator_id = ? AND status = ?", userID, models.ChallengeActive).
		Find(&activeChallenges).Error; err != nil {
		return err
	}
	if len(activeChallenges) == 0 {
		return nil
	}

	var unlinked []models.Workout
	if err := db.Where("user_id = ? AND challenge_id IS NULL", userID).
		Find(&unlinked).Error; err != nil {
		return err
	}

	for _, challenge := range activeChallenges {
		// Window is inclusive on both ends: a workout exactly at
		// creation or exactly at the deadline counts.
		var matched []models.Workout
		for _, w := range unlinked {
			if utils.WithinWindow(w.StartTime, challenge.CreatedAt, challenge.Deadline) {
				matched = append(matched, w)
			}
		}

		if challenge.ChallengeMode == models.ModeSingleDay && len(matched) > 0 {
			ids := make([]string, 0, len(matched))
			for _, w := range matched {
				ids = append(ids, w.ID)
			}
			// One-way: a linked workout is never automatically unlinked.
			if err := db.Model(&models.Workout{}).
				Where("id IN ?", ids).
				Update("challenge_id", challenge.ID).Error; err != nil {
				return err
			}
			utils.WithFields(logrus.Fields{
				"challenge_id": challenge.ID,
				"workouts":     len(ids),
			}).Debug("auto-linked workouts")
		}

		if challenge.ChallengeMode == models.ModeMultiDay {
			days := make(map[int64]struct{})
			for _, w := range matched {
				days[utils.DayUTC(w.StartTime).Unix()] = struct{}{}
			}
			for day := range days {
				checkIn := models.DailyCheckIn{
					ID:          uuid.NewString(),
					ChallengeID: challenge.ID,
					UserID:      userID,
					Date:        utils.UnixUTC(day),
					Source:      models.CheckInStrava,
				}
				// DoNothing: an existing check-in (manual or derived)
				// wins — an auto-derived row must never clobber a
				// manual note, and concurrent derivations collapse to
				// the one row the unique key allows.
				if err := db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "date"}},
					DoNothing: true,
				}).Create(&checkIn).Error; err != nil {
					utils.WithFields(logrus.Fields{
						"challenge_id": challenge.ID,
						"date":         checkIn.Date,
					}).Warn("check-in upsert failed, skipping")
				}
			}
		}

		// Recompute even when nothing matched: keeps the stored value
		// consistent with whatever the ledger holds right now.
		if err := RecalcChallengeProgress(db, challenge.ID); err != nil {
			return err
		}
	}
	return nil
}
