package services

import (
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// StartProgressScheduler runs the periodic consistency sweep. Stored
// progress is a cache of the recompute; the sweep heals any drift from
// crashed requests or missed webhook deliveries.
func (s *ChallengeService) StartProgressScheduler() gocron.Scheduler {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 10 minutes: recompute progress for every active challenge.
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			var challenges []models.Challenge
			err := s.DB.Where("status = ?", models.ChallengeActive).
				Find(&challenges).Error
			if err != nil {
				utils.WithFields(logrus.Fields{}).Errorf("progress sweep query failed: %v", err)
				return
			}

			for _, ch := range challenges {
				if err := RecalcChallengeProgress(s.DB, ch.ID); err != nil {
					utils.WithFields(logrus.Fields{"challenge_id": ch.ID}).
						Warnf("progress sweep recalc failed: %v", err)
				}
			}
			if len(challenges) > 0 {
				utils.WithFields(logrus.Fields{"count": len(challenges)}).
					Debug("progress sweep completed")
			}
		}),
	)

	// Every hour: flag active challenges past their deadline so the
	// frontend can prompt the creator to resolve.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			var count int64
			err := s.DB.Model(&models.Challenge{}).
				Where("status = ? AND deadline < ?", models.ChallengeActive, time.Now().UTC()).
				Count(&count).Error
			if err != nil {
				return
			}
			if count > 0 {
				utils.WithFields(logrus.Fields{"count": count}).
					Info("active challenges past deadline awaiting resolution")
			}
		}),
	)

	return sched
}
