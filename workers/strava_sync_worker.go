package workers

import (
	"context"
	"time"

	"grindstake/models"
	"grindstake/services"
	"grindstake/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StravaSyncWorker periodically pulls activities for connected users.
// Webhooks are the fast path; this loop backfills anything missed while
// we were down or the subscription lapsed.
type StravaSyncWorker struct {
	db       *gorm.DB
	strava   *services.StravaService
	interval time.Duration
}

func NewStravaSyncWorker(db *gorm.DB, strava *services.StravaService) *StravaSyncWorker {
	return &StravaSyncWorker{
		db:       db,
		strava:   strava,
		interval: 15 * time.Minute,
	}
}

func (w *StravaSyncWorker) Start(ctx context.Context) {
	utils.WithFields(logrus.Fields{"interval": w.interval.String()}).
		Info("starting strava backfill worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.WithFields(logrus.Fields{}).Info("strava backfill worker stopped")
			return
		case <-ticker.C:
			w.run()
		}
	}
}

func (w *StravaSyncWorker) run() {
	// Stale first: users whose last sync is oldest get priority.
	var users []models.User
	err := w.db.Where("strava_connected = ?", true).
		Order("last_strava_sync ASC NULLS FIRST").
		Limit(50).Find(&users).Error
	if err != nil {
		utils.WithFields(logrus.Fields{}).Errorf("strava backfill query failed: %v", err)
		return
	}

	totalSynced := 0
	for i := range users {
		synced, err := w.strava.SyncUserActivities(&users[i])
		if err != nil {
			utils.WithFields(logrus.Fields{"user_id": users[i].ID}).
				Warnf("strava backfill failed for user: %v", err)
			continue
		}
		totalSynced += synced
	}
	if totalSynced > 0 {
		utils.WithFields(logrus.Fields{"users": len(users), "activities": totalSynced}).
			Info("strava backfill completed")
	}
}
