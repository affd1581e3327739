package workers

import (
	"context"
	"time"

	"grindstake/models"
	"grindstake/services"
	"grindstake/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EscrowSyncWorker mirrors on-chain escrow state into the escrow_mirror
// table. The mirror is advisory read-model only; settlement authority
// stays with the contract.
type EscrowSyncWorker struct {
	DB     *gorm.DB
	Escrow *services.EscrowClient
}

func NewEscrowSyncWorker(db *gorm.DB, escrow *services.EscrowClient) *EscrowSyncWorker {
	return &EscrowSyncWorker{DB: db, Escrow: escrow}
}

// PollEscrow refreshes the mirror for every registered, non-terminal
// challenge on each tick.
func (w *EscrowSyncWorker) PollEscrow(ctx context.Context, pollInterval time.Duration) {
	utils.WithFields(logrus.Fields{"interval": pollInterval.String()}).
		Info("starting escrow mirror polling")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.WithFields(logrus.Fields{}).Info("escrow polling stopped")
			return
		case <-ticker.C:
			w.syncOnce(ctx)
		}
	}
}

func (w *EscrowSyncWorker) syncOnce(ctx context.Context) {
	var challenges []models.Challenge
	err := w.DB.Where("contract_challenge_id IS NOT NULL AND status NOT IN ?",
		[]models.ChallengeStatus{models.ChallengeCompleted, models.ChallengeFailed, models.ChallengeCancelled}).
		Find(&challenges).Error
	if err != nil {
		utils.WithFields(logrus.Fields{}).Errorf("escrow sync query failed: %v", err)
		return
	}

	synced := 0
	for _, ch := range challenges {
		if err := w.syncChallenge(ctx, &ch); err != nil {
			utils.WithFields(logrus.Fields{"challenge_id": ch.ID}).
				Warnf("escrow sync failed: %v", err)
			continue
		}
		synced++
	}
	if synced > 0 {
		utils.WithFields(logrus.Fields{"count": synced}).Debug("escrow mirror refreshed")
	}
}

func (w *EscrowSyncWorker) syncChallenge(ctx context.Context, ch *models.Challenge) error {
	callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	state, err := w.Escrow.GetChallengeState(callCtx, *ch.ContractChallengeID)
	if err != nil {
		return err
	}

	mirror := models.EscrowMirror{
		ID:                  uuid.NewString(),
		ChallengeID:         ch.ID,
		ContractChallengeID: *ch.ContractChallengeID,
		State:               models.EscrowState(state.State),
		TotalForWei:         state.TotalFor.String(),
		TotalAgainstWei:     state.TotalAgainst.String(),
		ResolvedAtUnix:      state.ResolvedAt.Int64(),
		LastCheckedAt:       time.Now().UTC(),
	}
	if state.ResolvedAt.Sign() > 0 {
		succeeded := state.CreatorSucceeded
		mirror.CreatorSucceeded = &succeeded
	}

	// Upsert keyed on contract_challenge_id so each escrow id keeps a
	// single mirror row.
	return w.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "contract_challenge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state",
			"total_for_wei",
			"total_against_wei",
			"creator_succeeded",
			"resolved_at_unix",
			"last_checked_at",
			"updated_at",
		}),
	}).Create(&mirror).Error
}
