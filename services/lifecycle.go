package services

import (
	"time"

	"grindstake/models"
	"grindstake/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Lifecycle is the one place that writes Challenge.Status. Every
// transition is a guarded, conditional single-row update: the WHERE
// clause re-checks the expected current state so racing writers
// collapse to exactly one effective transition.

// activateIfInitialized flips INITIALIZED → ACTIVE. Idempotent under
// concurrent first bets: the rows-affected count tells the caller
// whether this writer won the race, and losing is harmless — the bet
// row is already in, the status is already ACTIVE.
func activateIfInitialized(tx *gorm.DB, challengeID string) (bool, error) {
	res := tx.Model(&models.Challenge{}).
		Where("id = ? AND status = ?", challengeID, models.ChallengeInitialized).
		Update("status", models.ChallengeActive)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResolveChallenge records the creator's self-reported outcome and
// moves an ACTIVE challenge to COMPLETED or FAILED. Resolution is
// creator-attested, not verified: the dispute window is the only check.
func ResolveChallenge(db *gorm.DB, challengeID, callerID string, succeeded bool, note, txHash string, now time.Time) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if challenge.CreatorID != callerID {
		return nil, ErrForbidden
	}
	if challenge.Status != models.ChallengeActive {
		if challenge.Status.IsTerminal() {
			return nil, &TransitionError{Reason: "challenge already resolved"}
		}
		// An INITIALIZED challenge has no stakes to settle; it cannot be
		// resolved until a bet activates it.
		return nil, &TransitionError{Reason: "challenge is not active"}
	}
	if now.Before(challenge.Deadline) {
		return nil, &TransitionError{Reason: "deadline has not passed yet"}
	}

	status := models.ChallengeFailed
	if succeeded {
		status = models.ChallengeCompleted
	}

	updates := map[string]interface{}{
		"status":           status,
		"resolved_at":      now,
		"resolved_success": succeeded,
		"resolution_note":  note,
	}
	if txHash != "" {
		updates["tx_hash"] = txHash
	}

	// Guard against a racing resolve: only transition from ACTIVE.
	res := db.Model(&models.Challenge{}).
		Where("id = ? AND status = ?", challengeID, models.ChallengeActive).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &TransitionError{Reason: "challenge already resolved"}
	}

	utils.WithFields(logrus.Fields{
		"challenge_id": challengeID,
		"succeeded":    succeeded,
	}).Info("challenge resolved")

	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FinalizeChallenge copies the recorded verdict into a terminal status
// once the dispute window has closed. Dispute initiation itself lives
// with an external collaborator; this side only honors its deadline.
func FinalizeChallenge(db *gorm.DB, challengeID, txHash string, now time.Time) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if challenge.Status != models.ChallengePendingResolution {
		return nil, &TransitionError{Reason: "challenge is not pending resolution"}
	}
	if challenge.DisputeDeadline != nil && challenge.DisputeDeadline.After(now) {
		return nil, &TransitionError{Reason: "dispute window is still open"}
	}

	status := models.ChallengeFailed
	if challenge.ResolvedSuccess != nil && *challenge.ResolvedSuccess {
		status = models.ChallengeCompleted
	}

	updates := map[string]interface{}{"status": status}
	if txHash != "" {
		updates["tx_hash"] = txHash
	}
	res := db.Model(&models.Challenge{}).
		Where("id = ? AND status = ?", challengeID, models.ChallengePendingResolution).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &TransitionError{Reason: "challenge is not pending resolution"}
	}

	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// RegisterOnChain records the escrow contract's identifier for a
// challenge. Once only, creator only; does not touch Status. The
// identifier is trusted as claimed — only the creator benefits from
// registering falsely, and only their own challenge is affected.
func RegisterOnChain(db *gorm.DB, challengeID, callerID, contractChallengeID, txHash string) (*models.Challenge, error) {
	if contractChallengeID == "" {
		return nil, &ValidationError{Field: "contract_challenge_id", Reason: "required"}
	}
	var challenge models.Challenge
	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if challenge.CreatorID != callerID {
		return nil, ErrForbidden
	}
	if challenge.ContractChallengeID != nil {
		return nil, &TransitionError{Reason: "challenge already registered on-chain"}
	}

	res := db.Model(&models.Challenge{}).
		Where("id = ? AND contract_challenge_id IS NULL", challengeID).
		Updates(map[string]interface{}{
			"contract_challenge_id": contractChallengeID,
			"tx_hash":               txHash,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &TransitionError{Reason: "challenge already registered on-chain"}
	}

	if err := db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}
