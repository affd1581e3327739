package models

import (
	"time"
)

// ChallengeStatus is the lifecycle state of a challenge. Transitions are
// owned exclusively by the lifecycle service; nothing else writes Status.
type ChallengeStatus string

const (
	ChallengeInitialized       ChallengeStatus = "INITIALIZED"
	ChallengeActive            ChallengeStatus = "ACTIVE"
	ChallengePendingResolution ChallengeStatus = "PENDING_RESOLUTION"
	ChallengeDisputed          ChallengeStatus = "DISPUTED"
	ChallengeCompleted         ChallengeStatus = "COMPLETED"
	ChallengeFailed            ChallengeStatus = "FAILED"
	ChallengeCancelled         ChallengeStatus = "CANCELLED"
	ChallengeResolved          ChallengeStatus = "RESOLVED"
)

// IsTerminal reports whether no further lifecycle transition is legal.
func (s ChallengeStatus) IsTerminal() bool {
	switch s {
	case ChallengeCompleted, ChallengeFailed, ChallengeCancelled, ChallengeResolved:
		return true
	}
	return false
}

type ChallengeMode string

const (
	ModeSingleDay ChallengeMode = "SINGLE_DAY"
	ModeMultiDay  ChallengeMode = "MULTI_DAY"
)

type GoalType string

const (
	GoalDistanceKm     GoalType = "DISTANCE_KM"
	GoalWeightLossKg   GoalType = "WEIGHT_LOSS_KG"
	GoalWorkoutCount   GoalType = "WORKOUT_COUNT"
	GoalCaloriesBurned GoalType = "CALORIES_BURNED"
	GoalCustom         GoalType = "CUSTOM"
)

type CheckInSource string

const (
	CheckInManual CheckInSource = "MANUAL"
	CheckInStrava CheckInSource = "STRAVA"
)

// Challenge is a fitness goal with a stake pool. CurrentProgress is a
// denormalized aggregate — always recomputed from workouts/check-ins,
// never hand-edited.
type Challenge struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	CreatorID   string `json:"creator_id" gorm:"type:uuid;not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"index"`
	Description string `json:"description"`

	ChallengeMode   ChallengeMode `json:"challenge_mode" gorm:"type:varchar(16);not null;default:'SINGLE_DAY'"`
	GoalType        GoalType      `json:"goal_type" gorm:"type:varchar(24);not null"`
	GoalTarget      float64       `json:"goal_target" gorm:"not null"`
	GoalUnit        string        `json:"goal_unit"`
	CurrentProgress float64       `json:"current_progress" gorm:"not null;default:0"`

	Status        ChallengeStatus `json:"status" gorm:"type:varchar(24);not null;default:'INITIALIZED';index"`
	Deadline      time.Time       `json:"deadline" gorm:"not null"`
	CheckInSource CheckInSource   `json:"check_in_source" gorm:"type:varchar(16);not null;default:'MANUAL'"`

	// InviteToken gates betting. Issued once at creation, never rotated.
	InviteToken string `json:"-" gorm:"uniqueIndex;not null"`

	// On-chain registration bookkeeping. ContractChallengeID is set at
	// most once; the escrow contract, not this row, is the source of
	// truth for funds.
	ContractChallengeID *string `json:"contract_challenge_id,omitempty" gorm:"uniqueIndex"`
	TxHash              string  `json:"tx_hash,omitempty"`

	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedSuccess *bool      `json:"resolved_success,omitempty"`
	ResolutionNote  string     `json:"resolution_note,omitempty"`
	DisputeDeadline *time.Time `json:"dispute_deadline,omitempty"`

	// Relationships
	Creator  User           `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Bets     []Bet          `json:"bets,omitempty" gorm:"foreignKey:ChallengeID"`
	Workouts []Workout      `json:"workouts,omitempty" gorm:"foreignKey:ChallengeID"`
	CheckIns []DailyCheckIn `json:"check_ins,omitempty" gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE"`

	// Calculated fields (not stored in DB)
	BetsCount     int64 `json:"bets_count,omitempty" gorm:"-"`
	WorkoutsCount int64 `json:"workouts_count,omitempty" gorm:"-"`

	Timestamps
}

// MiniChallenge is a brief summary for list views.
type MiniChallenge struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Status          ChallengeStatus `json:"status"`
	ChallengeMode   ChallengeMode   `json:"challenge_mode"`
	GoalType        GoalType        `json:"goal_type"`
	GoalTarget      float64         `json:"goal_target"`
	GoalUnit        string          `json:"goal_unit"`
	CurrentProgress float64         `json:"current_progress"`
	Deadline        time.Time       `json:"deadline"`
	CreatorID       string          `json:"creator_id"`
	CreatorName     string          `json:"creator_name"`
	BetsCount       int64           `json:"bets_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProgressView is the read-only projection served to progress bars.
type ProgressView struct {
	ChallengeID     string          `json:"challenge_id"`
	CurrentProgress float64         `json:"current_progress"`
	GoalTarget      float64         `json:"goal_target"`
	GoalUnit        string          `json:"goal_unit"`
	Deadline        time.Time       `json:"deadline"`
	Status          ChallengeStatus `json:"status"`
}
