package models

import "time"

type WorkoutType string

const (
	WorkoutRun            WorkoutType = "RUN"
	WorkoutRide           WorkoutType = "RIDE"
	WorkoutSwim           WorkoutType = "SWIM"
	WorkoutWalk           WorkoutType = "WALK"
	WorkoutHike           WorkoutType = "HIKE"
	WorkoutWeightTraining WorkoutType = "WEIGHT_TRAINING"
	WorkoutYoga           WorkoutType = "YOGA"
	WorkoutCrossfit       WorkoutType = "CROSSFIT"
	WorkoutSport          WorkoutType = "SPORT"
	WorkoutOther          WorkoutType = "OTHER"
)

type WorkoutSource string

const (
	SourceManual WorkoutSource = "MANUAL"
	SourceStrava WorkoutSource = "STRAVA"
)

// Workout records a single activity, entered manually or synced from
// Strava. StravaActivityID is the idempotent upsert key for synced
// rows. ChallengeID is assigned after creation by the auto-linker for
// linked workouts — one-way, never auto-unlinked.
type Workout struct {
	ID     string        `json:"id" gorm:"primaryKey;type:uuid"`
	UserID string        `json:"user_id" gorm:"type:uuid;not null;index"`
	Name   string        `json:"name"`
	Type   WorkoutType   `json:"workout_type" gorm:"column:workout_type;type:varchar(24);not null"`
	Source WorkoutSource `json:"source" gorm:"type:varchar(16);not null;default:'MANUAL'"`

	StravaActivityID *string `json:"strava_activity_id,omitempty" gorm:"uniqueIndex"`
	ChallengeID      *string `json:"challenge_id,omitempty" gorm:"type:uuid;index"`

	StartTime       time.Time  `json:"start_time" gorm:"not null;index"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int        `json:"duration_seconds" gorm:"default:0"`
	MovingSeconds   int        `json:"moving_seconds" gorm:"default:0"`
	DistanceMeters  float64    `json:"distance_meters" gorm:"default:0"`
	ElevationGainM  float64    `json:"elevation_gain_m" gorm:"default:0"`
	CaloriesBurned  int        `json:"calories_burned" gorm:"default:0"`
	AvgHeartRate    int        `json:"avg_heart_rate" gorm:"default:0"`
	WeightKg        *float64   `json:"weight_kg,omitempty"`
	Notes           string     `json:"notes"`
	MapPolyline     string     `json:"map_polyline,omitempty" gorm:"type:text"`

	Challenge *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`

	Timestamps
}
