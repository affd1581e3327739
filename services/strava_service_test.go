package services

import (
	"testing"

	"grindstake/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStravaType(t *testing.T) {
	tests := []struct {
		sport string
		want  models.WorkoutType
	}{
		{"Run", models.WorkoutRun},
		{"TrailRun", models.WorkoutRun},
		{"VirtualRide", models.WorkoutRide},
		{"Swim", models.WorkoutSwim},
		{"Hike", models.WorkoutHike},
		{"WeightTraining", models.WorkoutWeightTraining},
		{"Yoga", models.WorkoutYoga},
		{"Pickleball", models.WorkoutSport},
		{"Windsurf", models.WorkoutOther},
		{"", models.WorkoutOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapStravaType(tt.sport), "sport %q", tt.sport)
	}
}

func TestUpsertActivityIdempotent(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)

	act := stravaActivity{
		ID:          987654321,
		Name:        "Lunch Run",
		SportType:   "Run",
		StartDate:   "2026-03-10T12:00:00Z",
		ElapsedTime: 1800,
		MovingTime:  1700,
		Distance:    5000,
	}
	require.NoError(t, upsertActivity(db, user.ID, act))

	// Strava redelivers; the update wins, no duplicate row.
	act.Name = "Lunch Run (renamed)"
	act.Distance = 5200
	require.NoError(t, upsertActivity(db, user.ID, act))

	var workouts []models.Workout
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&workouts).Error)
	require.Len(t, workouts, 1)
	assert.Equal(t, "Lunch Run (renamed)", workouts[0].Name)
	assert.Equal(t, 5200.0, workouts[0].DistanceMeters)
	assert.Equal(t, models.SourceStrava, workouts[0].Source)
	require.NotNil(t, workouts[0].StravaActivityID)
	assert.Equal(t, "987654321", *workouts[0].StravaActivityID)
}

func TestUpsertActivityBadDate(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)

	act := stravaActivity{ID: 1, SportType: "Run", StartDate: "not-a-date"}
	assert.Error(t, upsertActivity(db, user.ID, act))
}
