package services

import (
	"testing"
	"time"

	"grindstake/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func TestComputeProgressSingleDay(t *testing.T) {
	day := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		goalType models.GoalType
		workouts []models.Workout
		want     float64
	}{
		{
			name:     "distance sums kilometers",
			goalType: models.GoalDistanceKm,
			workouts: []models.Workout{
				{DistanceMeters: 5000, StartTime: day},
				{DistanceMeters: 12500, StartTime: day.Add(time.Hour)},
			},
			want: 17.5,
		},
		{
			name:     "workout count",
			goalType: models.GoalWorkoutCount,
			workouts: []models.Workout{
				{StartTime: day}, {StartTime: day}, {StartTime: day},
			},
			want: 3,
		},
		{
			name:     "calories sum",
			goalType: models.GoalCaloriesBurned,
			workouts: []models.Workout{
				{CaloriesBurned: 300, StartTime: day},
				{CaloriesBurned: 450, StartTime: day},
			},
			want: 750,
		},
		{
			name:     "custom falls back to count",
			goalType: models.GoalCustom,
			workouts: []models.Workout{{StartTime: day}, {StartTime: day}},
			want:     2,
		},
		{
			name:     "no workouts is zero",
			goalType: models.GoalDistanceKm,
			workouts: nil,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			challenge := &models.Challenge{
				ChallengeMode: models.ModeSingleDay,
				GoalType:      tt.goalType,
			}
			got := ComputeProgress(challenge, tt.workouts, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeProgressWeightLoss(t *testing.T) {
	challenge := &models.Challenge{
		ChallengeMode: models.ModeSingleDay,
		GoalType:      models.GoalWeightLossKg,
	}
	day := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("first minus last by start time", func(t *testing.T) {
		// Out of order on purpose: ordering is by StartTime, not slice.
		workouts := []models.Workout{
			{WeightKg: fptr(82.5), StartTime: day.AddDate(0, 0, 10)},
			{WeightKg: fptr(85.0), StartTime: day},
			{WeightKg: fptr(84.1), StartTime: day.AddDate(0, 0, 5)},
		}
		assert.InDelta(t, 2.5, ComputeProgress(challenge, workouts, nil), 1e-9)
	})

	t.Run("weight gain clamps to zero", func(t *testing.T) {
		workouts := []models.Workout{
			{WeightKg: fptr(80.0), StartTime: day},
			{WeightKg: fptr(83.0), StartTime: day.AddDate(0, 0, 7)},
		}
		assert.Equal(t, 0.0, ComputeProgress(challenge, workouts, nil))
	})

	t.Run("single reading is zero", func(t *testing.T) {
		workouts := []models.Workout{{WeightKg: fptr(80.0), StartTime: day}}
		assert.Equal(t, 0.0, ComputeProgress(challenge, workouts, nil))
	})

	t.Run("workouts without weight ignored", func(t *testing.T) {
		workouts := []models.Workout{
			{WeightKg: fptr(85.0), StartTime: day},
			{StartTime: day.AddDate(0, 0, 3)},
			{WeightKg: fptr(83.0), StartTime: day.AddDate(0, 0, 6)},
		}
		assert.InDelta(t, 2.0, ComputeProgress(challenge, workouts, nil), 1e-9)
	})
}

func TestComputeProgressMultiDay(t *testing.T) {
	challenge := &models.Challenge{
		ChallengeMode: models.ModeMultiDay,
		// Goal type is irrelevant in multi-day mode.
		GoalType: models.GoalDistanceKm,
	}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	checkIns := []models.DailyCheckIn{
		{Date: day},
		{Date: day.AddDate(0, 0, 1)},
		// Same calendar day at a different hour still counts once.
		{Date: day.AddDate(0, 0, 1).Add(14 * time.Hour)},
		{Date: day.AddDate(0, 0, 4)},
	}
	assert.Equal(t, 3.0, ComputeProgress(challenge, nil, checkIns))
}

func TestRecalcChallengeProgress(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	challenge := seedChallenge(t, db, user.ID, nil)

	seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.ChallengeID = &challenge.ID
		w.DistanceMeters = 21097
	})

	require.NoError(t, RecalcChallengeProgress(db, challenge.ID))

	var got models.Challenge
	require.NoError(t, db.First(&got, "id = ?", challenge.ID).Error)
	assert.InDelta(t, 21.097, got.CurrentProgress, 1e-9)
}

func TestRecalcChallengeProgressNotFound(t *testing.T) {
	db := openTestDB(t)
	err := RecalcChallengeProgress(db, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
