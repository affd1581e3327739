package services

import (
	"testing"
	"time"

	"grindstake/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoLinkSingleDay(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)

	created := time.Now().UTC().Add(-48 * time.Hour)
	deadline := time.Now().UTC().Add(48 * time.Hour)
	challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
		c.Deadline = deadline
	})
	// Backdate creation so the window test has room on both sides.
	require.NoError(t, db.Model(challenge).Update("created_at", created).Error)

	inside := seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = created.Add(time.Hour)
		w.DistanceMeters = 10000
	})
	atCreation := seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = created
		w.DistanceMeters = 5000
	})
	atDeadline := seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = deadline
		w.DistanceMeters = 3000
	})
	before := seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = created.Add(-time.Minute)
	})
	after := seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = deadline.Add(time.Minute)
	})

	require.NoError(t, AutoLinkAndUpdate(db, user.ID))

	assertLinked := func(id string, want bool) {
		var w models.Workout
		require.NoError(t, db.First(&w, "id = ?", id).Error)
		if want {
			require.NotNil(t, w.ChallengeID)
			assert.Equal(t, challenge.ID, *w.ChallengeID)
		} else {
			assert.Nil(t, w.ChallengeID)
		}
	}
	assertLinked(inside.ID, true)
	// Window bounds are inclusive.
	assertLinked(atCreation.ID, true)
	assertLinked(atDeadline.ID, true)
	assertLinked(before.ID, false)
	assertLinked(after.ID, false)

	var got models.Challenge
	require.NoError(t, db.First(&got, "id = ?", challenge.ID).Error)
	assert.InDelta(t, 18.0, got.CurrentProgress, 1e-9)
}

func TestAutoLinkSkipsNonActiveChallenges(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
		c.Status = models.ChallengeInitialized
	})

	workout := seedWorkout(t, db, user.ID, nil)
	require.NoError(t, AutoLinkAndUpdate(db, user.ID))

	var w models.Workout
	require.NoError(t, db.First(&w, "id = ?", workout.ID).Error)
	assert.Nil(t, w.ChallengeID)

	var got models.Challenge
	require.NoError(t, db.First(&got, "id = ?", challenge.ID).Error)
	assert.Equal(t, 0.0, got.CurrentProgress)
}

func TestAutoLinkMultiDayDerivesCheckIns(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)

	created := time.Now().UTC().Add(-5 * 24 * time.Hour)
	challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
		c.ChallengeMode = models.ModeMultiDay
		c.GoalType = models.GoalWorkoutCount
		c.GoalTarget = 30
		c.CheckInSource = models.CheckInStrava
	})
	require.NoError(t, db.Model(challenge).Update("created_at", created).Error)

	// Two workouts on the same day derive one check-in.
	seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = created.Add(24 * time.Hour)
	})
	seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = created.Add(26 * time.Hour)
	})
	seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = created.Add(72 * time.Hour)
	})

	require.NoError(t, AutoLinkAndUpdate(db, user.ID))

	var checkIns []models.DailyCheckIn
	require.NoError(t, db.Where("challenge_id = ?", challenge.ID).Find(&checkIns).Error)
	assert.Len(t, checkIns, 2)
	for _, ci := range checkIns {
		assert.Equal(t, models.CheckInStrava, ci.Source)
	}

	var got models.Challenge
	require.NoError(t, db.First(&got, "id = ?", challenge.ID).Error)
	assert.Equal(t, 2.0, got.CurrentProgress)

	// Re-running is idempotent.
	require.NoError(t, AutoLinkAndUpdate(db, user.ID))
	require.NoError(t, db.Where("challenge_id = ?", challenge.ID).Find(&checkIns).Error)
	assert.Len(t, checkIns, 2)
}

func TestAutoLinkDoesNotClobberManualCheckIn(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)

	created := time.Now().UTC().Add(-3 * 24 * time.Hour)
	challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
		c.ChallengeMode = models.ModeMultiDay
		c.GoalType = models.GoalWorkoutCount
	})
	require.NoError(t, db.Model(challenge).Update("created_at", created).Error)

	workoutTime := created.Add(24 * time.Hour)
	manual, err := CheckInToday(db, challenge.ID, user.ID, "felt great", workoutTime)
	require.NoError(t, err)

	seedWorkout(t, db, user.ID, func(w *models.Workout) {
		w.StartTime = workoutTime
	})
	require.NoError(t, AutoLinkAndUpdate(db, user.ID))

	var checkIns []models.DailyCheckIn
	require.NoError(t, db.Where("challenge_id = ?", challenge.ID).Find(&checkIns).Error)
	require.Len(t, checkIns, 1)
	assert.Equal(t, manual.ID, checkIns[0].ID)
	assert.Equal(t, "felt great", checkIns[0].Note)
	assert.Equal(t, models.CheckInManual, checkIns[0].Source)
}
