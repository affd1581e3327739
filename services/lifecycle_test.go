package services

import (
	"testing"
	"time"

	"grindstake/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveChallenge(t *testing.T) {
	pastDeadline := time.Now().UTC().Add(-time.Hour)

	t.Run("creator resolves after deadline", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Deadline = pastDeadline
		})

		got, err := ResolveChallenge(db, challenge.ID, user.ID, true, "hit the goal", "0xabc", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, models.ChallengeCompleted, got.Status)
		require.NotNil(t, got.ResolvedSuccess)
		assert.True(t, *got.ResolvedSuccess)
		assert.Equal(t, "hit the goal", got.ResolutionNote)
		assert.NotNil(t, got.ResolvedAt)
	})

	t.Run("failure resolves to FAILED", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Deadline = pastDeadline
		})

		got, err := ResolveChallenge(db, challenge.ID, user.ID, false, "", "", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, models.ChallengeFailed, got.Status)
	})

	t.Run("non-creator is forbidden", func(t *testing.T) {
		db := openTestDB(t)
		creator := seedUser(t, db)
		other := seedUser(t, db)
		challenge := seedChallenge(t, db, creator.ID, func(c *models.Challenge) {
			c.Deadline = pastDeadline
		})

		_, err := ResolveChallenge(db, challenge.ID, other.ID, true, "", "", time.Now().UTC())
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("before deadline is rejected", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, nil)

		_, err := ResolveChallenge(db, challenge.ID, user.ID, true, "", "", time.Now().UTC())
		var tErr *TransitionError
		require.ErrorAs(t, err, &tErr)
		assert.Contains(t, tErr.Reason, "deadline")
	})

	t.Run("initialized challenge cannot resolve", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Status = models.ChallengeInitialized
			c.Deadline = pastDeadline
		})

		_, err := ResolveChallenge(db, challenge.ID, user.ID, true, "", "", time.Now().UTC())
		var tErr *TransitionError
		require.ErrorAs(t, err, &tErr)
	})

	t.Run("second resolve is rejected", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Deadline = pastDeadline
		})

		_, err := ResolveChallenge(db, challenge.ID, user.ID, true, "", "", time.Now().UTC())
		require.NoError(t, err)

		_, err = ResolveChallenge(db, challenge.ID, user.ID, false, "", "", time.Now().UTC())
		var tErr *TransitionError
		require.ErrorAs(t, err, &tErr)
		assert.Contains(t, tErr.Reason, "already resolved")
	})

	t.Run("unknown challenge", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		_, err := ResolveChallenge(db, "00000000-0000-0000-0000-000000000000", user.ID, true, "", "", time.Now().UTC())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFinalizeChallenge(t *testing.T) {
	now := time.Now().UTC()

	t.Run("finalizes after dispute window", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		succeeded := true
		closed := now.Add(-time.Hour)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Status = models.ChallengePendingResolution
			c.ResolvedSuccess = &succeeded
			c.DisputeDeadline = &closed
		})

		got, err := FinalizeChallenge(db, challenge.ID, "0xfee", now)
		require.NoError(t, err)
		assert.Equal(t, models.ChallengeCompleted, got.Status)
	})

	t.Run("dispute window still open", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		open := now.Add(time.Hour)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Status = models.ChallengePendingResolution
			c.DisputeDeadline = &open
		})

		_, err := FinalizeChallenge(db, challenge.ID, "", now)
		var tErr *TransitionError
		require.ErrorAs(t, err, &tErr)
		assert.Contains(t, tErr.Reason, "dispute")
	})

	t.Run("active challenge cannot finalize", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, nil)

		_, err := FinalizeChallenge(db, challenge.ID, "", now)
		var tErr *TransitionError
		require.ErrorAs(t, err, &tErr)
	})

	t.Run("nil verdict finalizes to FAILED", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Status = models.ChallengePendingResolution
		})

		got, err := FinalizeChallenge(db, challenge.ID, "", now)
		require.NoError(t, err)
		assert.Equal(t, models.ChallengeFailed, got.Status)
	})
}

func TestRegisterOnChain(t *testing.T) {
	t.Run("creator registers once", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, func(c *models.Challenge) {
			c.Status = models.ChallengeInitialized
		})

		got, err := RegisterOnChain(db, challenge.ID, user.ID, "42", "0xdead")
		require.NoError(t, err)
		require.NotNil(t, got.ContractChallengeID)
		assert.Equal(t, "42", *got.ContractChallengeID)
		// Registration never moves the status.
		assert.Equal(t, models.ChallengeInitialized, got.Status)
	})

	t.Run("second registration rejected", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, nil)

		_, err := RegisterOnChain(db, challenge.ID, user.ID, "42", "")
		require.NoError(t, err)

		_, err = RegisterOnChain(db, challenge.ID, user.ID, "43", "")
		var tErr *TransitionError
		require.ErrorAs(t, err, &tErr)
		assert.Contains(t, tErr.Reason, "already registered")
	})

	t.Run("non-creator forbidden", func(t *testing.T) {
		db := openTestDB(t)
		creator := seedUser(t, db)
		other := seedUser(t, db)
		challenge := seedChallenge(t, db, creator.ID, nil)

		_, err := RegisterOnChain(db, challenge.ID, other.ID, "42", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("empty contract id rejected", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)
		challenge := seedChallenge(t, db, user.ID, nil)

		_, err := RegisterOnChain(db, challenge.ID, user.ID, "", "")
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}
