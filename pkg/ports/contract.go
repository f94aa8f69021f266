package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := domain.UserID(time.Now().UnixNano() % 1_000_000_000)

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(userID)
		session.CurrentStep = domain.StepTrafficSelect
		session.Fields.Username = "alice_01"
		session.Fields.ExpireMonths = 3
		session.Fields.HWIDDeviceLimit = domain.Ptr(0)
		session.Fields.TrafficLimitBytes = domain.Ptr(int64(0))
		session.Fields.SelectedInternalSquads = []string{"promo1", "default"}

		err := store.Save(ctx, userID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StepTrafficSelect, loaded.CurrentStep)
		assert.Equal(t, userID, loaded.UserID)
		assert.Equal(t, "alice_01", loaded.Fields.Username)
		assert.Equal(t, 3, loaded.Fields.ExpireMonths)
		require.NotNil(t, loaded.Fields.HWIDDeviceLimit, "zero hwid must survive persistence")
		assert.Equal(t, 0, *loaded.Fields.HWIDDeviceLimit)
		require.NotNil(t, loaded.Fields.TrafficLimitBytes, "unlimited traffic is not undecided")
		assert.Equal(t, int64(0), *loaded.Fields.TrafficLimitBytes)
		assert.Nil(t, loaded.Fields.Email)
		assert.Equal(t, []string{"promo1", "default"}, loaded.Fields.SelectedInternalSquads)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.Fields.Username = "mutated"

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "alice_01", again.Fields.Username)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, userID+1)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, userID, domain.NewSession(userID))
		require.NoError(t, err)

		err = store.Delete(ctx, userID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, userID), "Deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + 10
		id2 := userID + 11
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, users, id1)
		assert.Contains(t, users, id2)
	})
}
