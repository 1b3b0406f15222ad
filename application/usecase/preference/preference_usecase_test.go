package preference

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
	"github.com/complyance/governance/infrastructure/adapter/memory"
	"github.com/complyance/governance/infrastructure/service/logger"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*PreferenceUseCaseImpl, outbound.UserRepository, outbound.PreferenceRepository, *testclock.Clock) {
	t.Helper()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	prefs := memory.NewPreferenceRepository(store)
	clk := testclock.NewClock(start)

	active := entity.NewUser("alice", "alice", "alice@example.com", "Alice", []string{"USER"}, "ACTIVE", start)
	deleted := entity.NewUser("bob", "bob", "bob@example.com", "Bob", []string{"USER"}, "ACTIVE", start)
	deleted.MarkDeleted(start)
	require.NoError(t, users.Save(context.Background(), active))
	require.NoError(t, users.Save(context.Background(), deleted))

	return NewPreferenceUseCase(prefs, users, clk, logger.NewNopLogger()), users, prefs, clk
}

func TestUpsertPreferences(t *testing.T) {
	ctx := context.Background()
	uc, _, _, clk := setup(t)

	created, err := uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark", Language: "en", NotificationsEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, start, created.CreatedAt)
	assert.Equal(t, start, created.UpdatedAt)
	assert.False(t, created.Deleted)

	clk.Advance(time.Hour)
	updated, err := uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "light", Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "light", updated.Theme)
	assert.False(t, updated.NotificationsEnabled)
	assert.Equal(t, start, updated.CreatedAt)
	assert.Equal(t, start.Add(time.Hour), updated.UpdatedAt)
}

func TestUpsertPreferences_Rejections(t *testing.T) {
	ctx := context.Background()
	uc, _, prefs, _ := setup(t)

	_, err := uc.UpsertPreferences(ctx, "nobody", inbound.UpsertPreferencesRequest{})
	assert.True(t, domainerr.IsNotFound(err))

	_, err = uc.UpsertPreferences(ctx, "bob", inbound.UpsertPreferencesRequest{})
	assert.True(t, domainerr.IsForbidden(err))

	_, err = uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark"})
	require.NoError(t, err)
	require.NoError(t, uc.SoftDeletePreferences(ctx, "alice"))

	_, err = uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "light"})
	assert.True(t, domainerr.IsForbidden(err))

	stored, err := prefs.FindByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "dark", stored.Theme)
}

func TestGetPreferences(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := setup(t)

	_, err := uc.GetPreferences(ctx, "nobody")
	assert.True(t, domainerr.IsNotFound(err))

	_, err = uc.GetPreferences(ctx, "alice")
	assert.True(t, domainerr.IsNotFound(err))

	_, err = uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark"})
	require.NoError(t, err)

	pref, err := uc.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "dark", pref.Theme)

	require.NoError(t, uc.SoftDeletePreferences(ctx, "alice"))
	pref, err = uc.GetPreferences(ctx, "alice")
	assert.Nil(t, pref)
	assert.True(t, domainerr.IsForbidden(err))
}

func TestSoftDeletePreferences(t *testing.T) {
	ctx := context.Background()
	uc, _, prefs, clk := setup(t)

	err := uc.SoftDeletePreferences(ctx, "alice")
	assert.True(t, domainerr.IsNotFound(err))

	_, err = uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark"})
	require.NoError(t, err)

	clk.Advance(time.Minute)
	require.NoError(t, uc.SoftDeletePreferences(ctx, "alice"))
	clk.Advance(time.Minute)
	require.NoError(t, uc.SoftDeletePreferences(ctx, "alice"))

	stored, err := prefs.FindByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
	assert.Equal(t, start.Add(time.Minute), stored.UpdatedAt)
	assert.False(t, stored.DeletedByCascade)
}

func TestCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("no record", func(t *testing.T) {
		uc, _, _, _ := setup(t)
		changed, err := uc.CascadeSoftDelete(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = uc.CascadeRestore(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("round trip", func(t *testing.T) {
		uc, _, prefs, _ := setup(t)
		_, err := uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark"})
		require.NoError(t, err)

		changed, err := uc.CascadeSoftDelete(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = uc.CascadeRestore(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, changed)

		stored, err := prefs.FindByUserID(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, stored.Deleted)
		assert.Nil(t, stored.DeletedAt)
	})

	t.Run("directly deleted record stays deleted", func(t *testing.T) {
		uc, _, _, _ := setup(t)
		_, err := uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark"})
		require.NoError(t, err)
		require.NoError(t, uc.SoftDeletePreferences(ctx, "alice"))

		changed, err := uc.CascadeSoftDelete(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = uc.CascadeRestore(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("purge", func(t *testing.T) {
		uc, _, prefs, _ := setup(t)
		_, err := uc.UpsertPreferences(ctx, "alice", inbound.UpsertPreferencesRequest{Theme: "dark"})
		require.NoError(t, err)

		require.NoError(t, uc.PurgeForUser(ctx, "alice"))
		_, err = prefs.FindByUserID(ctx, "alice")
		assert.ErrorIs(t, err, outbound.ErrPreferenceNotFound)
	})
}
