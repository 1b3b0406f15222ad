package main

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/domain/entity"
	"github.com/complyance/governance/infrastructure/bootstrap"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	storage := bootstrap.NewMemoryStorage()
	uc := bootstrap.NewUseCases(storage, bootstrap.Options{})

	users, posts, err := seed(ctx, storage, uc, 3, 2, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, 3, users)
	assert.Equal(t, 6, posts)

	list, err := uc.Users.ListUsers(ctx, inbound.ListUsersRequest{})
	require.NoError(t, err)
	require.Len(t, list.Users, 3)
	for _, u := range list.Users {
		require.Len(t, u.AuditTrail, 1)
		assert.Equal(t, entity.ActionCreate, u.AuditTrail[0].Action)
		assert.Equal(t, seedActor, u.AuditTrail[0].PerformedBy)
		require.Len(t, u.Roles, 1)
		assert.Contains(t, seedRoles, u.Roles[0])
	}

	t.Run("skips when data exists", func(t *testing.T) {
		users, posts, err := seed(ctx, storage, uc, 3, 2, rand.New(rand.NewSource(7)))
		require.NoError(t, err)
		assert.Zero(t, users)
		assert.Zero(t, posts)

		count, err := storage.Users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
