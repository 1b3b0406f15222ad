//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	"github.com/complyance/governance/migrations"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("governance"),
		tcpostgres.WithUsername("governance"),
		tcpostgres.WithPassword("governance"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := migrations.FS.ReadFile("001_create_governance_tables.up.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	return db
}

func TestPostgresRepositories(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	users := NewUserRepositoryAdapter(db)
	posts := NewPostgresPostRepository(db)
	prefs := NewPostgresPreferenceRepository(db)
	tx := NewTransactor(db)

	alice := entity.NewUser("u-1", "alice", "alice@example.com", "Alice", []string{"USER", "EDITOR"}, "ACTIVE", now)
	alice.AuditTrail = []entity.AuditEntry{{Action: entity.ActionCreate, PerformedBy: "SYSTEM", Timestamp: now, Details: "User account created"}}
	require.NoError(t, users.Save(ctx, alice))

	t.Run("round trips user with audit trail", func(t *testing.T) {
		got, err := users.FindByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"USER", "EDITOR"}, got.Roles)
		require.Len(t, got.AuditTrail, 1)
		assert.Equal(t, entity.ActionCreate, got.AuditTrail[0].Action)
		assert.True(t, got.CreatedAt.Equal(now))
	})

	t.Run("duplicate username maps to sentinel", func(t *testing.T) {
		clash := entity.NewUser("u-2", "alice", "other@example.com", "Other", nil, "ACTIVE", now)
		err := users.Save(ctx, clash)
		assert.True(t, errors.Is(err, outbound.ErrUserAlreadyExists))
	})

	t.Run("audit entries are appended in order", func(t *testing.T) {
		got, err := users.FindByID(ctx, "u-1")
		require.NoError(t, err)
		got.MarkDeleted(now.Add(time.Hour))
		got.AuditTrail = append(got.AuditTrail, entity.AuditEntry{Action: entity.ActionSoftDelete, PerformedBy: "admin", Timestamp: now.Add(time.Hour), Details: "User soft-deleted"})
		require.NoError(t, users.Save(ctx, got))

		_, err = users.FindActiveByID(ctx, "u-1")
		assert.True(t, errors.Is(err, outbound.ErrUserNotFound))

		stored, err := users.FindByID(ctx, "u-1")
		require.NoError(t, err)
		require.Len(t, stored.AuditTrail, 2)
		assert.Equal(t, entity.ActionSoftDelete, stored.AuditTrail[1].Action)
		require.NotNil(t, stored.DeletedAt)
	})

	t.Run("only entries past the stored position are written", func(t *testing.T) {
		got, err := users.FindByID(ctx, "u-1")
		require.NoError(t, err)
		got.AuditTrail[0].Details = "rewritten"
		got.AuditTrail = append(got.AuditTrail, entity.AuditEntry{Action: entity.ActionRestore, PerformedBy: "admin", Timestamp: now.Add(2 * time.Hour), Details: "User restored"})
		require.NoError(t, users.Save(ctx, got))

		stored, err := users.FindByID(ctx, "u-1")
		require.NoError(t, err)
		require.Len(t, stored.AuditTrail, 3)
		assert.Equal(t, "User account created", stored.AuditTrail[0].Details)
		assert.Equal(t, entity.ActionRestore, stored.AuditTrail[2].Action)
	})

	t.Run("posts filter and page", func(t *testing.T) {
		for i, title := range []string{"b", "a", "c"} {
			p := entity.NewPost("p-"+title, "u-1", title, "", now.Add(time.Duration(i)*time.Minute))
			require.NoError(t, posts.Save(ctx, p))
		}
		deleted, err := posts.FindByID(ctx, "p-c")
		require.NoError(t, err)
		deleted.MarkDeleted(now, true)
		require.NoError(t, posts.Save(ctx, deleted))

		active, total, err := posts.FindByUserID(ctx, "u-1", outbound.OnlyActive, &outbound.PageQuery{Size: 1, SortBy: "title", Direction: outbound.SortAsc})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, active, 1)
		assert.Equal(t, "a", active[0].Title)

		gone, _, err := posts.FindByUserID(ctx, "u-1", outbound.OnlyDeleted, nil)
		require.NoError(t, err)
		require.Len(t, gone, 1)
		assert.True(t, gone[0].DeletedByCascade)
	})

	t.Run("one preference per user", func(t *testing.T) {
		require.NoError(t, prefs.Save(ctx, entity.NewPreference("pr-1", "u-1", "dark", "en", true, now)))
		require.NoError(t, prefs.Save(ctx, entity.NewPreference("pr-2", "u-1", "light", "de", false, now)))

		got, err := prefs.FindByUserID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "light", got.Theme)

		count, err := prefs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("failed transaction rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, prefs.DeleteByUserID(ctx, "u-1"))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = prefs.FindByUserID(ctx, "u-1")
		assert.NoError(t, err)
	})

	t.Run("purge removes dependents then user", func(t *testing.T) {
		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := prefs.DeleteByUserID(ctx, "u-1"); err != nil {
				return err
			}
			if err := posts.DeleteByUserID(ctx, "u-1"); err != nil {
				return err
			}
			return users.DeleteByID(ctx, "u-1")
		})
		require.NoError(t, err)

		exists, err := users.ExistsByID(ctx, "u-1")
		require.NoError(t, err)
		assert.False(t, exists)

		var entries int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_audit_entries`).Scan(&entries))
		assert.Zero(t, entries)

		assert.True(t, errors.Is(users.DeleteByID(ctx, "u-1"), outbound.ErrUserNotFound))
	})
}
