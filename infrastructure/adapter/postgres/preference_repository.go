package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

const preferenceColumns = `id, user_id, theme, language, notifications_enabled, deleted, deleted_by_cascade, created_at, updated_at, deleted_at`

// PostgresPreferenceRepository implements PreferenceRepository using PostgreSQL
type PostgresPreferenceRepository struct{ db *sql.DB }

func NewPostgresPreferenceRepository(db *sql.DB) outbound.PreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

func (r *PostgresPreferenceRepository) FindByUserID(ctx context.Context, userID string) (*entity.Preference, error) {
	var pref entity.Preference
	var deletedAt sql.NullTime
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+preferenceColumns+` FROM preferences WHERE user_id = $1`, userID).Scan(
		&pref.ID,
		&pref.UserID,
		&pref.Theme,
		&pref.Language,
		&pref.NotificationsEnabled,
		&pref.Deleted,
		&pref.DeletedByCascade,
		&pref.CreatedAt,
		&pref.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find preferences for %s: %w", userID, outbound.ErrPreferenceNotFound)
		}
		return nil, fmt.Errorf("failed to find preferences: %w", err)
	}
	pref.CreatedAt = pref.CreatedAt.UTC()
	pref.UpdatedAt = pref.UpdatedAt.UTC()
	pref.DeletedAt = nullTime(deletedAt)
	return &pref, nil
}

// Save keeps at most one record per user; a record for a user that already
// has one replaces it.
func (r *PostgresPreferenceRepository) Save(ctx context.Context, pref *entity.Preference) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO preferences (`+preferenceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			theme = EXCLUDED.theme,
			language = EXCLUDED.language,
			notifications_enabled = EXCLUDED.notifications_enabled,
			deleted = EXCLUDED.deleted,
			deleted_by_cascade = EXCLUDED.deleted_by_cascade,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`,
		pref.ID,
		pref.UserID,
		pref.Theme,
		pref.Language,
		pref.NotificationsEnabled,
		pref.Deleted,
		pref.DeletedByCascade,
		pref.CreatedAt,
		pref.UpdatedAt,
		pref.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func (r *PostgresPreferenceRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}

func (r *PostgresPreferenceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count preferences: %w", err)
	}
	return count, nil
}
