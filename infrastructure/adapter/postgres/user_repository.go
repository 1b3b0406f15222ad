package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

const userColumns = `id, username, email, name, roles, status, deleted, created_at, updated_at, deleted_at`

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"username":  "username",
	"email":     "email",
	"name":      "name",
	"status":    "status",
}

type UserRepositoryAdapter struct {
	db *sql.DB
	tx *Transactor
}

func NewUserRepositoryAdapter(db *sql.DB) outbound.UserRepository {
	return &UserRepositoryAdapter{
		db: db,
		tx: NewTransactor(db),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	var roles pq.StringArray
	var deletedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Name,
		&roles,
		&user.Status,
		&user.Deleted,
		&user.CreatedAt,
		&user.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Roles = []string(roles)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	user.DeletedAt = nullTime(deletedAt)
	return &user, nil
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepositoryAdapter) FindActiveByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted = FALSE`, id)
}

func (r *UserRepositoryAdapter) findOne(ctx context.Context, query, id string) (*entity.User, error) {
	if id == "" {
		return nil, fmt.Errorf("find user: %w", outbound.ErrUserNotFound)
	}

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find user %s: %w", id, outbound.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	if err := r.loadAuditTrails(ctx, []*entity.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepositoryAdapter) ExistsByID(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *UserRepositoryAdapter) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepositoryAdapter) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepositoryAdapter) exists(ctx context.Context, query string, arg string) (bool, error) {
	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *UserRepositoryAdapter) FindAllActive(ctx context.Context, page *outbound.PageQuery) ([]*entity.User, int, error) {
	db := conn(ctx, r.db)

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count active users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE deleted = FALSE ` + orderClause(userSortColumns, page)
	limit, args := limitClause(page, 1, nil)
	query += limit

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	if err := r.loadAuditTrails(ctx, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// loadAuditTrails fills every user's trail with one query.
func (r *UserRepositoryAdapter) loadAuditTrails(ctx context.Context, users []*entity.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[string]*entity.User, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		u.AuditTrail = []entity.AuditEntry{}
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT user_id, action, performed_by, occurred_at, details
		FROM user_audit_entries
		WHERE user_id = ANY($1)
		ORDER BY user_id, seq ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load audit trail: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var entry entity.AuditEntry
		if err := rows.Scan(&userID, &entry.Action, &entry.PerformedBy, &entry.Timestamp, &entry.Details); err != nil {
			return fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Timestamp = entry.Timestamp.UTC()
		if u, ok := byID[userID]; ok {
			u.AuditTrail = append(u.AuditTrail, entry)
		}
	}
	return rows.Err()
}

// Save upserts the user row and appends audit entries not yet stored. The
// trail is append-only, so entries already persisted are left untouched.
func (r *UserRepositoryAdapter) Save(ctx context.Context, user *entity.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)

		_, err := db.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				username = EXCLUDED.username,
				email = EXCLUDED.email,
				name = EXCLUDED.name,
				roles = EXCLUDED.roles,
				status = EXCLUDED.status,
				deleted = EXCLUDED.deleted,
				updated_at = EXCLUDED.updated_at,
				deleted_at = EXCLUDED.deleted_at
		`,
			user.ID,
			user.Username,
			user.Email,
			user.Name,
			pq.Array(nonNilRoles(user.Roles)),
			user.Status,
			user.Deleted,
			user.CreatedAt,
			user.UpdatedAt,
			user.DeletedAt,
		)
		if err != nil {
			if isUniqueViolation(err, "users_username_key") {
				return fmt.Errorf("save user %s: %w", user.ID, outbound.ErrUserAlreadyExists)
			}
			return fmt.Errorf("failed to save user: %w", err)
		}

		var stored int
		err = db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) FROM user_audit_entries WHERE user_id = $1`, user.ID,
		).Scan(&stored)
		if err != nil {
			return fmt.Errorf("failed to read audit position: %w", err)
		}

		for from := stored; from < len(user.AuditTrail); from += auditBatchSize {
			to := min(from+auditBatchSize, len(user.AuditTrail))
			query, args := appendAuditQuery(user.ID, from, user.AuditTrail[from:to])
			if _, err := db.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to append audit entries: %w", err)
			}
		}
		return nil
	})
}

// auditBatchSize keeps one insert well under the 65535 bind parameter limit.
const auditBatchSize = 1000

// appendAuditQuery builds one multi-row insert for entries, numbering them
// from offset+1. Rows already stored are left untouched.
func appendAuditQuery(userID string, offset int, entries []entity.AuditEntry) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("INSERT INTO user_audit_entries (user_id, seq, action, performed_by, occurred_at, details) VALUES ")

	args := make([]interface{}, 0, len(entries)*6)
	for i, entry := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, userID, offset+i+1, entry.Action, entry.PerformedBy, entry.Timestamp, entry.Details)
	}
	b.WriteString(" ON CONFLICT (user_id, seq) DO NOTHING")
	return b.String(), args
}

func (r *UserRepositoryAdapter) DeleteByID(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete user %s: %w", id, outbound.ErrUserNotFound)
	}
	return nil
}

func (r *UserRepositoryAdapter) Count(ctx context.Context) (int, error) {
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func nonNilRoles(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}
