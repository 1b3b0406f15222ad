package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

const postColumns = `id, user_id, title, content, deleted, deleted_by_cascade, created_at, updated_at, deleted_at`

var postSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
}

// PostgresPostRepository implements PostRepository using PostgreSQL
type PostgresPostRepository struct{ db *sql.DB }

func NewPostgresPostRepository(db *sql.DB) outbound.PostRepository {
	return &PostgresPostRepository{db: db}
}

func scanPost(row rowScanner) (*entity.Post, error) {
	var post entity.Post
	var deletedAt sql.NullTime
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.Deleted,
		&post.DeletedByCascade,
		&post.CreatedAt,
		&post.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()
	post.DeletedAt = nullTime(deletedAt)
	return &post, nil
}

func (r *PostgresPostRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	post, err := scanPost(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find post %s: %w", id, outbound.ErrPostNotFound)
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return post, nil
}

func (r *PostgresPostRepository) FindByUserID(ctx context.Context, userID string, filter outbound.DeletedFilter, page *outbound.PageQuery) ([]*entity.Post, int, error) {
	db := conn(ctx, r.db)

	where := " WHERE user_id = $1"
	switch filter {
	case outbound.OnlyActive:
		where += " AND deleted = FALSE"
	case outbound.OnlyDeleted:
		where += " AND deleted = TRUE"
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts` + where + ` ` + orderClause(postSortColumns, page)
	limit, args := limitClause(page, 2, []interface{}{userID})
	query += limit

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*entity.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, total, nil
}

// Save upserts the post. UserID never changes after creation.
func (r *PostgresPostRepository) Save(ctx context.Context, post *entity.Post) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			deleted = EXCLUDED.deleted,
			deleted_by_cascade = EXCLUDED.deleted_by_cascade,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`,
		post.ID,
		post.UserID,
		post.Title,
		post.Content,
		post.Deleted,
		post.DeletedByCascade,
		post.CreatedAt,
		post.UpdatedAt,
		post.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM posts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}
