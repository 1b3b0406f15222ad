package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/complyance/governance/application/port/outbound"
)

// uniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const uniqueViolation = "23505"

type txKey struct{}

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn returns the transaction carried by ctx, or db outside a transaction.
func conn(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

var _ outbound.Transactor = (*Transactor)(nil)

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// A nested call joins the outer transaction.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HealthChecker pings the database.
type HealthChecker struct {
	db *sql.DB
}

func NewHealthChecker(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

func (h *HealthChecker) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

// orderClause maps a camelCase sort field to a whitelisted column. Unknown
// fields fall back to insertion order.
func orderClause(columns map[string]string, page *outbound.PageQuery) string {
	if page == nil || page.SortBy == "" {
		return "ORDER BY row_seq ASC"
	}
	column, ok := columns[page.SortBy]
	if !ok {
		return "ORDER BY row_seq ASC"
	}
	dir := "ASC"
	if page.Direction == outbound.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, row_seq ASC", column, dir)
}

// limitClause appends LIMIT/OFFSET placeholders starting at argIndex.
func limitClause(page *outbound.PageQuery, argIndex int, args []interface{}) (string, []interface{}) {
	if page == nil || page.Size <= 0 {
		return "", args
	}
	clause := fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	return clause, append(args, page.Size, page.Offset())
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
