package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/complyance/governance/migrations"
)

type migrationFile struct {
	version int
	name    string
	path    string
	kind    string // up or down
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("failed to ping database")
	}

	if err := ensureSchemaMigrations(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to ensure schema_migrations")
	}

	files, err := loadMigrationFiles(migrations.FS)
	if err != nil {
		log.WithError(err).Fatal("failed to load migrations")
	}

	switch strings.ToLower(*mode) {
	case "up":
		if err := applyUp(ctx, db, files, log); err != nil {
			log.WithError(err).Fatal("migration up failed")
		}
		log.Info("Migration up completed successfully")
	case "down":
		if err := applyDown(ctx, db, files, log); err != nil {
			log.WithError(err).Fatal("migration down failed")
		}
		log.Info("Migration down completed successfully")
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

func ensureSchemaMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func loadMigrationFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)

		var kind string
		switch {
		case strings.HasSuffix(lower, ".up.sql"):
			kind = "up"
		case strings.HasSuffix(lower, ".down.sql"):
			kind = "down"
		default:
			continue
		}

		ver, migName, err := parseVersionAndName(name)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{version: ver, name: migName, path: name, kind: kind})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// parseVersionAndName splits 001_create_governance_tables.up.sql into 1 and
// create_governance_tables.
func parseVersionAndName(filename string) (int, string, error) {
	verStr, rest, ok := strings.Cut(filename, "_")
	if !ok {
		return 0, "", errors.New("invalid filename")
	}
	ver, err := strconv.Atoi(verStr)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version: %w", err)
	}
	name, _, _ := strings.Cut(rest, ".")
	return ver, name, nil
}

func alreadyApplied(ctx context.Context, db *sql.DB, version int) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)", version).Scan(&exists)
	return exists, err
}

// runInTx applies one migration file and its bookkeeping atomically.
func runInTx(ctx context.Context, db *sql.DB, f migrationFile, bookkeeping string, args ...interface{}) error {
	body, err := fs.ReadFile(migrations.FS, f.path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed applying %s: %w", f.path, err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func applyUp(ctx context.Context, db *sql.DB, files []migrationFile, log *logrus.Logger) error {
	for _, f := range files {
		if f.kind != "up" {
			continue
		}
		applied, err := alreadyApplied(ctx, db, f.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		log.WithFields(logrus.Fields{"version": f.version, "name": f.name}).Info("Applying up")
		if err := runInTx(ctx, db, f, "INSERT INTO schema_migrations(version, name) VALUES($1, $2)", f.version, f.name); err != nil {
			return err
		}
	}
	return nil
}

func applyDown(ctx context.Context, db *sql.DB, files []migrationFile, log *logrus.Logger) error {
	var downs []migrationFile
	for _, f := range files {
		if f.kind == "down" {
			downs = append(downs, f)
		}
	}
	sort.Slice(downs, func(i, j int) bool { return downs[i].version > downs[j].version })

	for _, f := range downs {
		applied, err := alreadyApplied(ctx, db, f.version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}

		log.WithFields(logrus.Fields{"version": f.version, "name": f.name}).Info("Reverting down")
		if err := runInTx(ctx, db, f, "DELETE FROM schema_migrations WHERE version=$1", f.version); err != nil {
			return err
		}
	}
	return nil
}
