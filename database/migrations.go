package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Execer is satisfied by *pgx.Conn and *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MigrationError names the migration file that failed.
type MigrationError struct {
	File string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.File, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// MigrationFiles lists the embedded migrations in execution order.
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if path.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Migrate runs every embedded migration in order. The statements are
// idempotent, so Migrate can be re-run against an up-to-date schema.
func Migrate(ctx context.Context, db Execer) ([]string, error) {
	files, err := MigrationFiles()
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		content, err := migrationFS.ReadFile(path.Join("migrations", file))
		if err != nil {
			return nil, &MigrationError{File: file, Err: err}
		}
		if _, err := db.Exec(ctx, string(content)); err != nil {
			return nil, &MigrationError{File: file, Err: err}
		}
		log.WithField("file", file).Debug("migration applied")
	}
	return files, nil
}
