package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	statements []string
	failOn     int
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	if r.failOn > 0 && len(r.statements) == r.failOn {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	return pgconn.CommandTag{}, nil
}

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_create_preferences.sql", files[0])
	assert.IsNonDecreasing(t, files)
}

func TestMigrate(t *testing.T) {
	exec := &recordingExecer{}
	applied, err := Migrate(context.Background(), exec)
	require.NoError(t, err)
	assert.Len(t, exec.statements, len(applied))
	assert.Contains(t, exec.statements[0], "CREATE TABLE IF NOT EXISTS preferences")
}

func TestMigrate_Error(t *testing.T) {
	exec := &recordingExecer{failOn: 1}
	_, err := Migrate(context.Background(), exec)

	var migErr *MigrationError
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, "001_create_preferences.sql", migErr.File)
	assert.ErrorContains(t, err, "syntax error")
}

func TestMigrate_Integration(t *testing.T) {
	db := RequireTestDB(t)

	// Already applied by TestMain; a second run must be a no-op.
	_, err := Migrate(context.Background(), db.Pool)
	assert.NoError(t, err)
}
