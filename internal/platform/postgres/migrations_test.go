package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	names, err := MigrationFiles()
	require.NoError(t, err)
	assert.Contains(t, names, "00001_create_tasks.sql")

	body, err := migrationsFS.ReadFile("migrations/00001_create_tasks.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CHECK (category IN ('work', 'personal', 'urgent'))")
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = Migrate(context.Background(), db, "sideways", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestSlogGooseLogger(t *testing.T) {
	log, buf := logger.NewTestLogger()
	l := &slogGooseLogger{logger: log}

	l.Printf("OK   %s\n", "00001_create_tasks.sql")
	l.Fatalf("failed: %v", "boom")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "OK   00001_create_tasks.sql", entries[0]["msg"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}
