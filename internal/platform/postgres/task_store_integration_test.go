//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/platform/postgres"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/phrazzld/tasktrack/internal/testdb"
)

func TestPostgresTaskStore_Integration(t *testing.T) {
	db := testdb.Open(t)
	log, _ := logger.NewTestLogger()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		tasks := postgres.NewPostgresTaskStore(tx, log)
		owner := uuid.New()
		other := uuid.New()

		desc := "Numbers for the board"
		seed := []*domain.Task{
			{UserID: owner, Title: "Quarterly report", Description: &desc, Category: domain.CategoryWork, Deadline: now.Add(48 * time.Hour)},
			{UserID: owner, Title: "Dentist", Category: domain.CategoryPersonal, Deadline: now.Add(-2 * time.Hour)},
			{UserID: owner, Title: "Paid invoice", Category: domain.CategoryUrgent, Deadline: now.Add(-time.Hour), Completed: true},
			{UserID: other, Title: "Someone else's report", Category: domain.CategoryWork, Deadline: now.Add(time.Hour)},
		}
		for _, task := range seed {
			require.NoError(t, tasks.Create(ctx, task))
			require.NotEqual(t, uuid.Nil, task.ID)
			require.False(t, task.CreatedAt.IsZero())
		}

		t.Run("query scopes to user and orders by deadline", func(t *testing.T) {
			got, err := tasks.Query(ctx, owner, filter.Compile(filter.Params{}, now))
			require.NoError(t, err)
			assert.Equal(t, []string{"Dentist", "Paid invoice", "Quarterly report"}, titles(got))
		})

		t.Run("search matches description", func(t *testing.T) {
			got, err := tasks.Query(ctx, owner, filter.Compile(filter.Params{filter.KeySearch: "BOARD"}, now))
			require.NoError(t, err)
			assert.Equal(t, []string{"Quarterly report"}, titles(got))
		})

		t.Run("overdue excludes completed", func(t *testing.T) {
			got, err := tasks.Query(ctx, owner, filter.Compile(filter.Params{filter.KeyDeadline: filter.BucketOverdue}, now))
			require.NoError(t, err)
			assert.Equal(t, []string{"Dentist"}, titles(got))
		})

		t.Run("update and delete", func(t *testing.T) {
			task, err := tasks.GetByID(ctx, seed[1].ID)
			require.NoError(t, err)
			task.Completed = true
			require.NoError(t, tasks.Update(ctx, task))

			reloaded, err := tasks.GetByID(ctx, task.ID)
			require.NoError(t, err)
			assert.True(t, reloaded.Completed)

			require.NoError(t, tasks.Delete(ctx, task.ID))
			_, err = tasks.GetByID(ctx, task.ID)
			assert.ErrorIs(t, err, store.ErrNotFound)
			assert.ErrorIs(t, tasks.Delete(ctx, task.ID), store.ErrNotFound)
		})
	})
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
