package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/redact"
	"github.com/phrazzld/tasktrack/internal/store"
)

const (
	defaultSeedCount   = 50
	seedCompletedRatio = 0.3
	seedDescribedRatio = 0.7
)

// seedCategoryWeights sums to 100.
var seedCategoryWeights = []struct {
	category domain.Category
	weight   int
}{
	{domain.CategoryWork, 50},
	{domain.CategoryPersonal, 30},
	{domain.CategoryUrgent, 20},
}

var seedWords = strings.Fields(`
	review draft send prepare call plan book update finish schedule organise
	check write clean fix order renew pay submit sort archive
	report invoice budget slides meeting dentist groceries garage taxes
	presentation contract newsletter backlog release roadmap passport insurance
	quarterly weekly team client family project kitchen garden
`)

// generateSeedTasks builds count tasks for userID with deadlines spread over
// the past, today, tomorrow, the coming week and the coming month, relative to now.
func generateSeedTasks(rng *rand.Rand, userID uuid.UUID, count int, now time.Time) []domain.Task {
	tasks := make([]domain.Task, 0, count)
	for range count {
		task := domain.Task{
			UserID:    userID,
			Title:     seedSentence(rng, 3+rng.IntN(6)),
			Category:  seedCategory(rng),
			Deadline:  seedDeadline(rng, now),
			Completed: rng.Float64() < seedCompletedRatio,
		}
		if rng.Float64() < seedDescribedRatio {
			desc := seedSentence(rng, 8+rng.IntN(12))
			task.Description = &desc
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func seedCategory(rng *rand.Rand) domain.Category {
	n := rng.IntN(100)
	for _, w := range seedCategoryWeights {
		if n < w.weight {
			return w.category
		}
		n -= w.weight
	}
	return domain.CategoryWork
}

func seedDeadline(rng *rand.Rand, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	workingHour := func(d time.Time) time.Time {
		return d.Add(time.Duration(9+rng.IntN(9)) * time.Hour).Add(time.Duration(rng.IntN(60)) * time.Minute)
	}
	between := func(from, until time.Time) time.Time {
		return from.Add(time.Duration(rng.Int64N(int64(until.Sub(from)))))
	}

	switch rng.IntN(5) {
	case 0:
		return between(now.AddDate(0, 0, -5), now.Add(-time.Hour))
	case 1:
		return workingHour(day)
	case 2:
		return workingHour(day.AddDate(0, 0, 1))
	case 3:
		return between(day.AddDate(0, 0, 2), day.AddDate(0, 0, 8))
	default:
		return between(day.AddDate(0, 0, 8), day.AddDate(0, 0, 31))
	}
}

func seedSentence(rng *rand.Rand, words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = seedWords[rng.IntN(len(seedWords))]
	}
	sentence := strings.Join(parts, " ")
	return strings.ToUpper(sentence[:1]) + sentence[1:] + "."
}

// seedTasks writes tasks directly through the store, bypassing request
// validation so past deadlines can be created. With PostgreSQL all inserts
// share one transaction. The user's cached lists are dropped afterwards.
func (app *application) seedTasks(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	userID := tasks[0].UserID

	insert := func(ctx context.Context, s store.TaskStore) error {
		for i := range tasks {
			if err := s.Create(ctx, &tasks[i]); err != nil {
				return fmt.Errorf("failed to seed task %d: %w", i, err)
			}
		}
		return nil
	}

	var err error
	if app.pgStore != nil && app.db != nil {
		err = store.RunInTransaction(ctx, app.db, func(ctx context.Context, tx *sql.Tx) error {
			return insert(ctx, app.pgStore.WithTx(tx))
		})
	} else {
		err = insert(ctx, app.taskStore)
	}
	if err != nil {
		return err
	}

	if err := app.cacheIndex.InvalidateUser(ctx, userID); err != nil {
		app.logger.Warn("failed to invalidate cached task lists after seeding",
			"user_id", userID.String(), "error", redact.Error(err))
	}
	app.logger.Info("Seeded tasks", "user_id", userID.String(), "count", len(tasks))
	return nil
}
