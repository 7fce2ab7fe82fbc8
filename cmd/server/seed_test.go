package main

import (
	"context"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasktrack/internal/domain"
)

func TestGenerateSeedTasks(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	userID := uuid.New()

	tasks := generateSeedTasks(rng, userID, 500, refNow)
	require.Len(t, tasks, 500)

	categories := map[domain.Category]int{}
	var completed, described, past int
	for _, task := range tasks {
		require.NoError(t, task.Validate())
		assert.Equal(t, userID, task.UserID)

		words := len(splitWords(task.Title))
		assert.GreaterOrEqual(t, words, 3)
		assert.LessOrEqual(t, words, 8)

		assert.True(t, task.Deadline.After(refNow.AddDate(0, 0, -5).Add(-time.Second)))
		assert.True(t, task.Deadline.Before(refNow.AddDate(0, 0, 31)))

		categories[task.Category]++
		if task.Completed {
			completed++
		}
		if task.Description != nil {
			described++
		}
		if task.Deadline.Before(refNow) {
			past++
		}
	}

	assert.Len(t, categories, 3)
	assert.Greater(t, categories[domain.CategoryWork], categories[domain.CategoryUrgent])
	assert.InDelta(t, 150, completed, 50)
	assert.InDelta(t, 350, described, 60)
	assert.Positive(t, past)
}

func TestGenerateSeedTasks_Deterministic(t *testing.T) {
	userID := uuid.New()
	a := generateSeedTasks(rand.New(rand.NewPCG(7, 7)), userID, 20, refNow)
	b := generateSeedTasks(rand.New(rand.NewPCG(7, 7)), userID, 20, refNow)
	assert.Equal(t, a, b)
}

func TestSeedTasksVisibleThroughAPI(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	token := s.tokenFor(userID)

	// prime the cache so seeding has to invalidate it
	assert.Empty(t, decodeList(t, s.do(http.MethodGet, "/tasks", token, nil)))

	tasks := generateSeedTasks(rand.New(rand.NewPCG(3, 4)), userID, 25, refNow)
	require.NoError(t, s.app.seedTasks(context.Background(), tasks))

	listed := decodeList(t, s.do(http.MethodGet, "/tasks", token, nil))
	assert.Len(t, listed, 25)

	rec := s.do(http.MethodGet, "/tasks?deadline=overdue", token, nil)
	for _, task := range decodeList(t, rec) {
		assert.False(t, task.Completed)
	}
}

func TestSeedTasks_Empty(t *testing.T) {
	s := newTestServer(t)
	assert.NoError(t, s.app.seedTasks(context.Background(), nil))
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '.' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
