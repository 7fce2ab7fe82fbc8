// Package memstore provides an in-memory implementation of store.TaskStore
// for local development and tests.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
	"github.com/phrazzld/tasktrack/internal/store"
)

// TaskStore keeps tasks in a map guarded by a mutex. Stored tasks are copied
// on the way in and out so callers never share memory with the store.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]domain.Task
	now   func() time.Time
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty TaskStore. A nil clock defaults to time.Now.
func NewTaskStore(clock func() time.Time) *TaskStore {
	if clock == nil {
		clock = time.Now
	}
	return &TaskStore{
		tasks: make(map[uuid.UUID]domain.Task),
		now:   clock,
	}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	} else if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("%w: task %s", store.ErrDuplicate, task.ID)
	}
	now := s.now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	s.tasks[task.ID] = clone(*task)
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	out := clone(t)
	return &out, nil
}

// Query implements store.TaskStore by evaluating the plan in memory.
func (s *TaskStore) Query(_ context.Context, userID uuid.UUID, plan filter.Plan) ([]domain.Task, error) {
	s.mu.RLock()
	owned := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.UserID == userID {
			owned = append(owned, clone(t))
		}
	}
	s.mu.RUnlock()

	return plan.Apply(owned), nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}

	existing.Title = task.Title
	existing.Description = task.Description
	existing.Category = task.Category
	existing.Deadline = task.Deadline
	existing.Completed = task.Completed
	existing.UpdatedAt = s.now().UTC()

	s.tasks[task.ID] = clone(existing)
	task.UpdatedAt = existing.UpdatedAt
	task.CreatedAt = existing.CreatedAt
	task.UserID = existing.UserID
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// Len returns the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func clone(t domain.Task) domain.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}
