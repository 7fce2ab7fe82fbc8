package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task. The store assigns the task's ID and its
	// CreatedAt/UpdatedAt timestamps and writes them back into task.
	// Returns validation errors if the task is structurally invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Query returns the tasks of userID matching every predicate of plan,
	// sorted by plan.Order with ascending ID as the tie-breaker.
	// Tasks of other users are never returned.
	Query(ctx context.Context, userID uuid.UUID, plan filter.Plan) ([]domain.Task, error)

	// Update replaces the mutable fields of an existing task and refreshes
	// UpdatedAt. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
