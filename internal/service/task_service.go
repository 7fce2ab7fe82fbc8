package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/cache"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/policy"
	"github.com/phrazzld/tasktrack/internal/redact"
	"github.com/phrazzld/tasktrack/internal/store"
)

// TaskCache caches list results per user. *cache.Index satisfies it.
type TaskCache interface {
	GetOrCompute(
		ctx context.Context,
		userID uuid.UUID,
		params filter.Params,
		compute cache.ComputeFunc,
	) ([]domain.Task, error)
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

var _ TaskCache = (*cache.Index)(nil)

// TaskService provides task-related operations on behalf of an authenticated user.
type TaskService interface {
	// ListTasks returns the user's tasks matching params, served from the
	// cache when possible. Unrecognised or malformed params never fail.
	ListTasks(ctx context.Context, userID uuid.UUID, params filter.Params) ([]domain.Task, error)

	// GetTask returns a single task the user may view.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// AuthorizeTask loads a task and checks that the user may perform action on it.
	// Handlers use it to reject non-owners before looking at a request body.
	AuthorizeTask(ctx context.Context, userID, taskID uuid.UUID, action policy.Action) (*domain.Task, error)

	// CreateTask validates and stores a new task owned by the user.
	CreateTask(ctx context.Context, userID uuid.UUID, input domain.TaskInput) (*domain.Task, error)

	// UpdateTask applies patch to a task the user may update.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task the user may delete.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	cache  TaskCache
	policy policy.Policy
	clock  func() time.Time
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the store or cache is nil. A nil policy defaults to
// policy.OwnerPolicy and a nil clock to time.Now.
func NewTaskService(
	tasks store.TaskStore,
	taskCache TaskCache,
	pol policy.Policy,
	clock func() time.Time,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if taskCache == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil", domain.ErrValidation)
	}
	if pol == nil {
		pol = policy.OwnerPolicy{}
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		cache:  taskCache,
		policy: pol,
		clock:  clock,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	params filter.Params,
) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// All time windows of one request are evaluated against the same instant.
	now := s.clock()
	plan := filter.Compile(params, now)

	log.Debug("listing tasks",
		slog.String("user_id", userID.String()),
		slog.Int("predicates", len(plan.Predicates)),
		slog.String("sort_by", string(plan.Order.Field)),
		slog.String("sort_direction", string(plan.Order.Direction)))

	tasks, err := s.cache.GetOrCompute(ctx, userID, params, func(ctx context.Context) ([]domain.Task, error) {
		return s.tasks.Query(ctx, userID, plan)
	})
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewTaskServiceError("list_tasks", "failed to query tasks", err)
	}

	return tasks, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return s.loadAuthorized(ctx, "get_task", userID, taskID, policy.ActionView)
}

// AuthorizeTask implements TaskService.AuthorizeTask
func (s *taskServiceImpl) AuthorizeTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	action policy.Action,
) (*domain.Task, error) {
	return s.loadAuthorized(ctx, "authorize_task", userID, taskID, action)
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	input domain.TaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, input, s.clock())
	if err != nil {
		log.Debug("rejected invalid task",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	s.invalidate(ctx, log, userID)

	log.Info("task created",
		slog.String("user_id", userID.String()),
		slog.String("task_id", task.ID.String()))
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.loadAuthorized(ctx, "update_task", userID, taskID, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		log.Debug("empty patch, nothing to update", slog.String("task_id", taskID.String()))
		return task, nil
	}

	if err := task.Apply(patch, s.clock()); err != nil {
		log.Debug("rejected invalid task update",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		log.Error("failed to update task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	s.invalidate(ctx, log, userID)

	log.Info("task updated",
		slog.String("user_id", userID.String()),
		slog.String("task_id", taskID.String()))
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.loadAuthorized(ctx, "delete_task", userID, taskID, policy.ActionDelete); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		log.Error("failed to delete task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", taskID.String()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.invalidate(ctx, log, userID)

	log.Info("task deleted",
		slog.String("user_id", userID.String()),
		slog.String("task_id", taskID.String()))
	return nil
}

// loadAuthorized fetches a task and checks action against the policy.
// A missing task is reported before ownership, so a missing id is a 404 for everyone.
func (s *taskServiceImpl) loadAuthorized(
	ctx context.Context,
	operation string,
	userID, taskID uuid.UUID,
	action policy.Action,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found", slog.String("task_id", taskID.String()))
			return nil, NewTaskServiceError(operation, "task not found", err)
		}
		log.Error("failed to load task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError(operation, "failed to load task", err)
	}

	if !s.policy.Authorize(userID, task, action).Allowed() {
		log.Warn("task access denied",
			slog.String("user_id", userID.String()),
			slog.String("task_id", taskID.String()),
			slog.String("action", string(action)))
		return nil, ErrTaskNotOwned
	}

	return task, nil
}

// invalidate drops the user's cached list results. Failures are logged, not returned.
func (s *taskServiceImpl) invalidate(ctx context.Context, log *slog.Logger, userID uuid.UUID) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		log.Warn("failed to invalidate cached task lists",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
	}
}
