package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasktrack/internal/api/shared"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/filter"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/policy"
	"github.com/phrazzld/tasktrack/internal/service"
)

// Success messages of task mutations.
const (
	MsgTaskCreated = "Task created successfully"
	MsgTaskUpdated = "Task updated successfully"
)

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
	Deadline    time.Time `json:"deadline"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse is the body of GET /tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// TaskEnvelope wraps a single task.
type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks     service.TaskService
	validator *requestValidator
	loc       *time.Location
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler. Deadlines without an offset are
// interpreted in loc; clock is used to reject deadlines in the past.
func NewTaskHandler(
	tasks service.TaskService,
	clock func() time.Time,
	loc *time.Location,
	logger *slog.Logger,
) *TaskHandler {
	if tasks == nil {
		panic("task service cannot be nil for TaskHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for TaskHandler")
	}
	if loc == nil {
		loc = time.UTC
	}

	return &TaskHandler{
		tasks:     tasks,
		validator: newRequestValidator(clock, loc),
		loc:       loc,
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks requests
// Unknown or malformed query parameters never fail the request.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	params := filter.ParamsFromQuery(r.URL.Query())
	tasks, err := h.tasks.ListTasks(r.Context(), userID, params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	response := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for i := range tasks {
		response.Tasks = append(response.Tasks, taskToResponse(&tasks[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateTask handles POST /tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, wrapMalformed(err), "")
		return
	}
	if errs := h.validator.check(&req); errs != nil {
		shared.RespondWithValidationErrors(w, r, errs.first(), errs)
		return
	}

	input, err := req.toInput(h.loc)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, MsgTaskCreated,
		TaskEnvelope{Task: taskToResponse(task)})
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: taskToResponse(task)})
}

// UpdateTask handles PATCH /tasks/{id} requests
// Ownership is checked before the body is read, so a non-owner always gets 403.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if _, err := h.tasks.AuthorizeTask(r.Context(), userID, taskID, policy.ActionUpdate); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, wrapMalformed(err), "")
		return
	}
	if errs := h.validator.check(&req); errs != nil {
		shared.RespondWithValidationErrors(w, r, errs.first(), errs)
		return
	}

	patch, err := req.toPatch(h.loc)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), userID, taskID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, MsgTaskUpdated,
		TaskEnvelope{Task: taskToResponse(task)})
}

// DeleteTask handles DELETE /tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		Title:       task.Title,
		Description: task.Description,
		Category:    string(task.Category),
		Deadline:    task.Deadline,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func wrapMalformed(err error) error {
	return fmt.Errorf("%w: %w", errMalformedRequest, err)
}
