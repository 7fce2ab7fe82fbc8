package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters allowed in a task title.
const MaxTitleLength = 255

// Task-specific validation errors
var (
	// ErrTaskUserIDEmpty is returned when a task has no owner.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task title is empty or blank.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task title exceeds MaxTitleLength characters.
	ErrTaskTitleTooLong = errors.New("task title is too long")

	// ErrTaskTextInvalid is returned when a title or description is not valid
	// UTF-8 or contains a NUL byte.
	ErrTaskTextInvalid = errors.New("task text is not valid UTF-8")

	// ErrTaskCategoryInvalid is returned when a category is not one of the known categories.
	ErrTaskCategoryInvalid = errors.New("task category is invalid")

	// ErrTaskDeadlineEmpty is returned when a task has no deadline.
	ErrTaskDeadlineEmpty = errors.New("task deadline cannot be empty")

	// ErrTaskDeadlineInvalid is returned when a deadline cannot be parsed.
	ErrTaskDeadlineInvalid = errors.New("task deadline is not a valid date")

	// ErrTaskDeadlineNotFuture is returned when a new deadline is not strictly after now.
	ErrTaskDeadlineNotFuture = errors.New("task deadline must be in the future")
)

// User-facing messages for task validation failures.
const (
	MsgTitleRequired      = "A task title is required"
	MsgTitleTooLong       = "Task title cannot be more than 255 characters"
	MsgTitleNotText       = "Task title must be valid text"
	MsgCategoryRequired   = "A task category is required"
	MsgCategoryInvalid    = "Category must be one of: work, personal, urgent"
	MsgDeadlineRequired   = "A task deadline is required"
	MsgDeadlineInvalid    = "Deadline must be a valid date"
	MsgDeadlineNotFuture  = "Deadline must be a future date and time"
	MsgCompletedNotBool   = "Completed status must be true or false"
	MsgDescriptionNotText = "Description must be a string"
)

// Category classifies a task.
type Category string

// Known task categories.
const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryUrgent   Category = "urgent"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryUrgent}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryUrgent:
		return true
	}
	return false
}

// ParseCategory converts s into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrTaskCategoryInvalid, s)
	}
	return c, nil
}

// deadlineLayouts are the accepted textual deadline formats, tried in order.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDeadline parses a deadline in any of the accepted layouts.
// Layouts without an explicit offset are interpreted in loc.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrTaskDeadlineEmpty
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrTaskDeadlineInvalid, s)
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    Category  `json:"category"`
	Deadline    time.Time `json:"deadline"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskInput carries the fields a user supplies when creating a task.
type TaskInput struct {
	Title       string
	Description *string
	Category    Category
	Deadline    time.Time
}

// TaskPatch is a partial update. Nil fields are left unchanged.
// Description uses DescriptionSet because a nil description is a valid value.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Category       *Category
	Deadline       *time.Time
	Completed      *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Category == nil &&
		p.Deadline == nil && p.Completed == nil
}

// NewTask creates a new, incomplete Task for userID.
// The ID and timestamps are assigned by the store when the task is persisted.
// Returns a ValidationError if any field is invalid or the deadline is not after now.
func NewTask(userID uuid.UUID, in TaskInput, now time.Time) (*Task, error) {
	task := &Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Deadline:    in.Deadline,
		Completed:   false,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := validateFutureDeadline(task.Deadline, now); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// The deadline is not compared with the current time here: it is only
// required to be in the future when it is set.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return NewValidationError("user_id", "task owner is required", ErrTaskUserIDEmpty)
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", MsgTitleRequired, ErrTaskTitleEmpty)
	}
	if !isText(t.Title) {
		return NewValidationError("title", MsgTitleNotText, ErrTaskTextInvalid)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return NewValidationError("title", MsgTitleTooLong, ErrTaskTitleTooLong)
	}
	if t.Description != nil && !isText(*t.Description) {
		return NewValidationError("description", MsgDescriptionNotText, ErrTaskTextInvalid)
	}

	if t.Category == "" {
		return NewValidationError("category", MsgCategoryRequired, ErrTaskCategoryInvalid)
	}
	if !t.Category.Valid() {
		return NewValidationError("category", MsgCategoryInvalid, ErrTaskCategoryInvalid)
	}

	if t.Deadline.IsZero() {
		return NewValidationError("deadline", MsgDeadlineRequired, ErrTaskDeadlineEmpty)
	}

	return nil
}

// Apply replaces the fields present in patch. A new deadline must be after now.
// On error the task is left unchanged.
func (t *Task) Apply(patch TaskPatch, now time.Time) error {
	updated := *t

	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.DescriptionSet {
		updated.Description = patch.Description
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Deadline != nil {
		if err := validateFutureDeadline(*patch.Deadline, now); err != nil {
			return err
		}
		updated.Deadline = *patch.Deadline
	}
	if patch.Completed != nil {
		updated.Completed = *patch.Completed
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	*t = updated
	return nil
}

// OwnerID returns the ID of the user the task belongs to, or uuid.Nil for a nil task.
func (t *Task) OwnerID() uuid.UUID {
	if t == nil {
		return uuid.Nil
	}
	return t.UserID
}

// IsOverdue reports whether the task is incomplete with a deadline before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.Deadline.Before(now)
}

func validateFutureDeadline(deadline, now time.Time) error {
	if deadline.IsZero() {
		return NewValidationError("deadline", MsgDeadlineRequired, ErrTaskDeadlineEmpty)
	}
	if !deadline.After(now) {
		return NewValidationError("deadline", MsgDeadlineNotFuture, ErrTaskDeadlineNotFuture)
	}
	return nil
}

// isText reports whether s is valid UTF-8 without NUL bytes.
func isText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
