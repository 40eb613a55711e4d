package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task field limits, counted in characters after trimming.
const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
)

// Validation messages reported for task fields.
const (
	MsgTitleRequired      = "Title is required"
	MsgTitleTooLong       = "Title cannot exceed 100 characters"
	MsgDescriptionTooLong = "Description cannot exceed 500 characters"
	MsgInvalidStatus      = "Status must be one of pending, in-progress, completed"
	MsgInvalidPriority    = "Priority must be one of low, medium, high"
	MsgInvalidDueDate     = "Due date must be a valid date"
	MsgEmptyPatch         = "At least one field must be provided"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskPriorities lists every valid priority in ascending order.
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskFields holds the user-supplied values of a new task. Empty Status and
// Priority select the defaults.
type TaskFields struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
}

// NewTask builds a validated task for ownerID stamped with now.
func NewTask(ownerID uuid.UUID, fields TaskFields, now time.Time) (*Task, error) {
	if ownerID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	task := &Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       strings.TrimSpace(fields.Title),
		Description: strings.TrimSpace(fields.Description),
		Status:      fields.Status,
		Priority:    fields.Priority,
		DueDate:     normalizeDueDate(fields.DueDate),
		CreatedAt:   Stamp(now),
		UpdatedAt:   Stamp(now),
	}
	if task.Status == "" {
		task.Status = StatusPending
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks every field of the task.
func (t *Task) Validate() error {
	verr := &ValidationError{}
	validateTitle(verr, t.Title)
	validateDescription(verr, t.Description)
	if !t.Status.Valid() {
		verr.Add("status", MsgInvalidStatus)
	}
	if !t.Priority.Valid() {
		verr.Add("priority", MsgInvalidPriority)
	}
	return verr.OrNil()
}

// TaskPatch is a partial update. Nil fields are left untouched; ClearDueDate
// removes the due date and takes precedence over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	Priority     *TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDueDate
}

// Normalize returns a copy of the patch with trimmed text fields and a UTC
// due date.
func (p TaskPatch) Normalize() TaskPatch {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	p.DueDate = normalizeDueDate(p.DueDate)
	if p.ClearDueDate {
		p.DueDate = nil
	}
	return p
}

// Validate checks only the fields present in the patch. An empty patch is
// rejected.
func (p TaskPatch) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("task", MsgEmptyPatch)
	}

	verr := &ValidationError{}
	if p.Title != nil {
		validateTitle(verr, *p.Title)
	}
	if p.Description != nil {
		validateDescription(verr, *p.Description)
	}
	if p.Status != nil && !p.Status.Valid() {
		verr.Add("status", MsgInvalidStatus)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		verr.Add("priority", MsgInvalidPriority)
	}
	return verr.OrNil()
}

// Apply writes the patch onto t and stamps UpdatedAt. It does not validate.
func (p TaskPatch) Apply(t *Task, updatedAt time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		t.DueDate = &due
	}
	t.UpdatedAt = Stamp(updatedAt)
}

func validateTitle(verr *ValidationError, title string) {
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		verr.Add("title", MsgTitleRequired)
	case n > MaxTaskTitleLength:
		verr.Add("title", MsgTitleTooLong)
	}
}

func validateDescription(verr *ValidationError, description string) {
	if utf8.RuneCountInString(description) > MaxTaskDescriptionLength {
		verr.Add("description", MsgDescriptionTooLong)
	}
}

// Stamp normalizes a timestamp to UTC at millisecond precision, the
// coarsest resolution among the storage backends.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func normalizeDueDate(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	d := Stamp(*due)
	return &d
}
