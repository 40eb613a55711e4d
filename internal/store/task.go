package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task persistence. Every method taking
// an ownerID is scoped to that owner: a task owned by someone else behaves
// exactly like a missing one (ErrTaskNotFound). Get, Update and Delete are
// each a single atomic match-id-and-owner operation.
type TaskStore interface {
	// Create saves a new, already validated task.
	Create(ctx context.Context, task *domain.Task) error

	// List returns one page of the owner's tasks matching filter, newest
	// first (ties broken by id), together with the number of matching tasks
	// before pagination.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter, page domain.Page) ([]*domain.Task, int64, error)

	// Get retrieves a single task.
	// Returns ErrTaskNotFound if it does not exist or belongs to another owner.
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// Update applies an already validated patch, stamps updatedAt and
	// returns the stored task.
	// Returns ErrTaskNotFound if it does not exist or belongs to another owner.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error)

	// Delete permanently removes a task.
	// Returns ErrTaskNotFound if it does not exist or belongs to another owner.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error

	// Stats aggregates all of the owner's tasks by status and priority.
	Stats(ctx context.Context, ownerID uuid.UUID) (domain.TaskStats, error)
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
