package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Users are never hard-deleted.
type UserStore interface {
	// Create saves a new user. The user must carry a HashedPassword.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile sets the name and email of a user and stamps updatedAt,
	// returning the stored user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if the email belongs to another user.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, updatedAt time.Time) (*domain.User, error)
}
