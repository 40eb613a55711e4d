package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// UserStore implements store.UserStore in memory. Emails are unique.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
	logger  *slog.Logger
}

// NewUserStore returns an empty user store.
func NewUserStore(logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		byID:    make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
		logger:  logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return store.ErrEmailExists
	}

	u := *user
	u.Email = email
	u.Password = ""
	s.byID[u.ID] = u
	s.byEmail[email] = u.ID

	logger.FromContextOrDefault(ctx, s.logger).Info("user created", slog.String("user_id", u.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	u := s.byID[id]
	return &u, nil
}

// UpdateProfile implements store.UserStore.UpdateProfile
func (s *UserStore) UpdateProfile(
	_ context.Context,
	id uuid.UUID,
	name, email string,
	updatedAt time.Time,
) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	email = domain.NormalizeEmail(email)
	if owner, taken := s.byEmail[email]; taken && owner != id {
		return nil, store.ErrEmailExists
	}

	delete(s.byEmail, u.Email)
	u.Name = name
	u.Email = email
	u.UpdatedAt = domain.Stamp(updatedAt)
	s.byID[id] = u
	s.byEmail[email] = id

	return &u, nil
}
