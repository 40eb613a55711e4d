package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token string
	User  *domain.User
}

// UserService provides account operations.
type UserService interface {
	// Register creates an account and issues a token for it.
	// Returns *domain.ValidationError for bad input and store.ErrEmailExists
	// when the email is taken.
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)

	// Login verifies credentials and issues a token.
	// Returns ErrInvalidCredentials for an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile changes the user's name and email.
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) (*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	tokens   auth.JWTService
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	logger *slog.Logger,
) (UserService, error) {
	switch {
	case users == nil:
		return nil, fmt.Errorf("%w: user store", ErrMissingDependency)
	case hasher == nil:
		return nil, fmt.Errorf("%w: password hasher", ErrMissingDependency)
	case tokens == nil:
		return nil, fmt.Errorf("%w: jwt service", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, err
		}
		return nil, NewServiceError("user", "register", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return &AuthResult{Token: token, User: user}, nil
}

// Login implements UserService.Login
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	verr := &domain.ValidationError{}
	if strings.TrimSpace(email) == "" {
		verr.Add("email", "Email is required")
	}
	if password == "" {
		verr.Add("password", "Password is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email", slog.String("email", redact.String(email)))
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "login", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "login", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, NewServiceError("user", "login", err)
	}

	log.Debug("user logged in", slog.String("user_id", user.ID.String()))
	return &AuthResult{Token: token, User: user}, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

// UpdateProfile implements UserService.UpdateProfile
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	name, email string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateProfile(name, email); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, email, domain.Stamp(s.timeFunc()))
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) || errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "update_profile", err)
	}

	log.Info("user profile updated", slog.String("user_id", userID.String()))
	return user, nil
}
