package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/store"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newUserService(t *testing.T, users store.UserStore) (service.UserService, *mocks.MockJWTService) {
	t.Helper()
	jwtSvc := &mocks.MockJWTService{Token: "signed-token"}
	svc, err := service.NewUserService(users, &mocks.MockPasswordHasher{}, jwtSvc, quietLogger)
	require.NoError(t, err)
	return svc, jwtSvc
}

func TestNewUserServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := service.NewUserService(nil, &mocks.MockPasswordHasher{}, &mocks.MockJWTService{}, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
	_, err = service.NewUserService(mocks.NewMockUserStore(), nil, &mocks.MockJWTService{}, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
	_, err = service.NewUserService(mocks.NewMockUserStore(), &mocks.MockPasswordHasher{}, nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		users := mocks.NewMockUserStore()
		svc, _ := newUserService(t, users)

		res, err := svc.Register(ctx, "  Ada ", "Ada@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "signed-token", res.Token)
		assert.Equal(t, "Ada", res.User.Name)
		assert.Equal(t, "ada@example.com", res.User.Email)
		assert.Equal(t, "hashed:secret1", res.User.HashedPassword)
		assert.Empty(t, res.User.Password, "plaintext must not outlive hashing")
		assert.Equal(t, res.User.ID, users.LastUserID)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		t.Parallel()
		users := mocks.NewMockUserStore()
		svc, _ := newUserService(t, users)

		_, err := svc.Register(ctx, "Ada", "a@x.com", "secret1")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "Other", "a@x.com", "secret2")
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _ := newUserService(t, mocks.NewMockUserStore())

		_, err := svc.Register(ctx, "", "not-an-email", "123")
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Name is required", verr.Fields["name"])
		assert.Equal(t, "Please provide a valid email", verr.Fields["email"])
		assert.Equal(t, "Password must be at least 6 characters", verr.Fields["password"])
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()
		users := mocks.NewMockUserStore()
		users.CreateError = errors.New("connection reset")
		svc, _ := newUserService(t, users)

		_, err := svc.Register(ctx, "Ada", "a@x.com", "secret1")
		var serr *service.ServiceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "register", serr.Op)
	})
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := mocks.NewMockUserStore()
	svc, jwtSvc := newUserService(t, users)
	registered, err := svc.Register(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	jwtSvc.GenerateTokenFn = func(_ context.Context, userID uuid.UUID) (string, error) {
		return "token-for-" + userID.String(), nil
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"success with different case", "ADA@example.com", "secret1", nil},
		{"wrong password", "ada@example.com", "secret2", service.ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "secret1", service.ErrInvalidCredentials},
		{"missing fields", "", "", domain.ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.User.ID, res.User.ID)
			assert.Equal(t, "token-for-"+registered.User.ID.String(), res.Token)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("normalizes and stores", func(t *testing.T) {
		t.Parallel()
		users := new(mocks.TestifyMockUserStore)
		svc, err := service.NewUserService(users, &mocks.MockPasswordHasher{}, &mocks.MockJWTService{}, quietLogger)
		require.NoError(t, err)

		updated := &domain.User{ID: userID, Name: "Grace", Email: "grace@example.com"}
		users.On("UpdateProfile", mock.Anything, userID, "Grace", "grace@example.com",
			mock.AnythingOfType("time.Time")).Return(updated, nil)

		got, err := svc.UpdateProfile(ctx, userID, " Grace ", " Grace@Example.com ")
		require.NoError(t, err)
		assert.Same(t, updated, got)
		users.AssertExpectations(t)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		t.Parallel()
		users := new(mocks.TestifyMockUserStore)
		svc, err := service.NewUserService(users, &mocks.MockPasswordHasher{}, &mocks.MockJWTService{}, quietLogger)
		require.NoError(t, err)

		_, err = svc.UpdateProfile(ctx, userID, "", "bad")
		assert.ErrorIs(t, err, domain.ErrValidation)
		users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		users := new(mocks.TestifyMockUserStore)
		svc, err := service.NewUserService(users, &mocks.MockPasswordHasher{}, &mocks.MockJWTService{}, quietLogger)
		require.NoError(t, err)

		users.On("UpdateProfile", mock.Anything, userID, "Grace", "taken@example.com", mock.Anything).
			Return(nil, store.ErrEmailExists)

		_, err = svc.UpdateProfile(ctx, userID, "Grace", "taken@example.com")
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := new(mocks.TestifyMockUserStore)
	svc, err := service.NewUserService(users, &mocks.MockPasswordHasher{}, &mocks.MockJWTService{}, quietLogger)
	require.NoError(t, err)

	known := &domain.User{ID: uuid.New(), Name: "Ada", CreatedAt: time.Now()}
	missing := uuid.New()
	users.On("GetByID", mock.Anything, known.ID).Return(known, nil)
	users.On("GetByID", mock.Anything, missing).Return(nil, store.ErrUserNotFound)

	got, err := svc.GetUser(ctx, known.ID)
	require.NoError(t, err)
	assert.Equal(t, known, got)

	_, err = svc.GetUser(ctx, missing)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
