package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

func newUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, email, "secret1")
	require.NoError(t, err)
	u.HashedPassword = "$2a$04$hash"
	return u
}

func TestUserStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		t.Parallel()
		s := NewUserStore(nil)
		u := newUser(t, "Ada", "ada@example.com")
		require.NoError(t, s.Create(ctx, u))

		byID, err := s.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Empty(t, byID.Password)

		byEmail, err := s.GetByEmail(ctx, "ADA@Example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		s := NewUserStore(nil)
		require.NoError(t, s.Create(ctx, newUser(t, "Ada", "ada@example.com")))

		err := s.Create(ctx, newUser(t, "Other", "Ada@example.com"))
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("empty hash rejected", func(t *testing.T) {
		t.Parallel()
		s := NewUserStore(nil)
		u := newUser(t, "Ada", "ada@example.com")
		u.HashedPassword = ""
		assert.ErrorIs(t, s.Create(ctx, u), domain.ErrEmptyHashedPassword)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		s := NewUserStore(nil)
		_, err := s.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		t.Parallel()
		s := NewUserStore(nil)
		u := newUser(t, "Ada", "ada@example.com")
		require.NoError(t, s.Create(ctx, u))

		got, err := s.GetByID(ctx, u.ID)
		require.NoError(t, err)
		got.Name = "changed"

		again, err := s.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Name)
	})

	t.Run("update profile", func(t *testing.T) {
		t.Parallel()
		s := NewUserStore(nil)
		ada := newUser(t, "Ada", "ada@example.com")
		grace := newUser(t, "Grace", "grace@example.com")
		require.NoError(t, s.Create(ctx, ada))
		require.NoError(t, s.Create(ctx, grace))

		_, err := s.UpdateProfile(ctx, ada.ID, "Ada", "grace@example.com", time.Now())
		assert.ErrorIs(t, err, store.ErrEmailExists)

		updated, err := s.UpdateProfile(ctx, ada.ID, "Ada L.", "lovelace@example.com", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "Ada L.", updated.Name)

		_, err = s.GetByEmail(ctx, "ada@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		found, err := s.GetByEmail(ctx, "lovelace@example.com")
		require.NoError(t, err)
		assert.Equal(t, ada.ID, found.ID)

		same, err := s.UpdateProfile(ctx, grace.ID, "Grace H.", "grace@example.com", time.Now())
		require.NoError(t, err)
		assert.Equal(t, "Grace H.", same.Name)
	})
}
