package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Guard failures beyond the auth package's token errors. Both wrap
// auth.ErrInvalidToken.
var (
	ErrInvalidAuthFormat = fmt.Errorf("%w: authorization header is not a bearer token", auth.ErrInvalidToken)
	ErrUnknownUser       = fmt.Errorf("%w: user no longer exists", auth.ErrInvalidToken)
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID uuid.UUID
	User   *domain.User
}

// UserLookup resolves the user a verified token was issued for.
type UserLookup interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type identityKey struct{}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      UserLookup
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, users UserLookup, logger *slog.Logger) *AuthMiddleware {
	if jwtService == nil || users == nil {
		panic("jwt service and user lookup cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Guard verifies the request's bearer token and resolves the caller.
// It returns auth.ErrMissingToken without an Authorization header,
// ErrInvalidAuthFormat for a non-bearer header, the token errors of
// auth.JWTService.ValidateToken, and ErrUnknownUser when the token's user
// has been removed. Any other error is an infrastructure failure.
func (m *AuthMiddleware) Guard(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, auth.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return Identity{}, ErrInvalidAuthFormat
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		return Identity{}, err
	}

	user, err := m.users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, err
	}

	return Identity{UserID: user.ID, User: user}, nil
}

// Authenticate runs Guard before next. Rejected requests get a 401 and never
// reach next; on success the user ID and identity are stored in the context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.Guard(r)
		if err != nil {
			status, message := authFailure(err)
			shared.RespondWithErrorAndLog(w, r, status, message, err)
			return
		}

		ctx := shared.WithUserID(r.Context(), identity.UserID)
		ctx = context.WithValue(ctx, identityKey{}, identity)
		log := logger.FromContextOrDefault(ctx, m.logger).With(slog.String("user_id", identity.UserID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the identity stored by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Authorization header required"
	case errors.Is(err, ErrInvalidAuthFormat):
		return http.StatusUnauthorized, "Invalid authorization format"
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, ErrUnknownUser):
		return http.StatusUnauthorized, "User no longer exists"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	default:
		return http.StatusInternalServerError, "Authentication error"
	}
}
