package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
	"github.com/MfFischer/game-of-thrones-api/internal/repository"
	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
)

type brokenDenylist struct{}

func (brokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	return errors.New("redis down")
}

func (brokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, errors.New("redis down")
}

func newAuthService(t *testing.T) (*AuthService, *repository.UserMemoryRepository) {
	t.Helper()
	users := repository.NewUserMemoryRepository()
	svc := NewAuthService(users, repository.NewTokenDenylistMemoryRepository(), nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Leeway:            50 * time.Second,
		Issuer:            "got-api",
	})
	return svc, users
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{Username: "sam", Password: "password"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password", user.PasswordHash)

	resp, err := svc.Login(ctx, models.LoginRequest{Username: "sam", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.Type)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "sam", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceRegisterRules(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "sam", Password: "password"}, nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "sam", Password: "password"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "gilly", Password: "password", Role: models.RoleAdmin}, nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "gilly", Password: "password", Role: models.RoleAdmin},
		&models.Identity{Subject: "sam", Role: models.RoleUser})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	admin, err := svc.Register(ctx, models.RegisterRequest{Username: "gilly", Password: "password", Role: models.RoleAdmin},
		&models.Identity{Subject: "root", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "x", Password: "1"}, nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Details, "username")
	assert.Contains(t, appErr.Details, "password")

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "walder", Password: "password", Role: "king"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, "admin", "admin123", models.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "nobody", Password: "admin123"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceEnsureUserIsIdempotent(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx, "admin", "admin123", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(ctx, "admin", "changed", models.RoleUser)
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestAuthServiceValidateTokenRejections(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, "admin", "admin123", models.RoleAdmin)
	require.NoError(t, err)
	resp, err := svc.Login(ctx, models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := *svc
	other.config.AccessTokenSecret = "different"
	_, err = other.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	late := *svc
	late.now = func() time.Time { return time.Now().Add(time.Hour + 40*time.Second) }
	_, err = late.ValidateToken(ctx, resp.Token)
	require.NoError(t, err, "tokens stay valid within the leeway")

	later := *svc
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.ValidateToken(ctx, resp.Token)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expired"))
}

func TestAuthServiceRejectsForeignAlgorithm(t *testing.T) {
	svc, _ := newAuthService(t)
	claims := models.JWTClaims{
		Username: "admin",
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "got-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, "sam", "password", models.RoleUser)
	require.NoError(t, err)
	resp, err := svc.Login(ctx, models.LoginRequest{Username: "sam", Password: "password"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.ValidateToken(ctx, resp.Token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")

	assert.ErrorIs(t, svc.Logout(ctx, nil), appErrors.ErrUnauthorized)
}

func TestAuthServiceDenylistFailure(t *testing.T) {
	users := repository.NewUserMemoryRepository()
	svc := NewAuthService(users, brokenDenylist{}, nil, nil, AuthConfig{AccessTokenSecret: "secret"})
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, "sam", "password", models.RoleUser)
	require.NoError(t, err)
	resp, err := svc.Login(ctx, models.LoginRequest{Username: "sam", Password: "password"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
