package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalicha-dev28/boutique-pos/internal/auth"
	"github.com/qalicha-dev28/boutique-pos/internal/config"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/pkg/ptr"
)

func newAuthFixture(t *testing.T) (*fakeUserRepo, *auth.TokenMaker, AuthService) {
	t.Helper()

	userRepo := newFakeUserRepo()
	tokenMaker := auth.NewTokenMaker(config.Auth{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})

	return userRepo, tokenMaker, NewAuthService(userRepo, tokenMaker)
}

func TestRegisterAndLogin(t *testing.T) {
	_, tokenMaker, svc := newAuthFixture(t)

	_, registered, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Halima",
		Email:    "halima@example.com",
		Password: "correct horse",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)
	assert.True(t, registered.IsActive)
	assert.NotEqual(t, "correct horse", registered.Password)

	token, user, err := svc.Login(context.Background(), "halima@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := tokenMaker.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, model.RoleCashier, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	_, _, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Halima",
		Email:    "halima@example.com",
		Password: "correct horse",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "halima@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
}

func TestLoginUnknownEmail(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	userRepo, _, svc := newAuthFixture(t)

	_, registered, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Halima",
		Email:    "halima@example.com",
		Password: "correct horse",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)

	_, err = userRepo.Update(context.Background(), registered.ID, repository.UpdateUserParams{
		IsActive: ptr.New(false),
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "halima@example.com", "correct horse")
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", errCode(t, err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	params := RegisterParams{
		Name:     "Halima",
		Email:    "halima@example.com",
		Password: "correct horse",
		Role:     model.RoleCashier,
	}
	_, _, err := svc.Register(context.Background(), params)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, "EMAIL_TAKEN", errCode(t, err))
}

func TestRegisterInvalidRole(t *testing.T) {
	_, _, svc := newAuthFixture(t)

	_, _, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Halima",
		Email:    "halima@example.com",
		Password: "correct horse",
		Role:     "owner",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}
