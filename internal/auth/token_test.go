package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalicha-dev28/boutique-pos/internal/config"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	maker := NewTokenMaker(config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour})

	user := model.User{
		ID:    uuid.New(),
		Name:  "Halima",
		Email: "halima@example.com",
		Role:  model.RoleManager,
	}

	token, err := maker.Generate(user)
	require.NoError(t, err)

	claims, err := maker.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, user.Name, claims.Name)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	maker := NewTokenMaker(config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour})
	other := NewTokenMaker(config.Auth{JWTSecret: "other-secret", TokenTTL: time.Hour})

	token, err := maker.Generate(model.User{ID: uuid.New(), Role: model.RoleCashier})
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	maker := NewTokenMaker(config.Auth{JWTSecret: "test-secret", TokenTTL: -time.Minute})

	token, err := maker.Generate(model.User{ID: uuid.New(), Role: model.RoleCashier})
	require.NoError(t, err)

	_, err = maker.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	maker := NewTokenMaker(config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour})

	_, err := maker.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
}
