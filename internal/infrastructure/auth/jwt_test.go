package auth

import (
	"testing"
	"time"

	"github.com/pharmacy/backend/internal/domain/identity"
	"github.com/pharmacy/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-at-least-32-characters",
		Expiration: time.Hour,
		Issuer:     "pharmacy-backend",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := testService()
	userID := uuid.New()

	token, err := svc.Generate(userID, identity.RolePharmacist)
	require.NoError(t, err)

	gotID, gotRole, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, identity.RolePharmacist, gotRole)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := testService().Generate(uuid.New(), identity.RoleCustomer)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "a-completely-different-secret-key", Expiration: time.Hour})
	_, _, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:     "test-secret-at-least-32-characters",
		Expiration: -time.Minute,
	})
	token, err := svc.Generate(uuid.New(), identity.RoleCustomer)
	require.NoError(t, err)

	_, _, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_Garbage(t *testing.T) {
	_, _, err := testService().Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
