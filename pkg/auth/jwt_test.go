package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

const testSecret = "test-secret-key-with-32-bytes-min!"

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService("short", 24)
	assert.Error(t, err)
}

func TestJWTService_GenerateAndParse(t *testing.T) {
	// Arrange
	svc, err := NewJWTService(testSecret, 24)
	require.NoError(t, err)

	now := time.Now()
	user := &entity.User{
		ID:              42,
		Email:           "hunter@example.com",
		Role:            "participant",
		IsApproved:      true,
		HasSignedWaiver: true,
		WaiverSignedAt:  &now,
	}

	// Act
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)

	// Assert: флаги допуска переносятся в claims
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "hunter@example.com", claims.Email)
	assert.Equal(t, "participant", claims.Role)
	assert.True(t, claims.IsApproved)
	assert.True(t, claims.HasSignedWaiver)
}

func TestJWTService_RejectsForeignToken(t *testing.T) {
	issuer, err := NewJWTService(testSecret, 24)
	require.NoError(t, err)
	verifier, err := NewJWTService("another-secret-key-with-32-bytes!!", 24)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(&entity.User{ID: 1})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc, err := NewJWTService(testSecret, 24)
	require.NoError(t, err)

	_, err = svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
