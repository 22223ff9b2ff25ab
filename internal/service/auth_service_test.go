package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
	"github.com/yourusername/hunt-api/pkg/auth"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret-key-with-32-bytes-min!", 1)
	require.NoError(t, err)
	return jwtService
}

func TestAuthService_Register(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "hunter@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)
	svc := NewAuthService(userRepo, newTestJWTService(t))

	// Act: email нормализуется к нижнему регистру
	user, err := svc.Register("hunter", "  Hunter@Example.COM  ", "password123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "hunter@example.com", user.Email)
	assert.Equal(t, "participant", user.Role)
	assert.False(t, user.IsApproved)
	userRepo.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), newTestJWTService(t))

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"пустое имя", "", "a@b.com", "password123"},
		{"пустой email", "hunter", "", "password123"},
		{"короткий пароль", "hunter", "a@b.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestAuthService_RegisterEmailTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "taken@example.com").Return(&entity.User{ID: 1, Email: "taken@example.com"}, nil)
	svc := NewAuthService(userRepo, newTestJWTService(t))

	_, err := svc.Register("hunter", "taken@example.com", "password123")

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	// Arrange
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &entity.User{
		ID:       7,
		Username: "hunter",
		Email:    "hunter@example.com",
		Password: string(hashed),
	}
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "hunter@example.com").Return(stored, nil)
	jwtService := newTestJWTService(t)
	svc := NewAuthService(userRepo, jwtService)

	// Act
	user, token, err := svc.Login("hunter@example.com", "password123")

	// Assert: токен валиден и содержит ID участника
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	claims, err := jwtService.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "hunter@example.com", claims.Email)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "hunter@example.com").Return(&entity.User{ID: 7, Password: string(hashed)}, nil)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	svc := NewAuthService(userRepo, newTestJWTService(t))

	// Неверный пароль
	_, _, err = svc.Login("hunter@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Несуществующий участник: та же ошибка, без утечки информации
	_, _, err = svc.Login("ghost@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
