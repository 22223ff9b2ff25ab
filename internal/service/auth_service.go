package service

import (
	"errors"
	"log"
	"strings"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/domain/repository"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
	"github.com/yourusername/hunt-api/pkg/auth"
)

// AuthService отвечает за регистрацию и вход участников.
// Выдает access-токен; движок прогресса доверяет результату аутентификации
// безусловно и собственных проверок прав не делает.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register создает нового участника. Участник создается неподтверждённым:
// допуск к квесту выдает администратор, отказ от претензий участник
// подписывает отдельно.
func (s *AuthService) Register(username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, apperrors.ErrValidation
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // хешируется в BeforeSave
		Role:     "participant",
	}
	if err := s.userRepo.Create(user); err != nil {
		log.Printf("[AuthService] Ошибка создания участника %s: %v", email, err)
		return nil, err
	}

	log.Printf("[AuthService] Зарегистрирован участник %s (id=%d)", email, user.ID)
	return user, nil
}

// Login проверяет учётные данные и возвращает участника с access-токеном
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации токена для участника %d: %v", user.ID, err)
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByID возвращает участника по ID
func (s *AuthService) GetUserByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// SignWaiver отмечает подписание отказа от претензий текущим участником
func (s *AuthService) SignWaiver(userID uint) (*entity.User, error) {
	if err := s.userRepo.SignWaiver(userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}
