package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// Ошибки проверки токена
var (
	ErrInvalidToken = errors.New("invalid or malformed token")
	ErrExpiredToken = errors.New("token is expired")
)

// JWTClaims - пользовательские данные внутри access-токена.
// Флаги допуска кладутся в токен, чтобы middleware не ходил в базу
// на каждый запрос; после одобрения участнику нужен новый токен.
type JWTClaims struct {
	UserID          uint   `json:"user_id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	IsApproved      bool   `json:"is_approved"`
	HasSignedWaiver bool   `json:"has_signed_waiver"`
	jwt.RegisteredClaims
}

// JWTService создает и проверяет access-токены с HMAC-подписью
type JWTService struct {
	secret     []byte
	expiration time.Duration
}

// NewJWTService создает сервис токенов
func NewJWTService(secret string, expirationHrs int) (*JWTService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes, got %d", len(secret))
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:     []byte(secret),
		expiration: time.Duration(expirationHrs) * time.Hour,
	}, nil
}

// GenerateToken выпускает access-токен для участника
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:          user.ID,
		Email:           user.Email,
		Role:            user.Role,
		IsApproved:      user.IsApproved,
		HasSignedWaiver: user.HasSignedWaiver,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken проверяет подпись и срок действия токена и возвращает claims
func (s *JWTService) ParseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
