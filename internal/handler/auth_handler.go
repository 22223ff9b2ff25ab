package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hunt-api/internal/handler/dto"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
	"github.com/yourusername/hunt-api/internal/service"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
			return
		}
		h.handleAuthError(c, err)
		return
	}

	log.Printf("[AuthHandler] Участник ID=%d (%s) успешно зарегистрирован", user.ID, user.Email)
	c.JSON(http.StatusCreated, gin.H{"user": dto.NewUserDTO(user)})
}

// Login обрабатывает запрос на вход
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        dto.NewUserDTO(user),
		"accessToken": token,
		"tokenType":   "Bearer",
	})
}

// Me возвращает текущего участника
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.NewUserDTO(user)})
}

// SignWaiver отмечает подписание отказа от претензий текущим участником.
// После подписания участнику нужен новый токен (флаги допуска живут в JWT).
func (h *AuthHandler) SignWaiver(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	user, err := h.authService.SignWaiver(userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	log.Printf("[AuthHandler] Участник ID=%d подписал отказ от претензий", userID)
	c.JSON(http.StatusOK, gin.H{
		"user":    dto.NewUserDTO(user),
		"message": "Waiver signed. Please log in again to refresh your access token.",
	})
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AuthHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
