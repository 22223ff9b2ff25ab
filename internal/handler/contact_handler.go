package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
	"github.com/yourusername/hunt-api/internal/service"
)

// ContactHandler обрабатывает запросы контактной формы
type ContactHandler struct {
	contactService *service.ContactService
}

// NewContactHandler создает новый обработчик контактной формы
func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRequest представляет сообщение контактной формы
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
	Message string `json:"message" binding:"required,min=5,max=2000"`
}

// Submit принимает сообщение контактной формы (публичный endpoint)
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.contactService.Submit(c.Request.Context(), req.Name, req.Email, req.Phone, req.Message)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Name, email and message are required"})
			return
		}
		log.Printf("ERROR: Internal server error in ContactHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": message.ID, "message": "Thanks! We'll get back to you soon."})
}
