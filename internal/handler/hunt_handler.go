package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/handler/dto"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
	"github.com/yourusername/hunt-api/internal/service"
	"github.com/yourusername/hunt-api/internal/service/huntmanager"
)

// Максимальный размер загружаемого медиа-ответа (20 MB)
const maxMediaUploadSize = 20 << 20

// HuntHandler обрабатывает запросы прогресса квеста
type HuntHandler struct {
	huntService *service.HuntService
	uploadDir   string
}

// NewHuntHandler создает новый обработчик квеста
func NewHuntHandler(huntService *service.HuntService, uploadDir string) *HuntHandler {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &HuntHandler{
		huntService: huntService,
		uploadDir:   uploadDir,
	}
}

// SubmitAnswerRequest представляет текстовый ответ на точку
type SubmitAnswerRequest struct {
	Kind  string `json:"kind" binding:"omitempty,oneof=text image audio video"`
	Value string `json:"value" binding:"required,max=500"`
}

// GetProgress возвращает полное состояние квеста участника
func (h *HuntHandler) GetProgress(c *gin.Context) {
	participantID := participantIDFromContext(c)

	views, err := h.huntService.LoadProgress(c.Request.Context(), participantID)
	if err != nil {
		h.handleHuntError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProgressResponse(
		views,
		h.huntService.IsHuntCompleted(participantID),
		h.huntService.CompletionPercentage(participantID),
		h.huntService.Degraded(participantID),
	))
}

// SubmitAnswer принимает ответ на точку.
// JSON - текстовый ответ (или ссылка на медиа), multipart/form-data - файл.
func (h *HuntHandler) SubmitAnswer(c *gin.Context) {
	participantID := participantIDFromContext(c)
	locationID := c.MustGet("locationID").(uint)

	answer, err := h.parseAnswer(c, participantID, locationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.huntService.SubmitAnswer(c.Request.Context(), participantID, locationID, *answer)
	if err != nil {
		h.handleHuntError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitAnswerResponse{
		Success: result.Success,
		Message: result.Message,
	})
}

// GetCompletion возвращает краткий статус завершения квеста
func (h *HuntHandler) GetCompletion(c *gin.Context) {
	participantID := participantIDFromContext(c)

	// Загружаем прогресс, если сессия свежая
	if _, err := h.huntService.LoadProgress(c.Request.Context(), participantID); err != nil {
		h.handleHuntError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completed":  h.huntService.IsHuntCompleted(participantID),
		"percentage": h.huntService.CompletionPercentage(participantID),
	})
}

// ResetProgress сбрасывает прогресс участника (только для разработки)
func (h *HuntHandler) ResetProgress(c *gin.Context) {
	participantID := participantIDFromContext(c)

	if err := h.huntService.ResetProgress(c.Request.Context(), participantID); err != nil {
		if errors.Is(err, service.ErrResetNotAllowed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Progress reset is disabled"})
			return
		}
		h.handleHuntError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Progress reset"})
}

// parseAnswer собирает huntmanager.Answer из JSON или multipart-запроса
func (h *HuntHandler) parseAnswer(c *gin.Context, participantID string, locationID uint) (*huntmanager.Answer, error) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return h.parseMediaAnswer(c, participantID, locationID)
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = entity.AnswerKindText
	}
	return &huntmanager.Answer{Kind: kind, Value: req.Value}, nil
}

// parseMediaAnswer сохраняет загруженный файл и возвращает ответ со ссылкой на него
func (h *HuntHandler) parseMediaAnswer(c *gin.Context, participantID string, locationID uint) (*huntmanager.Answer, error) {
	if c.Request.ContentLength > maxMediaUploadSize {
		return nil, fmt.Errorf("file is too large (max %d bytes)", maxMediaUploadSize)
	}

	kind := c.PostForm("kind")
	switch kind {
	case entity.AnswerKindImage, entity.AnswerKindAudio, entity.AnswerKindVideo:
	default:
		return nil, fmt.Errorf("invalid media kind: %q", kind)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("file is required for media answers: %w", err)
	}

	// Имя файла от клиента не используется в пути напрямую
	ext := filepath.Ext(file.Filename)
	storedName := fmt.Sprintf("%s-loc%d-%s%s", participantID, locationID, uuid.New().String(), ext)
	storedPath := filepath.Join(h.uploadDir, storedName)

	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		log.Printf("[HuntHandler] Ошибка сохранения медиа-ответа участника %s: %v", participantID, err)
		return nil, fmt.Errorf("failed to store uploaded file")
	}

	return &huntmanager.Answer{Kind: kind, Value: storedPath}, nil
}

func (h *HuntHandler) handleHuntError(c *gin.Context, err error) {
	if errors.Is(err, huntmanager.ErrNotInitialized) {
		c.JSON(http.StatusConflict, gin.H{"error": "Progress is not loaded yet"})
	} else if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in HuntHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// participantIDFromContext возвращает строковый ID участника из контекста Gin
func participantIDFromContext(c *gin.Context) string {
	userID := c.MustGet("user_id").(uint)
	return fmt.Sprintf("%d", userID)
}
