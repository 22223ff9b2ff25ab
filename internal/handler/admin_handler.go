package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/domain/repository"
	"github.com/yourusername/hunt-api/internal/handler/dto"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
	"github.com/yourusername/hunt-api/internal/service"
)

// AdminHandler обрабатывает административные запросы: одобрение участников,
// просмотр сообщений контактной формы и экспорт прогресса квеста.
type AdminHandler struct {
	userRepo       repository.UserRepository
	progressLister repository.ProgressLister
	contactService *service.ContactService
	catalog        *entity.Catalog
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(
	userRepo repository.UserRepository,
	progressLister repository.ProgressLister,
	contactService *service.ContactService,
	catalog *entity.Catalog,
) *AdminHandler {
	return &AdminHandler{
		userRepo:       userRepo,
		progressLister: progressLister,
		contactService: contactService,
		catalog:        catalog,
	}
}

// ListUsers возвращает участников с пагинацией
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	users, total, err := h.userRepo.List(pageSize, (page-1)*pageSize)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    dto.NewUserListDTO(users),
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// ApproveUser одобряет участие пользователя в квесте
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	if err := h.userRepo.SetApproved(userID, true); err != nil {
		h.handleAdminError(c, err)
		return
	}

	log.Printf("[AdminHandler] Участник ID=%d одобрен", userID)
	c.JSON(http.StatusOK, gin.H{"message": "User approved"})
}

// ListContactMessages возвращает сообщения контактной формы с пагинацией
func (h *AdminHandler) ListContactMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	messages, total, err := h.contactService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

// progressExportRow - одна строка экспорта прогресса
type progressExportRow struct {
	ParticipantID string
	Username      string
	Email         string
	Completed     int
	Total         int
	Percentage    int
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// ExportProgress экспортирует прогресс всех участников.
// Формат задается query-параметром format: xlsx (по умолчанию) или csv.
func (h *AdminHandler) ExportProgress(c *gin.Context) {
	rows, err := h.collectProgressRows(c)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	filename := fmt.Sprintf("hunt_progress_%s", time.Now().Format("2006-01-02"))

	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		h.exportCSV(c, rows, filename)
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format, use xlsx or csv"})
	}
}

// collectProgressRows собирает записи прогресса и сопоставляет их с участниками
func (h *AdminHandler) collectProgressRows(c *gin.Context) ([]progressExportRow, error) {
	records, err := h.progressLister.ListAll(c.Request.Context())
	if err != nil {
		return nil, err
	}

	// -1 отключает лимит: экспорт всегда полный
	users, _, err := h.userRepo.List(-1, 0)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]*entity.User, len(users))
	for i := range users {
		usersByID[fmt.Sprintf("%d", users[i].ID)] = &users[i]
	}

	total := h.catalog.Size()
	rows := make([]progressExportRow, 0, len(records))
	for i := range records {
		record := &records[i]
		row := progressExportRow{
			ParticipantID: record.ParticipantID,
			Completed:     len(record.CompletedLocations),
			Total:         total,
			StartedAt:     record.StartedAt,
			CompletedAt:   record.CompletedAt,
		}
		if total > 0 {
			row.Percentage = int(math.Round(float64(row.Completed) / float64(total) * 100))
		}
		if user, ok := usersByID[record.ParticipantID]; ok {
			row.Username = user.Username
			row.Email = user.Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// exportCSV экспортирует прогресс в CSV
func (h *AdminHandler) exportCSV(c *gin.Context, rows []progressExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Участник", "Имя", "Email", "Пройдено точек", "Всего точек", "Процент", "Начал", "Завершил"})

	for _, row := range rows {
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format(time.RFC3339)
		}
		writer.Write([]string{
			row.ParticipantID,
			sanitizeForExcel(row.Username),
			sanitizeForExcel(row.Email),
			strconv.Itoa(row.Completed),
			strconv.Itoa(row.Total),
			fmt.Sprintf("%d%%", row.Percentage),
			row.StartedAt.Format(time.RFC3339),
			completedAt,
		})
	}
}

// exportXLSX экспортирует прогресс в Excel с использованием StreamWriter
func (h *AdminHandler) exportXLSX(c *gin.Context, rows []progressExportRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Прогресс"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Участник", "Имя", "Email", "Пройдено точек", "Всего точек", "Процент", "Начал", "Завершил"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AdminHandler] Ошибка записи заголовков: %v", err)
	}

	for i, row := range rows {
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format(time.RFC3339)
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := sw.SetRow(cell, []interface{}{
			row.ParticipantID,
			sanitizeForExcel(row.Username),
			sanitizeForExcel(row.Email),
			row.Completed,
			row.Total,
			fmt.Sprintf("%d%%", row.Percentage),
			row.StartedAt.Format(time.RFC3339),
			completedAt,
		}); err != nil {
			log.Printf("[AdminHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Ошибка завершения StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize Excel file"})
		return
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AdminHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
