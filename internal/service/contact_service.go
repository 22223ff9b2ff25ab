package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/domain/repository"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
)

// ContactService сохраняет сообщения контактной формы и пересылает их на почту бизнеса
type ContactService struct {
	contactRepo  repository.ContactRepository
	emailService EmailService
}

// NewContactService создает сервис контактной формы
func NewContactService(contactRepo repository.ContactRepository, emailService EmailService) *ContactService {
	return &ContactService{
		contactRepo:  contactRepo,
		emailService: emailService,
	}
}

// Submit сохраняет сообщение и отправляет уведомление.
// Письмо отправляется после успешного сохранения (DB first); ошибка отправки
// только логируется - сообщение уже в базе и не должно теряться из-за почты.
func (s *ContactService) Submit(ctx context.Context, name, email, phone, text string) (*entity.ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	text = strings.TrimSpace(text)
	if name == "" || email == "" || text == "" {
		return nil, apperrors.ErrValidation
	}

	message := &entity.ContactMessage{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(phone),
		Message: text,
	}

	if err := s.contactRepo.Create(ctx, message); err != nil {
		log.Printf("[ContactService] Ошибка сохранения сообщения от %s: %v", email, err)
		return nil, err
	}

	go func(msg entity.ContactMessage) {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailService.SendContactNotification(sendCtx, &msg); err != nil {
			log.Printf("[ContactService] Ошибка отправки уведомления о сообщении %s: %v", msg.ID, err)
		}
	}(*message)

	return message, nil
}

// List возвращает сообщения с пагинацией (для админ-панели)
func (s *ContactService) List(ctx context.Context, page, pageSize int) ([]entity.ContactMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.contactRepo.List(ctx, pageSize, offset)
}
