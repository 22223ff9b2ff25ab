package repository

import (
	"context"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// ContactRepository определяет методы для работы с сообщениями контактной формы
type ContactRepository interface {
	Create(ctx context.Context, message *entity.ContactMessage) error
	List(ctx context.Context, limit, offset int) ([]entity.ContactMessage, int64, error)
}
