package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// ContactRepo реализует repository.ContactRepository
type ContactRepo struct {
	db *gorm.DB
}

// NewContactRepo создает новый репозиторий сообщений контактной формы
func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// Create сохраняет новое сообщение
func (r *ContactRepo) Create(ctx context.Context, message *entity.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// List возвращает сообщения с пагинацией, новые первыми
func (r *ContactRepo) List(ctx context.Context, limit, offset int) ([]entity.ContactMessage, int64, error) {
	var messages []entity.ContactMessage
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.ContactMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
