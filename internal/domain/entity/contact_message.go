package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage представляет сообщение из контактной формы сайта
type ContactMessage struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;not null;index" json:"email"`
	Phone     string    `gorm:"size:30;not null;default:''" json:"phone,omitempty"`
	Message   string    `gorm:"size:2000;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// BeforeCreate генерирует UUID, если он не задан
func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
