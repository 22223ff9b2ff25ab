package repository

import (
	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с участниками
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
	SetApproved(userID uint, approved bool) error
	SignWaiver(userID uint) error
	List(limit, offset int) ([]entity.User, int64, error)
}
