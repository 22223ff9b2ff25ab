package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий участников
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового участника
func (r *UserRepo) Create(user *entity.User) error {
	return r.db.Create(user).Error
}

// GetByID возвращает участника по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail возвращает участника по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update обновляет информацию об участнике
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// SetApproved выставляет флаг допуска участника к квесту
func (r *UserRepo) SetApproved(userID uint, approved bool) error {
	res := r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"is_approved": approved, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SignWaiver отмечает, что участник подписал отказ от претензий
func (r *UserRepo) SignWaiver(userID uint) error {
	now := time.Now()
	res := r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"has_signed_waiver": true,
			"waiver_signed_at":  now,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает список участников с пагинацией и общим количеством
func (r *UserRepo) List(limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	if err := r.db.Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
