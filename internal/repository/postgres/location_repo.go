package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// LocationRepo реализует repository.LocationRepository
type LocationRepo struct {
	db *gorm.DB
}

// NewLocationRepo создает новый репозиторий каталога точек
func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// GetAllOrdered возвращает все точки квеста в порядке прохождения (по ID)
func (r *LocationRepo) GetAllOrdered(ctx context.Context) ([]entity.Location, error) {
	var locations []entity.Location
	err := r.db.WithContext(ctx).Order("id ASC").Find(&locations).Error
	return locations, err
}
