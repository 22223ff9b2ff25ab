package repository

import (
	"context"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// LocationRepository загружает статический каталог точек квеста.
// Каталог читается один раз при старте приложения; движок работает
// с неизменяемым entity.Catalog и в базу за точками не ходит.
type LocationRepository interface {
	GetAllOrdered(ctx context.Context) ([]entity.Location, error)
}
