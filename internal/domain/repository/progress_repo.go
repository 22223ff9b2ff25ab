package repository

import (
	"context"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// ProgressRepository определяет контракт хранилища прогресса участников.
//
// LoadOrCreate возвращает существующий прогресс или атомарно создает пустой.
// Конкурентные вызовы с одним participantID не должны создавать дубликаты:
// реализация обязана опираться на уникальный индекс по participant_id.
//
// Save сохраняет запись целиком и проверяет штамп версии: если в хранилище
// уже другая версия, возвращается apperrors.ErrVersionConflict и запись
// не изменяется.
type ProgressRepository interface {
	LoadOrCreate(ctx context.Context, participantID string) (*entity.HuntProgress, error)
	Save(ctx context.Context, progress *entity.HuntProgress) error
}

// ProgressResetter - опциональная возможность хранилища сбрасывать прогресс.
// Реализуется только локальным (dev) бэкендом; движок сам никогда не удаляет
// записи прогресса.
type ProgressResetter interface {
	Reset(ctx context.Context, participantID string) error
}

// ProgressLister - выборка всех записей прогресса для админ-экспорта
type ProgressLister interface {
	ListAll(ctx context.Context) ([]entity.HuntProgress, error)
}
