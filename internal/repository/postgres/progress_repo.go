package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
)

// ProgressRepo реализует repository.ProgressRepository поверх PostgreSQL
type ProgressRepo struct {
	db *gorm.DB
}

// NewProgressRepo создает новый репозиторий прогресса
func NewProgressRepo(db *gorm.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// LoadOrCreate возвращает прогресс участника, создавая пустую запись при первом обращении.
// Уникальный индекс по participant_id гарантирует отсутствие дубликатов при
// конкурентных вызовах: проигравший insert получает unique_violation и перечитывает запись.
func (r *ProgressRepo) LoadOrCreate(ctx context.Context, participantID string) (*entity.HuntProgress, error) {
	progress, err := r.get(ctx, participantID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	fresh := entity.NewHuntProgress(participantID)
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" || errors.Is(err, gorm.ErrDuplicatedKey) {
			// Запись успела появиться параллельно - перечитываем её
			log.Printf("[ProgressRepo] Прогресс участника %s уже создан конкурентным запросом, перечитываем", participantID)
			return r.get(ctx, participantID)
		}
		return nil, err
	}
	return fresh, nil
}

// Save сохраняет запись прогресса целиком с проверкой штампа версии.
// Несовпадение версии означает конкурентную запись: возвращаем
// apperrors.ErrVersionConflict и ничего не меняем.
func (r *ProgressRepo) Save(ctx context.Context, progress *entity.HuntProgress) error {
	res := r.db.WithContext(ctx).Model(&entity.HuntProgress{}).
		Where("participant_id = ? AND version = ?", progress.ParticipantID, progress.Version).
		Updates(map[string]interface{}{
			"current_location_id": progress.CurrentLocationID,
			"completed_locations": progress.CompletedLocations,
			"answers":             progress.Answers,
			"completed_at":        progress.CompletedAt,
			"version":             progress.Version + 1,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("[ProgressRepo] Конфликт версий при сохранении прогресса участника %s (version=%d)",
			progress.ParticipantID, progress.Version)
		return apperrors.ErrVersionConflict
	}
	progress.Version++
	return nil
}

// ListAll возвращает все записи прогресса (для админ-экспорта)
func (r *ProgressRepo) ListAll(ctx context.Context) ([]entity.HuntProgress, error) {
	var progresses []entity.HuntProgress
	err := r.db.WithContext(ctx).Order("participant_id").Find(&progresses).Error
	return progresses, err
}

func (r *ProgressRepo) get(ctx context.Context, participantID string) (*entity.HuntProgress, error) {
	var progress entity.HuntProgress
	err := r.db.WithContext(ctx).Where("participant_id = ?", participantID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}
