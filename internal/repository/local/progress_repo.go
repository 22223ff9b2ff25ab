// Package local реализует резервное хранилище прогресса в локальном sqlite-файле.
// Используется в разработке и как fallback, когда основное хранилище недоступно.
package local

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	apperrors "github.com/yourusername/hunt-api/internal/pkg/errors"
)

// ProgressRepo реализует repository.ProgressRepository поверх локального sqlite
type ProgressRepo struct {
	db *gorm.DB
}

// NewProgressRepo создает локальный репозиторий прогресса.
// Схема создается на месте: для локального файла SQL-миграции не применяются.
func NewProgressRepo(db *gorm.DB) (*ProgressRepo, error) {
	if db == nil {
		return nil, errors.New("sqlite db cannot be nil for local ProgressRepo")
	}
	if err := db.AutoMigrate(&entity.HuntProgress{}); err != nil {
		return nil, err
	}
	return &ProgressRepo{db: db}, nil
}

// LoadOrCreate возвращает прогресс участника, создавая пустую запись при первом обращении
func (r *ProgressRepo) LoadOrCreate(ctx context.Context, participantID string) (*entity.HuntProgress, error) {
	var progress entity.HuntProgress
	err := r.db.WithContext(ctx).Where("participant_id = ?", participantID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := entity.NewHuntProgress(participantID)
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		// Уникальный индекс мог сработать при конкурентном создании
		var existing entity.HuntProgress
		if errRead := r.db.WithContext(ctx).Where("participant_id = ?", participantID).First(&existing).Error; errRead == nil {
			return &existing, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Save сохраняет запись прогресса целиком с проверкой штампа версии
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
		return apperrors.ErrVersionConflict
	}
	progress.Version++
	return nil
}

// ListAll возвращает все записи прогресса
func (r *ProgressRepo) ListAll(ctx context.Context) ([]entity.HuntProgress, error) {
	var progresses []entity.HuntProgress
	err := r.db.WithContext(ctx).Order("participant_id").Find(&progresses).Error
	return progresses, err
}

// Reset удаляет прогресс участника. Доступно только в локальном бэкенде:
// движок прогресса записи никогда не удаляет.
func (r *ProgressRepo) Reset(ctx context.Context, participantID string) error {
	res := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Delete(&entity.HuntProgress{})
	if res.Error != nil {
		return res.Error
	}
	log.Printf("[LocalProgressRepo] Сброшен прогресс участника %s (удалено записей: %d)", participantID, res.RowsAffected)
	return nil
}
