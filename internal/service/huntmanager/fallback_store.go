package huntmanager

import (
	"context"
	"log"
	"sync"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/domain/repository"
)

// DegradeFunc вызывается однократно при переключении на резервное хранилище
type DegradeFunc func(reason error)

// FallbackProgressStore - обертка над двумя хранилищами прогресса.
//
// Пока основное хранилище отвечает, работает оно. Ошибка основного хранилища
// при загрузке переключает обертку на резервное до конца сессии: решение
// одностороннее, возврата на основное хранилище нет. Переключение - явное
// наблюдаемое событие (колбэк + лог), а не скрытый внутренний флаг.
//
// Ошибка при сохранении на резервное хранилище НЕ переключает: она
// возвращается движку и превращается в структурированный отказ участнику.
type FallbackProgressStore struct {
	primary  repository.ProgressRepository
	fallback repository.ProgressRepository

	mu        sync.Mutex
	degraded  bool
	onDegrade DegradeFunc
}

// NewFallbackProgressStore создает обертку с явным выбором бэкендов.
// onDegrade может быть nil.
func NewFallbackProgressStore(primary, fallback repository.ProgressRepository, onDegrade DegradeFunc) *FallbackProgressStore {
	return &FallbackProgressStore{
		primary:   primary,
		fallback:  fallback,
		onDegrade: onDegrade,
	}
}

// LoadOrCreate загружает прогресс из активного бэкенда.
// Ошибка основного бэкенда переключает сессию на резервный.
func (s *FallbackProgressStore) LoadOrCreate(ctx context.Context, participantID string) (*entity.HuntProgress, error) {
	if s.Degraded() {
		return s.fallback.LoadOrCreate(ctx, participantID)
	}

	progress, err := s.primary.LoadOrCreate(ctx, participantID)
	if err == nil {
		return progress, nil
	}

	s.degrade(err)
	return s.fallback.LoadOrCreate(ctx, participantID)
}

// Save сохраняет прогресс в активный бэкенд
func (s *FallbackProgressStore) Save(ctx context.Context, progress *entity.HuntProgress) error {
	if s.Degraded() {
		return s.fallback.Save(ctx, progress)
	}
	return s.primary.Save(ctx, progress)
}

// Degraded возвращает true, если сессия переключена на резервное хранилище
func (s *FallbackProgressStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *FallbackProgressStore) degrade(reason error) {
	s.mu.Lock()
	if s.degraded {
		s.mu.Unlock()
		return
	}
	s.degraded = true
	callback := s.onDegrade
	s.mu.Unlock()

	log.Printf("[FallbackProgressStore] Основное хранилище недоступно, переключение на резервное до конца сессии: %v", reason)
	if callback != nil {
		callback(reason)
	}
}
