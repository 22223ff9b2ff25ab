package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/domain/repository"
	"github.com/yourusername/hunt-api/internal/service/huntmanager"
)

// HuntService управляет движками прогресса: один движок на сессию участника.
//
// Репозитории прогресса разделяются между сессиями, но fallback-обертка
// создается для каждой сессии отдельно: переключение на резервное хранилище
// одностороннее и действует только до конца сессии участника.
type HuntService struct {
	catalog      *entity.Catalog
	primaryStore repository.ProgressRepository
	localStore   repository.ProgressRepository
	media        huntmanager.MediaValidator
	notifier     huntmanager.EventNotifier
	cacheRepo    repository.CacheRepository
	userRepo     repository.UserRepository
	emailService EmailService
	allowReset   bool

	mu      sync.Mutex
	engines map[string]*engineSession
}

type engineSession struct {
	engine *huntmanager.Engine
	store  *huntmanager.FallbackProgressStore
}

// NewHuntService создает сервис прогресса квеста
func NewHuntService(
	catalog *entity.Catalog,
	primaryStore repository.ProgressRepository,
	localStore repository.ProgressRepository,
	media huntmanager.MediaValidator,
	notifier huntmanager.EventNotifier,
	cacheRepo repository.CacheRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	allowReset bool,
) *HuntService {
	return &HuntService{
		catalog:      catalog,
		primaryStore: primaryStore,
		localStore:   localStore,
		media:        media,
		notifier:     notifier,
		cacheRepo:    cacheRepo,
		userRepo:     userRepo,
		emailService: emailService,
		allowReset:   allowReset,
		engines:      make(map[string]*engineSession),
	}
}

// LoadProgress загружает прогресс участника и возвращает состояние всех точек
func (s *HuntService) LoadProgress(ctx context.Context, participantID string) ([]entity.LocationView, error) {
	session := s.sessionFor(participantID)
	return session.engine.LoadProgress(ctx)
}

// SubmitAnswer передает ответ в движок участника.
// При завершении квеста отправляет письмо-поздравление (best-effort).
func (s *HuntService) SubmitAnswer(ctx context.Context, participantID string, locationID uint, answer huntmanager.Answer) (*huntmanager.SubmitResult, error) {
	session := s.sessionFor(participantID)

	wasCompleted := session.engine.IsHuntCompleted()
	result, err := session.engine.SubmitAnswer(ctx, locationID, answer)
	if err != nil {
		return nil, err
	}

	if result.Success && !wasCompleted && session.engine.IsHuntCompleted() {
		s.markCompleted(participantID)
		go s.sendCompletionEmail(participantID)
	}

	return result, nil
}

// GetLocations возвращает последний вычисленный список состояний точек
func (s *HuntService) GetLocations(participantID string) []entity.LocationView {
	return s.sessionFor(participantID).engine.GetLocations()
}

// IsHuntCompleted возвращает true, если участник завершил квест
func (s *HuntService) IsHuntCompleted(participantID string) bool {
	return s.sessionFor(participantID).engine.IsHuntCompleted()
}

// CompletionPercentage возвращает процент завершения квеста участником
func (s *HuntService) CompletionPercentage(participantID string) int {
	return s.sessionFor(participantID).engine.CompletionPercentage()
}

// Degraded возвращает true, если сессия участника работает на резервном хранилище
func (s *HuntService) Degraded(participantID string) bool {
	return s.sessionFor(participantID).store.Degraded()
}

// ResetProgress сбрасывает прогресс участника.
// Работает только когда включено конфигурацией и локальный бэкенд
// поддерживает сброс (движок сам прогресс никогда не удаляет).
func (s *HuntService) ResetProgress(ctx context.Context, participantID string) error {
	if !s.allowReset {
		return ErrResetNotAllowed
	}
	resetter, ok := s.localStore.(repository.ProgressResetter)
	if !ok {
		return ErrResetNotAllowed
	}
	if err := resetter.Reset(ctx, participantID); err != nil {
		return err
	}
	s.ReleaseSession(participantID)
	return nil
}

// ReleaseSession удаляет движок участника из реестра (например, при выходе).
// Следующая загрузка прогресса создаст свежую сессию с основным хранилищем.
func (s *HuntService) ReleaseSession(participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.engines, participantID)
}

// sessionFor возвращает существующую сессию участника или создает новую
func (s *HuntService) sessionFor(participantID string) *engineSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.engines[participantID]; ok {
		return session
	}

	store := huntmanager.NewFallbackProgressStore(s.primaryStore, s.localStore, func(reason error) {
		s.onDegrade(participantID, reason)
	})
	engine := huntmanager.NewEngine(participantID, s.catalog, &huntmanager.Dependencies{
		Store:    store,
		Media:    s.media,
		Notifier: s.notifier,
	})

	session := &engineSession{engine: engine, store: store}
	s.engines[participantID] = session
	return session
}

// onDegrade делает переключение на резервное хранилище наблюдаемым:
// событие участнику и флаг в кеше для диагностики.
func (s *HuntService) onDegrade(participantID string, reason error) {
	log.Printf("[HuntService] Сессия участника %s переведена в деградированный режим: %v", participantID, reason)

	if s.notifier != nil {
		if err := s.notifier.SendEventToUser(participantID, "hunt:degraded", map[string]interface{}{
			"message": "Progress is being saved locally and will not sync until your next session.",
		}); err != nil {
			log.Printf("[HuntService] Ошибка отправки события hunt:degraded участнику %s: %v", participantID, err)
		}
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Set("hunt:degraded:"+participantID, "1", 24*time.Hour); err != nil {
			log.Printf("[HuntService] WARNING: Не удалось записать флаг деградации в кеш для %s: %v", participantID, err)
		}
	}
}

// markCompleted ставит флаг завершения в кеш (для быстрых проверок без БД)
func (s *HuntService) markCompleted(participantID string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Set("hunt:completed:"+participantID, "1", 0); err != nil {
		log.Printf("[HuntService] WARNING: Не удалось записать флаг завершения в кеш для %s: %v", participantID, err)
	}
}

// sendCompletionEmail отправляет письмо-поздравление. Ошибки только логируются:
// результат участнику уже возвращен, письмо не должно его блокировать.
func (s *HuntService) sendCompletionEmail(participantID string) {
	if s.emailService == nil || s.userRepo == nil {
		return
	}

	user, err := s.lookupUser(participantID)
	if err != nil {
		log.Printf("[HuntService] Не удалось найти участника %s для письма о завершении: %v", participantID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.emailService.SendHuntCompleted(ctx, user.Email, user.Username); err != nil {
		log.Printf("[HuntService] Ошибка отправки письма о завершении квеста участнику %s: %v", participantID, err)
	} else {
		log.Printf("[HuntService] Письмо о завершении квеста отправлено участнику %s", participantID)
	}
}

func (s *HuntService) lookupUser(participantID string) (*entity.User, error) {
	id, err := parseParticipantID(participantID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(id)
}

func parseParticipantID(participantID string) (uint, error) {
	id, err := strconv.ParseUint(participantID, 10, 32)
	if err != nil {
		return 0, errors.New("participant id is not numeric: " + participantID)
	}
	return uint(id), nil
}
