package huntmanager

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// Engine - движок прогресса квеста для одного участника.
//
// Экземпляр создается на сессию участника и владеет его записью прогресса
// монопольно: все мутации проходят через SubmitAnswer под внутренним мьютексом
// (очередь одного писателя). Каталог точек неизменяем и разделяется между
// движками безопасно.
type Engine struct {
	participantID string
	catalog       *entity.Catalog
	deps          *Dependencies

	mu sync.Mutex
	// progress - авторитетный снимок: подменяется только после успешного
	// сохранения staged-копии
	progress *entity.HuntProgress
	// views - последний вычисленный список состояний точек
	views []entity.LocationView
}

// NewEngine создает движок прогресса для участника
func NewEngine(participantID string, catalog *entity.Catalog, deps *Dependencies) *Engine {
	if deps.Media == nil {
		deps.Media = AcceptAllMediaValidator{}
	}
	return &Engine{
		participantID: participantID,
		catalog:       catalog,
		deps:          deps,
	}
}

// LoadProgress загружает (или создает) прогресс участника и возвращает
// производное состояние каждой точки каталога в порядке прохождения.
// Это единственное место, где вычисляется состояние открытия точек;
// после каждой мутации список пересчитывается заново.
func (e *Engine) LoadProgress(ctx context.Context) ([]entity.LocationView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	progress, err := e.deps.Store.LoadOrCreate(ctx, e.participantID)
	if err != nil {
		log.Printf("[HuntEngine] Ошибка загрузки прогресса участника %s: %v", e.participantID, err)
		return nil, err
	}

	e.progress = progress
	e.views = e.deriveViews(progress)
	return copyViews(e.views), nil
}

// SubmitAnswer проверяет ответ на точку и при успехе продвигает прогресс.
//
// Все бизнес-исходы возвращаются в SubmitResult. Ошибка возвращается только
// при нарушении контракта вызова (движок не инициализирован LoadProgress).
func (e *Engine) SubmitAnswer(ctx context.Context, locationID uint, answer Answer) (*SubmitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.progress == nil {
		return nil, ErrNotInitialized
	}

	location := e.catalog.Get(locationID)
	if location == nil {
		return &SubmitResult{Success: false, Message: MsgLocationNotFound}, nil
	}

	// Идемпотентность: повторная отправка на уже завершённую точку не
	// мутирует состояние (дубликат ID исказил бы процент завершения)
	if e.progress.HasCompletedLocation(locationID) {
		message := MsgCorrect
		if e.progress.IsCompleted() && locationID == e.catalog.LastID() {
			message = MsgHuntCompleted
		}
		return &SubmitResult{Success: true, Message: message}, nil
	}

	// Закрытую точку нельзя завершить: иначе нарушится префикс-инвариант
	// завершённых точек
	if !e.isUnlocked(e.progress, locationID) {
		return &SubmitResult{Success: false, Message: MsgLocationLocked}, nil
	}

	if !validateAnswer(location, answer, e.deps.Media) {
		return &SubmitResult{Success: false, Message: MsgIncorrect}, nil
	}

	// Мутация выполняется на копии; авторитетный снимок подменяется только
	// после успешной записи в хранилище
	now := time.Now()
	staged := e.progress.Clone()
	staged.CompletedLocations = append(staged.CompletedLocations, locationID)
	staged.Answers[locationID] = entity.SubmittedAnswer{
		Kind:        answer.Kind,
		Value:       answer.Value,
		SubmittedAt: now,
	}

	nextID := locationID + 1
	if nextID > e.catalog.LastID() {
		nextID = e.catalog.LastID()
	}
	staged.CurrentLocationID = nextID

	isFinal := len(staged.CompletedLocations) == e.catalog.Size()
	if isFinal {
		staged.CompletedAt = &now
	}

	if err := e.deps.Store.Save(ctx, staged); err != nil {
		log.Printf("[HuntEngine] Ошибка сохранения прогресса участника %s (точка #%d): %v",
			e.participantID, locationID, err)
		return &SubmitResult{Success: false, Message: MsgPersistFailure}, nil
	}

	e.progress = staged
	e.views = e.deriveViews(staged)

	e.notifyCompleted(locationID, isFinal)

	if isFinal {
		log.Printf("[HuntEngine] Участник %s завершил квест", e.participantID)
		return &SubmitResult{Success: true, Message: MsgHuntCompleted}, nil
	}
	return &SubmitResult{Success: true, Message: MsgCorrect}, nil
}

// GetLocations возвращает последний вычисленный список состояний точек
// без пересчёта. До LoadProgress возвращает nil.
func (e *Engine) GetLocations() []entity.LocationView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyViews(e.views)
}

// IsHuntCompleted возвращает true, если у прогресса установлен CompletedAt
func (e *Engine) IsHuntCompleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress != nil && e.progress.IsCompleted()
}

// CompletionPercentage возвращает округлённый процент завершения квеста.
// Монотонно не убывает в течение сессии и равен 100 тогда и только тогда,
// когда квест завершён.
func (e *Engine) CompletionPercentage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.progress == nil || e.catalog.Size() == 0 {
		return 0
	}
	return int(math.Round(100 * float64(len(e.progress.CompletedLocations)) / float64(e.catalog.Size())))
}

// Progress возвращает копию текущего снимка прогресса (nil до LoadProgress)
func (e *Engine) Progress() *entity.HuntProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.progress == nil {
		return nil
	}
	return e.progress.Clone()
}

// isUnlocked: точка открыта, если она первая либо завершена предыдущая
func (e *Engine) isUnlocked(progress *entity.HuntProgress, locationID uint) bool {
	return locationID == 1 || progress.HasCompletedLocation(locationID-1)
}

func (e *Engine) deriveViews(progress *entity.HuntProgress) []entity.LocationView {
	locations := e.catalog.Locations()
	views := make([]entity.LocationView, 0, len(locations))
	for _, loc := range locations {
		view := entity.LocationView{
			ID:          loc.ID,
			DisplayText: loc.DisplayText,
			ClueText:    loc.ClueText,
			IsUnlocked:  e.isUnlocked(progress, loc.ID),
			IsCompleted: progress.HasCompletedLocation(loc.ID),
		}
		if answer, ok := progress.Answers[loc.ID]; ok {
			a := answer
			view.UserAnswer = &a
		}
		views = append(views, view)
	}
	return views
}

// notifyCompleted отправляет события прогресса. Ошибки отправки только
// логируются: ответ уже сохранён, и результат участнику вернётся в любом случае.
func (e *Engine) notifyCompleted(locationID uint, isFinal bool) {
	if e.deps.Notifier == nil {
		return
	}

	event := map[string]interface{}{
		"location_id":           locationID,
		"completion_percentage": int(math.Round(100 * float64(len(e.progress.CompletedLocations)) / float64(e.catalog.Size()))),
	}
	if err := e.deps.Notifier.SendEventToUser(e.participantID, "hunt:location_completed", event); err != nil {
		log.Printf("[HuntEngine] Ошибка отправки события о завершении точки #%d участнику %s: %v",
			locationID, e.participantID, err)
	}

	if isFinal {
		if err := e.deps.Notifier.SendEventToUser(e.participantID, "hunt:completed", map[string]interface{}{
			"completed_at": e.progress.CompletedAt,
		}); err != nil {
			log.Printf("[HuntEngine] Ошибка отправки события о завершении квеста участнику %s: %v",
				e.participantID, err)
		}
	}
}

func copyViews(views []entity.LocationView) []entity.LocationView {
	if views == nil {
		return nil
	}
	out := make([]entity.LocationView, len(views))
	copy(out, views)
	return out
}
