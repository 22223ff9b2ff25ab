package huntmanager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// ============================================================================
// Тестовые заглушки
// ============================================================================

// memProgressStore - потокобезопасное хранилище прогресса в памяти.
// Проверяет штамп версии так же, как настоящие репозитории.
type memProgressStore struct {
	mu      sync.Mutex
	records map[string]*entity.HuntProgress
	saveErr error // если задана, Save возвращает эту ошибку
	nextID  uint
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{records: make(map[string]*entity.HuntProgress)}
}

func (s *memProgressStore) LoadOrCreate(ctx context.Context, participantID string) (*entity.HuntProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[participantID]; ok {
		return existing.Clone(), nil
	}

	s.nextID++
	progress := entity.NewHuntProgress(participantID)
	progress.ID = s.nextID
	s.records[participantID] = progress.Clone()
	return progress, nil
}

func (s *memProgressStore) Save(ctx context.Context, progress *entity.HuntProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}

	stored, ok := s.records[progress.ParticipantID]
	if !ok || stored.Version != progress.Version {
		return errors.New("version conflict")
	}

	updated := progress.Clone()
	updated.Version++
	s.records[progress.ParticipantID] = updated
	progress.Version++
	return nil
}

// recordingNotifier запоминает отправленные события
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) SendEventToUser(userID string, eventType string, data interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
	return nil
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

// rejectAllMediaValidator отклоняет любой медиа-ответ
type rejectAllMediaValidator struct{}

func (rejectAllMediaValidator) ValidateMedia(location *entity.Location, answer Answer) bool {
	return false
}

func strPtr(s string) *string { return &s }

// testCatalog - маршрут из семи точек: 1, 2, 4, 5, 7 с текстовой проверкой,
// 3 и 6 принимают только медиа-ответы
func testCatalog() *entity.Catalog {
	return entity.NewCatalog([]entity.Location{
		{ID: 1, DisplayText: "The Re-Reading Cafe", ClueText: "Order a cup and look for the shelf marked Read me again", CorrectAnswer: strPtr("re-reading cafe")},
		{ID: 2, DisplayText: "Clockwork Fountain", ClueText: "What runs but never walks?", CorrectAnswer: strPtr("fountain")},
		{ID: 3, DisplayText: "The Painted Stairs", ClueText: "Snap a photo of the full mural", CorrectAnswer: nil},
		{ID: 4, DisplayText: "Old Signal House", ClueText: "Count the windows facing the bay", CorrectAnswer: strPtr("seven windows")},
		{ID: 5, DisplayText: "Whispering Arch", ClueText: "Say the password only the stones can carry", CorrectAnswer: strPtr("echo")},
		{ID: 6, DisplayText: "Garden of Forgotten Tools", ClueText: "Record the wind chimes inside", CorrectAnswer: nil},
		{ID: 7, DisplayText: "Rooftop Terminus", ClueText: "Tell the attendant who sent you", CorrectAnswer: strPtr("the hunt")},
	})
}

func newTestEngine(t *testing.T, store *memProgressStore, notifier EventNotifier) *Engine {
	t.Helper()
	return NewEngine("p1", testCatalog(), &Dependencies{
		Store:    store,
		Notifier: notifier,
	})
}

func text(value string) Answer {
	return Answer{Kind: entity.AnswerKindText, Value: value}
}

// ============================================================================
// Сквозной сценарий
// ============================================================================

func TestEngine_FullHunt(t *testing.T) {
	// Arrange
	store := newMemProgressStore()
	notifier := &recordingNotifier{}
	engine := newTestEngine(t, store, notifier)
	ctx := context.Background()

	views, err := engine.LoadProgress(ctx)
	require.NoError(t, err)
	require.Len(t, views, 7)

	// Изначально открыта только первая точка
	assert.True(t, views[0].IsUnlocked)
	for _, view := range views[1:] {
		assert.False(t, view.IsUnlocked, "точка #%d не должна быть открыта", view.ID)
	}
	assert.Equal(t, 0, engine.CompletionPercentage())

	// Act: неверный ответ на первую точку
	result, err := engine.SubmitAnswer(ctx, 1, text("museum"))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgIncorrect, result.Message)
	assert.Equal(t, 0, engine.CompletionPercentage())

	// Правильный ответ: частичное совпадение без учета регистра
	result, err = engine.SubmitAnswer(ctx, 1, text("The RE-READING Cafe"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, MsgCorrect, result.Message)

	views = engine.GetLocations()
	assert.True(t, views[0].IsCompleted)
	assert.True(t, views[1].IsUnlocked)
	assert.False(t, views[2].IsUnlocked)

	// Проходим остальные точки по порядку
	steps := []struct {
		locationID uint
		answer     Answer
	}{
		{2, text("fountain")},
		{3, Answer{Kind: entity.AnswerKindImage, Value: "uploads/p1-loc3.jpg"}},
		{4, text("seven windows")},
		{5, text("echo")},
		{6, Answer{Kind: entity.AnswerKindAudio, Value: "uploads/p1-loc6.mp3"}},
	}
	for _, step := range steps {
		result, err = engine.SubmitAnswer(ctx, step.locationID, step.answer)
		require.NoError(t, err)
		require.True(t, result.Success, "точка #%d должна быть засчитана", step.locationID)
		assert.Equal(t, MsgCorrect, result.Message)
		assert.False(t, engine.IsHuntCompleted())
	}

	// 6 из 7 точек: 86%
	assert.Equal(t, 86, engine.CompletionPercentage())

	// Act: последняя точка
	result, err = engine.SubmitAnswer(ctx, 7, text("the hunt"))
	require.NoError(t, err)

	// Assert
	assert.True(t, result.Success)
	assert.Equal(t, MsgHuntCompleted, result.Message)
	assert.True(t, engine.IsHuntCompleted())
	assert.Equal(t, 100, engine.CompletionPercentage())

	progress := engine.Progress()
	require.NotNil(t, progress)
	assert.NotNil(t, progress.CompletedAt)
	assert.Equal(t, entity.UintArray{1, 2, 3, 4, 5, 6, 7}, progress.CompletedLocations)

	// События: по одному на точку плюс завершение квеста
	events := notifier.Events()
	assert.Equal(t, 7, countOf(events, "hunt:location_completed"))
	assert.Equal(t, 1, countOf(events, "hunt:completed"))
}

func countOf(events []string, eventType string) int {
	n := 0
	for _, e := range events {
		if e == eventType {
			n++
		}
	}
	return n
}

// ============================================================================
// Контракт SubmitAnswer
// ============================================================================

func TestEngine_SubmitBeforeLoadReturnsError(t *testing.T) {
	engine := newTestEngine(t, newMemProgressStore(), nil)

	result, err := engine.SubmitAnswer(context.Background(), 1, text("re-reading cafe"))

	require.ErrorIs(t, err, ErrNotInitialized)
	assert.Nil(t, result)
}

func TestEngine_UnknownLocationDoesNotMutate(t *testing.T) {
	store := newMemProgressStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	result, err := engine.SubmitAnswer(ctx, 99, text("anything"))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgLocationNotFound, result.Message)

	progress := engine.Progress()
	assert.Empty(t, progress.CompletedLocations)
	assert.Equal(t, uint(1), progress.CurrentLocationID)
}

func TestEngine_LockedLocationRejected(t *testing.T) {
	store := newMemProgressStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	// Точка 3 закрыта, пока не завершена точка 2
	result, err := engine.SubmitAnswer(ctx, 3, Answer{Kind: entity.AnswerKindImage, Value: "uploads/x.jpg"})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgLocationLocked, result.Message)
	assert.Empty(t, engine.Progress().CompletedLocations)
}

func TestEngine_DuplicateSubmissionIsIdempotent(t *testing.T) {
	store := newMemProgressStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	result, err := engine.SubmitAnswer(ctx, 1, text("re-reading cafe"))
	require.NoError(t, err)
	require.True(t, result.Success)
	versionAfterFirst := engine.Progress().Version

	// Act: повторная отправка, в том числе с неверным ответом
	result, err = engine.SubmitAnswer(ctx, 1, text("completely wrong"))

	// Assert: успех без мутации состояния
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, MsgCorrect, result.Message)
	progress := engine.Progress()
	assert.Equal(t, entity.UintArray{1}, progress.CompletedLocations)
	assert.Equal(t, versionAfterFirst, progress.Version)
	assert.Equal(t, "re-reading cafe", progress.Answers[1].Value)
}

func TestEngine_DuplicateFinalSubmissionKeepsCompletionMessage(t *testing.T) {
	store := newMemProgressStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	answers := []Answer{
		text("re-reading cafe"),
		text("fountain"),
		{Kind: entity.AnswerKindImage, Value: "uploads/3.jpg"},
		text("seven windows"),
		text("echo"),
		{Kind: entity.AnswerKindVideo, Value: "uploads/6.mp4"},
		text("the hunt"),
	}
	for i, answer := range answers {
		result, err := engine.SubmitAnswer(ctx, uint(i+1), answer)
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	result, err := engine.SubmitAnswer(ctx, 7, text("the hunt"))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, MsgHuntCompleted, result.Message)
	assert.Equal(t, 100, engine.CompletionPercentage())
}

func TestEngine_PersistFailureDoesNotAdvance(t *testing.T) {
	store := newMemProgressStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	store.mu.Lock()
	store.saveErr = errors.New("connection reset")
	store.mu.Unlock()

	// Act: правильный ответ, но сохранение падает
	result, err := engine.SubmitAnswer(ctx, 1, text("re-reading cafe"))

	// Assert: структурированный отказ, снимок не подменен
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgPersistFailure, result.Message)
	assert.Empty(t, engine.Progress().CompletedLocations)
	assert.Equal(t, 0, engine.CompletionPercentage())

	// Хранилище восстановилось: повторная отправка проходит
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()

	result, err = engine.SubmitAnswer(ctx, 1, text("re-reading cafe"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, entity.UintArray{1}, engine.Progress().CompletedLocations)
}

func TestEngine_TextAnswerOnMediaOnlyLocationRejected(t *testing.T) {
	store := newMemProgressStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	for _, answer := range []Answer{text("re-reading cafe"), text("fountain")} {
		result, err := engine.SubmitAnswer(ctx, uint(len(engine.Progress().CompletedLocations)+1), answer)
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	// Точка 3 без текстового ответа: текст всегда неверен
	result, err := engine.SubmitAnswer(ctx, 3, text("painted stairs"))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgIncorrect, result.Message)
}

func TestEngine_MediaValidatorIsPluggable(t *testing.T) {
	store := newMemProgressStore()
	engine := NewEngine("p1", testCatalog(), &Dependencies{
		Store: store,
		Media: rejectAllMediaValidator{},
	})
	ctx := context.Background()

	_, err := engine.LoadProgress(ctx)
	require.NoError(t, err)

	for _, answer := range []Answer{text("re-reading cafe"), text("fountain")} {
		result, err := engine.SubmitAnswer(ctx, uint(len(engine.Progress().CompletedLocations)+1), answer)
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	result, err := engine.SubmitAnswer(ctx, 3, Answer{Kind: entity.AnswerKindImage, Value: "uploads/x.jpg"})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgIncorrect, result.Message)
}

// ============================================================================
// Загрузка прогресса
// ============================================================================

func TestEngine_ReloadRestoresState(t *testing.T) {
	store := newMemProgressStore()
	ctx := context.Background()

	first := newTestEngine(t, store, nil)
	_, err := first.LoadProgress(ctx)
	require.NoError(t, err)

	for _, step := range []struct {
		id     uint
		answer Answer
	}{
		{1, text("re-reading cafe")},
		{2, text("fountain")},
	} {
		result, err := first.SubmitAnswer(ctx, step.id, step.answer)
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	// Новая сессия того же участника видит сохраненное состояние
	second := newTestEngine(t, store, nil)
	views, err := second.LoadProgress(ctx)
	require.NoError(t, err)

	assert.True(t, views[0].IsCompleted)
	assert.True(t, views[1].IsCompleted)
	assert.True(t, views[2].IsUnlocked)
	assert.False(t, views[3].IsUnlocked)
	assert.Equal(t, 29, second.CompletionPercentage())
	require.NotNil(t, views[0].UserAnswer)
	assert.Equal(t, "re-reading cafe", views[0].UserAnswer.Value)
}

func TestEngine_LoadFailurePropagates(t *testing.T) {
	engine := NewEngine("p1", testCatalog(), &Dependencies{Store: failingStore{}})

	views, err := engine.LoadProgress(context.Background())

	require.Error(t, err)
	assert.Nil(t, views)
	assert.Nil(t, engine.GetLocations())
}

type failingStore struct{}

func (failingStore) LoadOrCreate(ctx context.Context, participantID string) (*entity.HuntProgress, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Save(ctx context.Context, progress *entity.HuntProgress) error {
	return errors.New("store unavailable")
}
