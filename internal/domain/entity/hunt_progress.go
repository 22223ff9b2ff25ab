package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Виды ответов участника
const (
	AnswerKindText  = "text"
	AnswerKindImage = "image"
	AnswerKindAudio = "audio"
	AnswerKindVideo = "video"
)

// SubmittedAnswer представляет принятый ответ участника на точку квеста.
// Для kind=text Value содержит сам текст, для медиа-ответов - непрозрачную
// ссылку на загруженный файл (содержимое движок не инспектирует).
type SubmittedAnswer struct {
	Kind        string    `json:"kind"`
	Value       string    `json:"value"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// IsText возвращает true для текстового ответа
func (a *SubmittedAnswer) IsText() bool {
	return a.Kind == AnswerKindText
}

// IsMedia возвращает true для медиа-ответа (image/audio/video)
func (a *SubmittedAnswer) IsMedia() bool {
	return a.Kind == AnswerKindImage || a.Kind == AnswerKindAudio || a.Kind == AnswerKindVideo
}

// jsonbBytes приводит сырое значение JSONB-колонки к []byte
func jsonbBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}
}

// UintArray - пользовательский тип для хранения массива ID в JSONB
type UintArray []uint

// Scan реализует интерфейс sql.Scanner для UintArray.
// Принимает []byte (postgres jsonb) и string (sqlite в локальном бэкенде).
func (o *UintArray) Scan(value interface{}) error {
	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*o = UintArray{}
		return nil
	}
	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для UintArray
func (o UintArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Contains проверяет наличие ID в массиве
func (o UintArray) Contains(id uint) bool {
	for _, v := range o {
		if v == id {
			return true
		}
	}
	return false
}

// AnswerMap - пользовательский тип для хранения ответов участника в JSONB.
// Ключ - ID точки квеста.
type AnswerMap map[uint]SubmittedAnswer

// Scan реализует интерфейс sql.Scanner для AnswerMap
func (m *AnswerMap) Scan(value interface{}) error {
	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*m = AnswerMap{}
		return nil
	}

	// JSON-ключи всегда строки, поэтому анмаршалим во временную карту
	raw := map[string]SubmittedAnswer{}
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return err
	}
	out := make(AnswerMap, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return errors.New("invalid location id key in answers JSONB: " + k)
		}
		out[uint(id)] = v
	}
	*m = out
	return nil
}

// Value реализует интерфейс driver.Valuer для AnswerMap
func (m AnswerMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	raw := make(map[string]SubmittedAnswer, len(m))
	for k, v := range m {
		raw[strconv.FormatUint(uint64(k), 10)] = v
	}
	return json.Marshal(raw)
}

// HuntProgress представляет прогресс участника по квесту.
// Ровно одна запись на участника; создается при первой загрузке прогресса.
type HuntProgress struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ParticipantID      string     `gorm:"size:100;not null;uniqueIndex" json:"participant_id"`
	CurrentLocationID  uint       `gorm:"not null;default:1" json:"current_location_id"`
	CompletedLocations UintArray  `gorm:"type:jsonb;not null;default:'[]'" json:"completed_locations"`
	Answers            AnswerMap  `gorm:"type:jsonb;not null;default:'{}'" json:"answers"`
	StartedAt          time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	// Version - штамп оптимистичной конкуренции: Save увеличивает его и
	// отклоняет запись, если в хранилище уже другая версия.
	Version   int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (HuntProgress) TableName() string {
	return "hunt_progresses"
}

// NewHuntProgress создает пустой прогресс для участника
func NewHuntProgress(participantID string) *HuntProgress {
	return &HuntProgress{
		ParticipantID:      participantID,
		CurrentLocationID:  1,
		CompletedLocations: UintArray{},
		Answers:            AnswerMap{},
		StartedAt:          time.Now(),
	}
}

// IsCompleted возвращает true, если квест завершён (установлен CompletedAt)
func (p *HuntProgress) IsCompleted() bool {
	return p.CompletedAt != nil
}

// HasCompletedLocation проверяет, завершена ли точка
func (p *HuntProgress) HasCompletedLocation(locationID uint) bool {
	return p.CompletedLocations.Contains(locationID)
}

// Clone возвращает глубокую копию прогресса.
// Движок мутирует копию и подменяет авторитетный снимок только после
// успешного сохранения, чтобы ошибка записи не оставила рассинхронизированное
// состояние в памяти.
func (p *HuntProgress) Clone() *HuntProgress {
	cp := *p
	cp.CompletedLocations = make(UintArray, len(p.CompletedLocations))
	copy(cp.CompletedLocations, p.CompletedLocations)
	cp.Answers = make(AnswerMap, len(p.Answers))
	for k, v := range p.Answers {
		cp.Answers[k] = v
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
