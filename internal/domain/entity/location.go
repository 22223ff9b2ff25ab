package entity

import (
	"strings"
	"time"
)

// Location представляет одну точку квеста.
// ID задаёт плотную последовательность 1..N и одновременно порядок открытия точек.
type Location struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DisplayText   string    `gorm:"size:255;not null" json:"display_text"`
	ClueText      string    `gorm:"size:1000;not null" json:"clue_text"`
	CorrectAnswer *string   `gorm:"size:255" json:"-"` // Скрыто от клиента; nil = текстовая проверка невозможна
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Location) TableName() string {
	return "locations"
}

// HasTextAnswer возвращает true, если для точки задан текстовый правильный ответ
func (l *Location) HasTextAnswer() bool {
	return l.CorrectAnswer != nil && strings.TrimSpace(*l.CorrectAnswer) != ""
}

// Catalog - неизменяемый упорядоченный список точек квеста.
// Загружается один раз при старте и передаётся в каждый движок прогресса,
// поэтому несколько движков (тесты, параллельные участники) не мешают друг другу.
type Catalog struct {
	locations []Location
	byID      map[uint]*Location
}

// NewCatalog создает каталог из списка точек.
// Сортировать точки не нужно: порядок входного списка должен совпадать с порядком ID 1..N.
func NewCatalog(locations []Location) *Catalog {
	c := &Catalog{
		locations: make([]Location, len(locations)),
		byID:      make(map[uint]*Location, len(locations)),
	}
	copy(c.locations, locations)
	for i := range c.locations {
		c.byID[c.locations[i].ID] = &c.locations[i]
	}
	return c
}

// Size возвращает количество точек в квесте (N)
func (c *Catalog) Size() int {
	return len(c.locations)
}

// Locations возвращает копию списка точек в порядке прохождения
func (c *Catalog) Locations() []Location {
	out := make([]Location, len(c.locations))
	copy(out, c.locations)
	return out
}

// Get возвращает точку по ID или nil, если её нет в каталоге
func (c *Catalog) Get(id uint) *Location {
	return c.byID[id]
}

// LastID возвращает ID последней точки квеста (0 для пустого каталога)
func (c *Catalog) LastID() uint {
	if len(c.locations) == 0 {
		return 0
	}
	return c.locations[len(c.locations)-1].ID
}

// LocationView - производное состояние точки для конкретного участника.
// Никогда не сохраняется: вычисляется заново после каждой мутации прогресса.
type LocationView struct {
	ID          uint             `json:"id"`
	DisplayText string           `json:"display_text"`
	ClueText    string           `json:"clue_text"`
	IsUnlocked  bool             `json:"is_unlocked"`
	IsCompleted bool             `json:"is_completed"`
	UserAnswer  *SubmittedAnswer `json:"user_answer,omitempty"`
}
