package dto

import (
	"time"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// AnswerDTO представляет сохраненный ответ участника
type AnswerDTO struct {
	Kind        string    `json:"kind"`         // text / image / audio / video
	Value       string    `json:"value"`        // текст ответа или ссылка на медиа
	SubmittedAt time.Time `json:"submitted_at"` // Время отправки
}

// LocationDTO представляет точку квеста глазами участника
type LocationDTO struct {
	ID          uint       `json:"id"`
	DisplayText string     `json:"display_text"`
	ClueText    string     `json:"clue_text,omitempty"` // Подсказка видна только на открытых точках
	IsUnlocked  bool       `json:"is_unlocked"`
	IsCompleted bool       `json:"is_completed"`
	UserAnswer  *AnswerDTO `json:"user_answer,omitempty"`
}

// ProgressResponse представляет полное состояние квеста участника
type ProgressResponse struct {
	Locations  []LocationDTO `json:"locations"`
	Completed  bool          `json:"completed"`
	Percentage int           `json:"percentage"`
	Degraded   bool          `json:"degraded"` // true - прогресс пишется в резервное хранилище
}

// SubmitAnswerResponse представляет результат проверки ответа
type SubmitAnswerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewLocationDTO преобразует представление точки в DTO.
// Подсказка закрытых точек не уходит клиенту.
func NewLocationDTO(view *entity.LocationView) LocationDTO {
	dto := LocationDTO{
		ID:          view.ID,
		DisplayText: view.DisplayText,
		IsUnlocked:  view.IsUnlocked,
		IsCompleted: view.IsCompleted,
	}
	if view.IsUnlocked {
		dto.ClueText = view.ClueText
	}
	if view.UserAnswer != nil {
		dto.UserAnswer = &AnswerDTO{
			Kind:        string(view.UserAnswer.Kind),
			Value:       view.UserAnswer.Value,
			SubmittedAt: view.UserAnswer.SubmittedAt,
		}
	}
	return dto
}

// NewProgressResponse собирает ответ по списку представлений точек
func NewProgressResponse(views []entity.LocationView, completed bool, percentage int, degraded bool) *ProgressResponse {
	locations := make([]LocationDTO, 0, len(views))
	for i := range views {
		locations = append(locations, NewLocationDTO(&views[i]))
	}
	return &ProgressResponse{
		Locations:  locations,
		Completed:  completed,
		Percentage: percentage,
		Degraded:   degraded,
	}
}
