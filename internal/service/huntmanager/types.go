// Package huntmanager содержит движок прогресса квеста: последовательное
// открытие точек, проверку ответов и вычисление состояния завершения.
package huntmanager

import (
	"errors"

	"github.com/yourusername/hunt-api/internal/domain/repository"
)

// Сообщения, возвращаемые участнику. Тексты фиксированы контрактом
// с мобильным клиентом - не менять без синхронизации с фронтендом.
const (
	MsgLocationNotFound = "Location not found"
	MsgIncorrect        = "Not quite right. Try again!"
	MsgCorrect          = "Correct! Next location unlocked!"
	MsgHuntCompleted    = "Congratulations! You completed the hunt!"
	MsgLocationLocked   = "Complete the previous location first!"
	MsgPersistFailure   = "Something went wrong. Please try again."
)

// ErrNotInitialized возвращается при вызове SubmitAnswer до LoadProgress.
// Это нарушение контракта вызывающей стороны, а не бизнес-исход:
// в отличие от остальных случаев, оно не оборачивается в SubmitResult.
var ErrNotInitialized = errors.New("hunt engine is not initialized: call LoadProgress first")

// Answer - ответ участника, переданный на проверку
type Answer struct {
	// Kind: entity.AnswerKindText / Image / Audio / Video
	Kind string
	// Value: текст ответа либо непрозрачная ссылка на загруженный медиафайл
	Value string
}

// SubmitResult - структурированный исход отправки ответа.
// Все ожидаемые бизнес-исходы (неверный ответ, неизвестная точка, сбой
// сохранения) возвращаются значением, никогда паникой.
type SubmitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EventNotifier отправляет событие конкретному участнику.
// Реализуется websocket-менеджером; nil-значение допустимо (события не шлются).
type EventNotifier interface {
	SendEventToUser(userID string, eventType string, data interface{}) error
}

// Dependencies - зависимости движка прогресса
type Dependencies struct {
	// Store - хранилище прогресса (постоянное, локальное или fallback-обертка)
	Store repository.ProgressRepository

	// Media - валидатор медиа-ответов
	Media MediaValidator

	// Notifier - опциональная отправка событий прогресса (может быть nil)
	Notifier EventNotifier
}
