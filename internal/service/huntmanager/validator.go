package huntmanager

import (
	"strings"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

// MediaValidator проверяет медиа-ответ (image/audio/video) на точку квеста.
// Движок содержимое файла не инспектирует: проверка - отдельная подключаемая
// возможность.
type MediaValidator interface {
	ValidateMedia(location *entity.Location, answer Answer) bool
}

// AcceptAllMediaValidator принимает любой медиа-ответ.
// Это осознанная заглушка до появления настоящей проверки медиафайлов:
// контракт с клиентом сейчас "любой загруженный файл засчитывается".
type AcceptAllMediaValidator struct{}

// ValidateMedia всегда возвращает true
func (AcceptAllMediaValidator) ValidateMedia(location *entity.Location, answer Answer) bool {
	return true
}

// textAnswerMatches сравнивает текстовый ответ с правильным.
// Обе строки приводятся к нижнему регистру и обрезаются; совпадением
// считается вхождение любой из строк в другую как подстроки.
// Двустороннее вхождение - намеренно мягкая проверка, зафиксированная
// контрактом с клиентом: не ужесточать без согласования с продуктом.
func textAnswerMatches(correctAnswer, submitted string) bool {
	correct := strings.ToLower(strings.TrimSpace(correctAnswer))
	given := strings.ToLower(strings.TrimSpace(submitted))
	if correct == "" || given == "" {
		return false
	}
	return strings.Contains(correct, given) || strings.Contains(given, correct)
}

// validateAnswer выполняет проверку ответа на точку:
//   - текстовый ответ сверяется с correctAnswer точки (двустороннее вхождение);
//   - текстовый ответ на точку без correctAnswer всегда неверен;
//   - медиа-ответ передается в MediaValidator;
//   - неизвестный вид ответа неверен.
func validateAnswer(location *entity.Location, answer Answer, media MediaValidator) bool {
	switch answer.Kind {
	case entity.AnswerKindText:
		if !location.HasTextAnswer() {
			return false
		}
		return textAnswerMatches(*location.CorrectAnswer, answer.Value)
	case entity.AnswerKindImage, entity.AnswerKindAudio, entity.AnswerKindVideo:
		if media == nil {
			media = AcceptAllMediaValidator{}
		}
		return media.ValidateMedia(location, answer)
	default:
		return false
	}
}
