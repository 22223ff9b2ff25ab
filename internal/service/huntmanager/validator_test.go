package huntmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/hunt-api/internal/domain/entity"
)

func TestTextAnswerMatches(t *testing.T) {
	tests := []struct {
		name      string
		correct   string
		submitted string
		want      bool
	}{
		{"точное совпадение", "fountain", "fountain", true},
		{"без учета регистра", "Fountain", "FOUNTAIN", true},
		{"пробелы по краям обрезаются", "fountain", "  fountain  ", true},
		{"ответ содержит правильный как подстроку", "archive", "archives", true},
		{"правильный содержит ответ как подстроку", "archives", "archive", true},
		{"полная фраза против короткого ответа", "the re-reading cafe", "re-reading cafe", true},
		{"несовпадение", "fountain", "museum", false},
		{"пустой ответ", "fountain", "", false},
		{"ответ из одних пробелов", "fountain", "   ", false},
		{"пустой правильный ответ", "", "fountain", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textAnswerMatches(tt.correct, tt.submitted))
		})
	}
}

func TestValidateAnswer(t *testing.T) {
	textLocation := &entity.Location{ID: 1, CorrectAnswer: strPtr("fountain")}
	mediaLocation := &entity.Location{ID: 2, CorrectAnswer: nil}

	t.Run("текстовый ответ сверяется с правильным", func(t *testing.T) {
		assert.True(t, validateAnswer(textLocation, text("fountain"), nil))
		assert.False(t, validateAnswer(textLocation, text("museum"), nil))
	})

	t.Run("текст на точку без правильного ответа всегда неверен", func(t *testing.T) {
		assert.False(t, validateAnswer(mediaLocation, text("anything"), nil))
	})

	t.Run("медиа-ответ уходит в валидатор", func(t *testing.T) {
		answer := Answer{Kind: entity.AnswerKindImage, Value: "uploads/x.jpg"}
		assert.True(t, validateAnswer(mediaLocation, answer, AcceptAllMediaValidator{}))
		assert.False(t, validateAnswer(mediaLocation, answer, rejectAllMediaValidator{}))
	})

	t.Run("nil-валидатор принимает любое медиа", func(t *testing.T) {
		answer := Answer{Kind: entity.AnswerKindAudio, Value: "uploads/x.mp3"}
		assert.True(t, validateAnswer(mediaLocation, answer, nil))
	})

	t.Run("неизвестный вид ответа неверен", func(t *testing.T) {
		assert.False(t, validateAnswer(textLocation, Answer{Kind: "hologram", Value: "x"}, nil))
	})
}
