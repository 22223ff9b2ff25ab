package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuntProgress_Clone_IsDeep(t *testing.T) {
	// Arrange
	now := time.Now()
	original := &HuntProgress{
		ID:                 1,
		ParticipantID:      "42",
		CurrentLocationID:  3,
		CompletedLocations: UintArray{1, 2},
		Answers: AnswerMap{
			1: {Kind: AnswerKindText, Value: "re-reading cafe", SubmittedAt: now},
			2: {Kind: AnswerKindImage, Value: "uploads/2.jpg", SubmittedAt: now},
		},
		StartedAt:   now,
		CompletedAt: &now,
		Version:     2,
	}

	// Act
	clone := original.Clone()
	clone.CompletedLocations = append(clone.CompletedLocations, 3)
	clone.Answers[3] = SubmittedAnswer{Kind: AnswerKindText, Value: "fountain"}
	*clone.CompletedAt = now.Add(time.Hour)

	// Assert: оригинал не затронут
	assert.Equal(t, UintArray{1, 2}, original.CompletedLocations)
	assert.Len(t, original.Answers, 2)
	assert.Equal(t, now, *original.CompletedAt)
	assert.Equal(t, original.Version, clone.Version)
}

func TestHuntProgress_HasCompletedLocation(t *testing.T) {
	progress := &HuntProgress{CompletedLocations: UintArray{1, 3}}

	assert.True(t, progress.HasCompletedLocation(1))
	assert.True(t, progress.HasCompletedLocation(3))
	assert.False(t, progress.HasCompletedLocation(2))
}

func TestNewHuntProgress_Defaults(t *testing.T) {
	progress := NewHuntProgress("42")

	assert.Equal(t, "42", progress.ParticipantID)
	assert.Equal(t, uint(1), progress.CurrentLocationID)
	assert.Empty(t, progress.CompletedLocations)
	assert.Empty(t, progress.Answers)
	assert.False(t, progress.IsCompleted())
	assert.False(t, progress.StartedAt.IsZero())
}

func TestUintArray_ScanAcceptsBytesAndString(t *testing.T) {
	// postgres возвращает jsonb как []byte
	var fromBytes UintArray
	require.NoError(t, fromBytes.Scan([]byte(`[1,2,3]`)))
	assert.Equal(t, UintArray{1, 2, 3}, fromBytes)

	// sqlite в локальном бэкенде возвращает string
	var fromString UintArray
	require.NoError(t, fromString.Scan(`[7]`))
	assert.Equal(t, UintArray{7}, fromString)

	// NULL и пустое значение дают пустой массив
	var fromNil UintArray
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, UintArray{}, fromNil)

	// Неожиданный тип - ошибка
	var bad UintArray
	assert.Error(t, bad.Scan(42))
}

func TestAnswerMap_RoundTrip(t *testing.T) {
	// Arrange
	submitted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	original := AnswerMap{
		1: {Kind: AnswerKindText, Value: "re-reading cafe", SubmittedAt: submitted},
		3: {Kind: AnswerKindImage, Value: "uploads/3.jpg", SubmittedAt: submitted},
	}

	// Act: Value -> Scan
	raw, err := original.Value()
	require.NoError(t, err)

	var restored AnswerMap
	require.NoError(t, restored.Scan(raw))

	// Assert: uint-ключи пережили сериализацию через строковые JSON-ключи
	require.Len(t, restored, 2)
	assert.Equal(t, original[1], restored[1])
	assert.Equal(t, original[3], restored[3])
}

func TestAnswerMap_ScanRejectsInvalidKeys(t *testing.T) {
	var m AnswerMap
	err := m.Scan([]byte(`{"not-a-number": {"kind": "text", "value": "x"}}`))
	assert.Error(t, err)
}

func TestSubmittedAnswer_KindHelpers(t *testing.T) {
	textAnswer := &SubmittedAnswer{Kind: AnswerKindText}
	assert.True(t, textAnswer.IsText())
	assert.False(t, textAnswer.IsMedia())

	for _, kind := range []string{AnswerKindImage, AnswerKindAudio, AnswerKindVideo} {
		answer := &SubmittedAnswer{Kind: kind}
		assert.True(t, answer.IsMedia(), "kind %s должен считаться медиа", kind)
		assert.False(t, answer.IsText())
	}
}
