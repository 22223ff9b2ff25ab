package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestLocation_HasTextAnswer(t *testing.T) {
	assert.True(t, (&Location{CorrectAnswer: strPtr("fountain")}).HasTextAnswer())
	assert.False(t, (&Location{CorrectAnswer: nil}).HasTextAnswer())
	assert.False(t, (&Location{CorrectAnswer: strPtr("   ")}).HasTextAnswer())
}

func TestCatalog_Accessors(t *testing.T) {
	catalog := NewCatalog([]Location{
		{ID: 1, DisplayText: "A"},
		{ID: 2, DisplayText: "B"},
		{ID: 3, DisplayText: "C"},
	})

	assert.Equal(t, 3, catalog.Size())
	assert.Equal(t, uint(3), catalog.LastID())
	assert.Equal(t, "B", catalog.Get(2).DisplayText)
	assert.Nil(t, catalog.Get(99))
}

func TestCatalog_LocationsReturnsCopy(t *testing.T) {
	catalog := NewCatalog([]Location{{ID: 1, DisplayText: "A"}})

	locations := catalog.Locations()
	locations[0].DisplayText = "mutated"

	assert.Equal(t, "A", catalog.Get(1).DisplayText)
}

func TestCatalog_Empty(t *testing.T) {
	catalog := NewCatalog(nil)

	assert.Equal(t, 0, catalog.Size())
	assert.Equal(t, uint(0), catalog.LastID())
}
