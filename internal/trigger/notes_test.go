package trigger

import (
	"testing"

	"alertaja/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNotes_UnlockOnPinSuffix(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		unlock bool
	}{
		{"exact", "1234#AJ", true},
		{"embedded in text", "comprar pão 1234#AJ e leite", true},
		{"suffix first", "#AJ1234", false},
		{"wrong pin", "1235#AJ", false},
		{"lowercase suffix", "1234#aj", false},
		{"pin only", "1234", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			n := NewNotes("1234", func() { calls++ })

			assert.Equal(t, tt.unlock, n.Handle(models.TextEvent(tt.text)))
			if tt.unlock {
				assert.Equal(t, 1, calls)
			} else {
				assert.Equal(t, 0, calls)
			}
		})
	}
}

func TestNotes_TitleNeverChecked(t *testing.T) {
	calls := 0
	n := NewNotes("1234", func() { calls++ })

	assert.False(t, n.Handle(models.InputEvent{Kind: models.InputTitle, Text: "1234#AJ"}))
	assert.Equal(t, 0, calls)
	assert.Equal(t, "1234#AJ", n.View().Title)
}

func TestNotes_EveryChangeChecked(t *testing.T) {
	calls := 0
	n := NewNotes("1234", func() { calls++ })

	for _, text := range []string{"1", "12", "123", "1234", "1234#", "1234#A", "1234#AJ"} {
		n.Handle(models.TextEvent(text))
	}
	assert.Equal(t, 1, calls)
}

func TestNotes_EmptyPinNeverUnlocks(t *testing.T) {
	calls := 0
	n := NewNotes("", func() { calls++ })

	assert.False(t, n.Handle(models.TextEvent("#AJ")))
	assert.Equal(t, 0, calls)
}

func TestNotes_Reset(t *testing.T) {
	n := NewNotes("1234", func() {})
	n.Handle(models.InputEvent{Kind: models.InputTitle, Text: "lista"})
	n.Handle(models.TextEvent("ovos"))

	n.Reset()

	v := n.View()
	assert.Equal(t, models.DisguiseNotes, v.Disguise)
	assert.Empty(t, v.Title)
	assert.Empty(t, v.Body)
}
