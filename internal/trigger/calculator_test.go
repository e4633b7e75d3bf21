package trigger

import (
	"strings"
	"testing"

	"alertaja/internal/models"

	"github.com/stretchr/testify/assert"
)

func pressAll(c *Calculator, keys ...string) bool {
	unlocked := false
	for _, k := range keys {
		if c.Handle(models.KeyEvent(k)) {
			unlocked = true
		}
	}
	return unlocked
}

func keys(s string) []string {
	var out []string
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func TestCalculator_PinEqualsUnlocks(t *testing.T) {
	calls := 0
	c := NewCalculator("1234", func() { calls++ })

	assert.True(t, pressAll(c, keys("1234=")...))
	assert.Equal(t, 1, calls)
	// 解锁后序列清空
	assert.Equal(t, "0", c.Display())
}

func TestCalculator_PinAsSuffixOfLongerNumberUnlocks(t *testing.T) {
	calls := 0
	c := NewCalculator("1234", func() { calls++ })

	assert.True(t, pressAll(c, keys("51234=")...))
	assert.Equal(t, 1, calls)
}

func TestCalculator_PinAfterEarlierArithmeticUnlocks(t *testing.T) {
	calls := 0
	c := NewCalculator("1234", func() { calls++ })

	assert.False(t, pressAll(c, keys("7+3=")...))
	assert.True(t, pressAll(c, keys("1234=")...))
	assert.Equal(t, 1, calls)
}

func TestCalculator_NonMatchingSequencesNeverUnlock(t *testing.T) {
	sequences := []string{
		"123=",
		"1243=",
		"12+34=",
		"1234",
		"1234+=",
		"4321=",
	}
	for _, seq := range sequences {
		t.Run(seq, func(t *testing.T) {
			calls := 0
			c := NewCalculator("1234", func() { calls++ })
			assert.False(t, pressAll(c, keys(seq)...))
			assert.Equal(t, 0, calls)
		})
	}
}

func TestCalculator_ClearResetsSequence(t *testing.T) {
	calls := 0
	c := NewCalculator("1234", func() { calls++ })

	pressAll(c, "1", "2", KeyClear, "3", "4", "=")
	assert.Equal(t, 0, calls)
}

func TestCalculator_EmptyPinNeverUnlocks(t *testing.T) {
	calls := 0
	c := NewCalculator("", func() { calls++ })

	assert.False(t, pressAll(c, keys("=1=")...))
	assert.Equal(t, 0, calls)
}

func TestCalculator_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"addition", keys("7+3="), "10"},
		{"subtraction", keys("2-5="), "-3"},
		{"multiplication", []string{"6", KeyMultiply, "7", "="}, "42"},
		{"division", []string{"9", KeyDivide, "4", "="}, "2.25"},
		{"division by zero", []string{"8", KeyDivide, "0", "="}, "0"},
		{"ascii aliases", keys("6*7="), "42"},
		{"last operator wins", keys("7+-2="), "5"},
		{"decimal", keys("1.5+1="), "2.5"},
		{"negate", []string{"5", KeyNegate}, "-5"},
		{"negate zero", []string{KeyNegate}, "0"},
		{"percent", []string{"5", "0", KeyPercent}, "0.5"},
		{"leading decimal", keys(".5"), "0.5"},
		{"double decimal ignored", keys("1..5"), "1.5"},
		{"equals without operator", keys("42="), "42"},
		{"truncated to nine", keys("123456789012"), "123456789"},
		{"digits append to result", keys("7+3=5"), "105"},
		{"operator after result chains", keys("7+3=+1="), "11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCalculator("9999", func() {})
			pressAll(c, tt.keys...)
			assert.Equal(t, tt.want, c.Display())
		})
	}
}

func TestCalculator_IgnoresNonKeyEvents(t *testing.T) {
	calls := 0
	c := NewCalculator("1234", func() { calls++ })

	assert.False(t, c.Handle(models.TextEvent("1234=")))
	assert.False(t, c.Handle(models.InputEvent{Kind: models.InputPressStart}))
	assert.Equal(t, 0, calls)
	assert.Equal(t, "0", c.Display())
}

func TestCalculator_UnknownKeysIgnored(t *testing.T) {
	c := NewCalculator("1234", func() {})
	pressAll(c, "x", "√", "1")
	assert.Equal(t, "1", c.Display())
}

func TestCalculator_LongPinWithinLongSequence(t *testing.T) {
	calls := 0
	pin := "98765432"
	c := NewCalculator(pin, func() { calls++ })

	pressAll(c, keys("12+"+strings.Repeat("0", 3)+pin+"=")...)
	assert.Equal(t, 1, calls)
}
