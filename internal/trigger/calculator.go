package trigger

import (
	"strconv"
	"strings"
	"sync"

	"alertaja/internal/models"
)

// 计算器按键
const (
	KeyEquals   = "="
	KeyClear    = "AC"
	KeyNegate   = "±"
	KeyPercent  = "%"
	KeyDecimal  = "."
	KeyAdd      = "+"
	KeySubtract = "-"
	KeyMultiply = "×"
	KeyDivide   = "÷"
)

// MaxDisplayLength 显示屏最多显示的字符数
const MaxDisplayLength = 9

// keyAliases 终端键盘的 ASCII 替代键
var keyAliases = map[string]string{
	"*": KeyMultiply,
	"/": KeyDivide,
	"C": KeyClear,
	"c": KeyClear,
}

// Calculator 计算器伪装
// 记录自 AC 或上次解锁以来按下的所有数字和运算符，按 = 时若序列包含 PIN+"=" 则解锁
type Calculator struct {
	mu       sync.Mutex
	pin      string
	onUnlock func()

	display   string
	prevValue *float64
	operation string
	waiting   bool
	sequence  string
}

// NewCalculator 创建计算器识别器
func NewCalculator(pin string, onUnlock func()) *Calculator {
	return &Calculator{
		pin:      pin,
		onUnlock: onUnlock,
		display:  "0",
	}
}

// Disguise 伪装类型
func (c *Calculator) Disguise() models.DisguiseType {
	return models.DisguiseCalculator
}

// Handle 处理按键事件
func (c *Calculator) Handle(ev models.InputEvent) bool {
	if ev.Kind != models.InputKey {
		return false
	}

	key := ev.Key
	if alias, ok := keyAliases[key]; ok {
		key = alias
	}

	c.mu.Lock()
	unlocked := c.press(key)
	c.mu.Unlock()

	if unlocked {
		c.onUnlock()
	}
	return unlocked
}

// press 调用方持锁
func (c *Calculator) press(key string) bool {
	switch {
	case isDigit(key) || key == KeyDecimal:
		c.inputNumber(key)
	case key == KeyEquals:
		return c.equals()
	case key == KeyClear:
		c.clear()
	case key == KeyNegate:
		c.display = formatNumber(parseDisplay(c.display) * -1)
	case key == KeyPercent:
		c.display = formatNumber(parseDisplay(c.display) / 100)
	case isOperator(key):
		v := parseDisplay(c.display)
		c.prevValue = &v
		c.operation = key
		c.waiting = true
		c.sequence += key
	}
	return false
}

func (c *Calculator) inputNumber(key string) {
	c.sequence += key

	if key == KeyDecimal {
		switch {
		case c.waiting || c.display == "0":
			c.display = "0."
			c.waiting = false
		case !strings.Contains(c.display, KeyDecimal):
			c.display += KeyDecimal
		}
		return
	}

	if c.waiting || c.display == "0" {
		c.display = key
		c.waiting = false
		return
	}
	c.display += key
}

func (c *Calculator) equals() bool {
	seq := c.sequence + KeyEquals
	if c.pin != "" && strings.Contains(seq, c.pin+KeyEquals) {
		c.clear()
		return true
	}
	c.sequence = seq

	if c.prevValue == nil || c.operation == "" {
		return false
	}

	// 1. 单一待定运算，无优先级
	current := parseDisplay(c.display)
	prev := *c.prevValue
	var result float64
	switch c.operation {
	case KeyAdd:
		result = prev + current
	case KeySubtract:
		result = prev - current
	case KeyMultiply:
		result = prev * current
	case KeyDivide:
		if current != 0 {
			result = prev / current
		}
	}

	// 2. 结果上屏；之后输入的数字接在结果后面
	c.display = formatNumber(result)
	c.prevValue = nil
	c.operation = ""
	return false
}

func (c *Calculator) clear() {
	c.display = "0"
	c.prevValue = nil
	c.operation = ""
	c.waiting = false
	c.sequence = ""
}

// Reset 回到初始状态
func (c *Calculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
}

// Display 显示屏内容（截断到 MaxDisplayLength 个字符）
func (c *Calculator) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return truncateDisplay(c.display)
}

// View 渲染快照
func (c *Calculator) View() View {
	return View{
		Disguise: models.DisguiseCalculator,
		Display:  c.Display(),
	}
}

func truncateDisplay(s string) string {
	r := []rune(s)
	if len(r) > MaxDisplayLength {
		return string(r[:MaxDisplayLength])
	}
	return s
}

func isDigit(key string) bool {
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

func isOperator(key string) bool {
	switch key {
	case KeyAdd, KeySubtract, KeyMultiply, KeyDivide:
		return true
	}
	return false
}

// parseDisplay 解析显示值，无法解析时按 0 处理
func parseDisplay(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
