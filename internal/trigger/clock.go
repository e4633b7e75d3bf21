package trigger

import (
	"sync"
	"time"

	"alertaja/internal/models"

	"github.com/jonboulle/clockwork"
)

// Clock 时钟伪装：长按时间 2 秒弹出密码盘，输入满 PIN 长度后比对
type Clock struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	pin      string
	onUnlock func()
	onChange func()

	holdTimer clockwork.Timer
	holdGen   uint64

	errTimer clockwork.Timer
	errGen   uint64

	padVisible bool
	buffer     string
	pinError   bool
}

// NewClock 创建时钟识别器
func NewClock(pin string, clock clockwork.Clock, onUnlock, onChange func()) *Clock {
	return &Clock{
		clock:    clock,
		pin:      pin,
		onUnlock: onUnlock,
		onChange: onChange,
	}
}

// Disguise 伪装类型
func (c *Clock) Disguise() models.DisguiseType {
	return models.DisguiseClock
}

// Now 当前时间（前端每秒刷新）
func (c *Clock) Now() time.Time {
	return c.clock.Now()
}

// Handle 处理长按、密码盘按键和关闭
func (c *Clock) Handle(ev models.InputEvent) bool {
	c.mu.Lock()
	unlocked := false
	switch ev.Kind {
	case models.InputPressStart:
		c.armHold()
	case models.InputPressEnd:
		c.stopHold()
	case models.InputKey:
		unlocked = c.pressDigit(ev.Key)
	case models.InputCancel:
		c.hidePad()
	}
	c.mu.Unlock()

	if unlocked {
		c.onUnlock()
	}
	return unlocked
}

// armHold 调用方持锁
func (c *Clock) armHold() {
	if c.padVisible {
		return
	}
	c.stopHold()

	gen := c.holdGen
	c.holdTimer = c.clock.AfterFunc(LongPressDuration*time.Millisecond, func() {
		c.onHoldExpired(gen)
	})
}

// stopHold 调用方持锁
func (c *Clock) stopHold() {
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	c.holdGen++
}

func (c *Clock) onHoldExpired(gen uint64) {
	c.mu.Lock()
	if gen != c.holdGen {
		c.mu.Unlock()
		return
	}
	c.holdTimer = nil
	c.padVisible = true
	c.buffer = ""
	c.pinError = false
	c.mu.Unlock()

	c.onChange()
}

// pressDigit 调用方持锁
func (c *Clock) pressDigit(key string) bool {
	if !c.padVisible || !isDigit(key) {
		return false
	}

	c.buffer += key
	if len(c.buffer) < len(c.pin) {
		return false
	}

	// 1. 匹配：收起密码盘并解锁
	if c.pin != "" && c.buffer == c.pin {
		c.hidePad()
		return true
	}

	// 2. 不匹配：清空输入，错误提示短暂显示，可立即重试
	c.buffer = ""
	c.pinError = true
	c.stopError()
	gen := c.errGen
	c.errTimer = c.clock.AfterFunc(PinErrorDuration*time.Millisecond, func() {
		c.onErrorExpired(gen)
	})
	return false
}

// stopError 调用方持锁
func (c *Clock) stopError() {
	if c.errTimer != nil {
		c.errTimer.Stop()
		c.errTimer = nil
	}
	c.errGen++
}

func (c *Clock) onErrorExpired(gen uint64) {
	c.mu.Lock()
	if gen != c.errGen {
		c.mu.Unlock()
		return
	}
	c.errTimer = nil
	c.pinError = false
	c.mu.Unlock()

	c.onChange()
}

// hidePad 调用方持锁
func (c *Clock) hidePad() {
	c.stopError()
	c.padVisible = false
	c.buffer = ""
	c.pinError = false
}

// Reset 收起密码盘并停止所有定时器
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopHold()
	c.hidePad()
}

// PadVisible 密码盘是否显示
func (c *Clock) PadVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.padVisible
}

// PinError 是否正在显示错误提示
func (c *Clock) PinError() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinError
}

// Buffer 已输入的密码
func (c *Clock) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// View 渲染快照
func (c *Clock) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Disguise:   models.DisguiseClock,
		Holding:    c.holdTimer != nil,
		PadVisible: c.padVisible,
		PinEntered: len(c.buffer),
		PinLength:  len(c.pin),
		PinError:   c.pinError,
	}
}
