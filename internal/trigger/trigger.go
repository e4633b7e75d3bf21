// Package trigger 伪装界面的解锁手势识别
//
// 每种伪装一个识别器，全部消费 models.InputEvent，不认识的事件类型直接忽略。
// 识别器自己持有的定时器（时钟长按、错误提示）用代数计数器失效，
// 停止定时器和递增代数在同一临界区内完成。
package trigger

import (
	"fmt"

	"alertaja/internal/models"

	"github.com/jonboulle/clockwork"
)

// UnlockSuffix 笔记伪装的解锁后缀
const UnlockSuffix = "#AJ"

// 时钟伪装的固定时长
const (
	LongPressDuration = 2000 // 毫秒
	PinErrorDuration  = 500  // 毫秒
)

// View 识别器的渲染快照
type View struct {
	Disguise models.DisguiseType `json:"disguise"`

	// 计算器
	Display string `json:"display,omitempty"`

	// 笔记
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`

	// 时钟
	Holding    bool `json:"holding,omitempty"`
	PadVisible bool `json:"padVisible,omitempty"`
	PinEntered int  `json:"pinEntered,omitempty"`
	PinLength  int  `json:"pinLength,omitempty"`
	PinError   bool `json:"pinError,omitempty"`
}

// Recognizer 伪装解锁识别器
type Recognizer interface {
	// Disguise 识别器对应的伪装
	Disguise() models.DisguiseType
	// Handle 处理一个输入事件，触发解锁时返回 true（回调已执行）
	Handle(ev models.InputEvent) bool
	// Reset 清空输入状态并停止所有定时器
	Reset()
	// View 当前渲染快照
	View() View
}

// Option 识别器可选项
type Option func(*options)

type options struct {
	onChange func()
}

// WithChangeListener 定时器导致状态变化时回调（前端据此重绘）
func WithChangeListener(fn func()) Option {
	return func(o *options) {
		o.onChange = fn
	}
}

// New 按伪装类型创建识别器
func New(disguise models.DisguiseType, pin string, clock clockwork.Clock, onUnlock func(), opts ...Option) (Recognizer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if onUnlock == nil {
		onUnlock = func() {}
	}
	if o.onChange == nil {
		o.onChange = func() {}
	}

	switch disguise {
	case models.DisguiseCalculator:
		return NewCalculator(pin, onUnlock), nil
	case models.DisguiseNotes:
		return NewNotes(pin, onUnlock), nil
	case models.DisguiseClock:
		return NewClock(pin, clock, onUnlock, o.onChange), nil
	}
	return nil, fmt.Errorf("unknown disguise: %q", disguise)
}
