package models

// InputKind 伪装界面输入事件类型
type InputKind string

const (
	InputKey        InputKind = "key"         // 按键（计算器按钮 / 时钟密码盘数字）
	InputText       InputKind = "text"        // 笔记正文变化（完整文本）
	InputTitle      InputKind = "title"       // 笔记标题变化
	InputPressStart InputKind = "press_start" // 开始长按时间显示
	InputPressEnd   InputKind = "press_end"   // 结束长按
	InputCancel     InputKind = "cancel"      // 关闭密码盘
)

// InputEvent 伪装界面发给核心的输入事件
type InputEvent struct {
	Kind InputKind `json:"kind"`
	Key  string    `json:"key,omitempty"`
	Text string    `json:"text,omitempty"`
}

// KeyEvent 构建按键事件
func KeyEvent(key string) InputEvent {
	return InputEvent{Kind: InputKey, Key: key}
}

// TextEvent 构建文本变化事件
func TextEvent(text string) InputEvent {
	return InputEvent{Kind: InputText, Text: text}
}
