package trigger

import (
	"strings"
	"sync"

	"alertaja/internal/models"
)

// Notes 笔记伪装：正文包含 PIN+"#AJ" 时解锁，标题不参与判断
type Notes struct {
	mu       sync.Mutex
	pin      string
	onUnlock func()

	title string
	body  string
}

// NewNotes 创建笔记识别器
func NewNotes(pin string, onUnlock func()) *Notes {
	return &Notes{
		pin:      pin,
		onUnlock: onUnlock,
	}
}

// Disguise 伪装类型
func (n *Notes) Disguise() models.DisguiseType {
	return models.DisguiseNotes
}

// Handle 处理标题和正文变化
func (n *Notes) Handle(ev models.InputEvent) bool {
	n.mu.Lock()
	unlocked := false
	switch ev.Kind {
	case models.InputTitle:
		n.title = ev.Text
	case models.InputText:
		n.body = ev.Text
		unlocked = n.pin != "" && strings.Contains(ev.Text, n.pin+UnlockSuffix)
	}
	n.mu.Unlock()

	if unlocked {
		n.onUnlock()
	}
	return unlocked
}

// Reset 清空笔记
func (n *Notes) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.title = ""
	n.body = ""
}

// View 渲染快照
func (n *Notes) View() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return View{
		Disguise: models.DisguiseNotes,
		Title:    n.title,
		Body:     n.body,
	}
}
