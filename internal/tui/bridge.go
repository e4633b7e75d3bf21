package tui

import (
	"context"
	"errors"
	"sync"

	"alertaja/internal/events"
	"alertaja/internal/sos"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshMsg 核心状态变化（识别器定时器、解锁门）
type RefreshMsg struct{}

// EventMsg 核心事件
type EventMsg struct {
	Event events.Event
}

// HapticMsg 触觉反馈（终端上闪烁状态栏）
type HapticMsg struct {
	Kind sos.Haptic
}

// Bridge 把核心回调转发给运行中的 bubbletea 程序
// 程序启动前的消息直接丢弃
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewBridge 创建转发器
func NewBridge() *Bridge {
	return &Bridge{}
}

// Send 转发消息；不阻塞调用方（调用方可能就在 Update 里）
func (b *Bridge) Send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

// Refresh 识别器视图变化回调
func (b *Bridge) Refresh() {
	b.Send(RefreshMsg{})
}

// Haptic 实现 sos.Feedback
func (b *Bridge) Haptic(kind sos.Haptic) {
	b.Send(HapticMsg{Kind: kind})
}

// Publish 实现 events.Sink
func (b *Bridge) Publish(ctx context.Context, ev events.Event) error {
	b.Send(EventMsg{Event: ev})
	return nil
}

// Run 启动程序并阻塞到退出或 ctx 取消
func (b *Bridge) Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	b.mu.Lock()
	b.program = p
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.program = nil
		b.mu.Unlock()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
