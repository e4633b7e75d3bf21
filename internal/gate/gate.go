package gate

import (
	"context"
	"sync"

	"alertaja/internal/models"

	"go.uber.org/zap"
)

// disguiseStore 伪装选择持久化
type disguiseStore interface {
	SetActiveDisguise(ctx context.Context, d models.DisguiseType) error
}

// State 解锁门状态快照
type State struct {
	Unlocked       bool                `json:"unlocked"`
	ActiveDisguise models.DisguiseType `json:"activeDisguise"`
}

// Listener 状态变化回调（在锁外调用）
type Listener func(prev, next State)

// Gate 解锁门：持有解锁状态和当前伪装
// 切换伪装后总是回到锁定状态
type Gate struct {
	mu        sync.Mutex
	state     State
	store     disguiseStore
	listeners []Listener
	logger    *zap.Logger
}

// New 创建解锁门（初始锁定）
func New(initial models.DisguiseType, store disguiseStore, logger *zap.Logger) *Gate {
	if !initial.Valid() {
		initial = models.DefaultDisguise
	}
	return &Gate{
		state:  State{ActiveDisguise: initial},
		store:  store,
		logger: logger.Named("gate"),
	}
}

// Restore 恢复持久化的伪装（启动时调用，不写存储、不通知监听者，保持锁定）
func (g *Gate) Restore(d models.DisguiseType) {
	if !d.Valid() {
		d = models.DefaultDisguise
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = State{ActiveDisguise: d}
}

// OnChange 注册状态监听
func (g *Gate) OnChange(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// transition 修改状态并在锁外通知监听者
func (g *Gate) transition(fn func(s *State)) State {
	g.mu.Lock()
	prev := g.state
	fn(&g.state)
	next := g.state
	listeners := append([]Listener(nil), g.listeners...)
	g.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
	return next
}

// Unlock 解锁（显示 SOS 面板）
func (g *Gate) Unlock() {
	g.transition(func(s *State) { s.Unlocked = true })
	g.logger.Info("Gate unlocked")
}

// Lock 锁定（回到伪装界面）
func (g *Gate) Lock() {
	g.transition(func(s *State) { s.Unlocked = false })
	g.logger.Info("Gate locked")
}

// SetActiveDisguise 切换伪装：先持久化，无论成功与否都锁定
func (g *Gate) SetActiveDisguise(ctx context.Context, d models.DisguiseType) error {
	if !d.Valid() {
		return models.NewValidationError("disguise", "unknown disguise")
	}

	err := g.store.SetActiveDisguise(ctx, d)
	if err != nil {
		g.logger.Warn("Failed to persist disguise, switching anyway",
			zap.String("disguise", string(d)),
			zap.Error(err),
		)
	}

	g.transition(func(s *State) {
		s.ActiveDisguise = d
		s.Unlocked = false
	})

	g.logger.Info("Disguise changed",
		zap.String("disguise", string(d)),
	)
	return err
}

// IsUnlocked 是否已解锁
func (g *Gate) IsUnlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Unlocked
}

// ActiveDisguise 当前伪装
func (g *Gate) ActiveDisguise() models.DisguiseType {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.ActiveDisguise
}

// State 当前状态
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
