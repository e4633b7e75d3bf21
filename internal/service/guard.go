package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"alertaja/internal/audit"
	"alertaja/internal/dispatch"
	"alertaja/internal/events"
	"alertaja/internal/gate"
	"alertaja/internal/metrics"
	"alertaja/internal/models"
	"alertaja/internal/sos"
	"alertaja/internal/trigger"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// ErrLocked 面板未解锁时拒绝面板操作
var ErrLocked = errors.New("dashboard is locked")

// guardStore Guard 使用的本地状态
type guardStore interface {
	Pin(ctx context.Context) string
	Contacts(ctx context.Context) []models.EmergencyContact
	ActiveDisguise(ctx context.Context) models.DisguiseType
	SetActiveDisguise(ctx context.Context, d models.DisguiseType) error
	LoadSOSHistory(ctx context.Context) ([]models.SOSRecord, error)
	SetSOSHistory(ctx context.Context, records []models.SOSRecord) error
}

// locator 尽力定位
type locator interface {
	Resolve(ctx context.Context) *models.Coordinates
}

// dispatcher 告警分发与面板直接操作
type dispatcher interface {
	FanOut(ctx context.Context, contacts []models.EmergencyContact, message string) []string
	Call(ctx context.Context, phone string) bool
	Message(ctx context.Context, phone, message string) bool
}

// stationLookup 安全站点查找
type stationLookup interface {
	Get(ctx context.Context, id string) (models.SafeStation, error)
}

// emitter 事件输出
type emitter interface {
	Emit(ev events.Event)
}

// GuardDeps Guard 依赖
type GuardDeps struct {
	Storage    guardStore
	Locator    locator
	Dispatcher dispatcher
	Stations   stationLookup
	Feedback   sos.Feedback
	Events     emitter
}

// Snapshot 核心状态快照（前端渲染用）
type Snapshot struct {
	Gate gate.State   `json:"gate"`
	SOS  sos.Status   `json:"sos"`
	View trigger.View `json:"view"`
}

// Guard 应用状态对象：持有解锁门、当前识别器、SOS 控制器和审计日志
type Guard struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	deps       GuardDeps
	gate       *gate.Gate
	sos        *sos.Controller
	audit      *audit.Log
	recognizer trigger.Recognizer
	pin        string
	onView     func()
	logger     *zap.Logger
}

// NewGuard 创建 Guard（需调用 Start 加载持久化状态）
func NewGuard(clock clockwork.Clock, deps GuardDeps, logger *zap.Logger) *Guard {
	auditLog := audit.New(deps.Storage, logger)

	g := &Guard{
		clock:  clock,
		deps:   deps,
		gate:   gate.New(models.DefaultDisguise, deps.Storage, logger),
		audit:  auditLog,
		onView: func() {},
		logger: logger.Named("guard"),
	}
	g.sos = sos.New(clock, sos.Deps{
		Contacts:   deps.Storage,
		Locator:    deps.Locator,
		Dispatcher: deps.Dispatcher,
		Audit:      auditLog,
		Feedback:   deps.Feedback,
		Events:     deps.Events,
	}, logger)
	g.gate.OnChange(g.onGateChange)
	return g
}

// Start 加载 PIN 和伪装，创建识别器
func (g *Guard) Start(ctx context.Context) error {
	disguise := g.deps.Storage.ActiveDisguise(ctx)
	g.gate.Restore(disguise)

	if err := g.Reload(ctx); err != nil {
		return err
	}

	g.logger.Info("Guard started",
		zap.String("disguise", string(g.gate.ActiveDisguise())),
		zap.Bool("pin_configured", g.currentPin() != ""),
	)
	return nil
}

// Reload 重新读取 PIN 并重建识别器（PIN 修改后调用）
func (g *Guard) Reload(ctx context.Context) error {
	pin := g.deps.Storage.Pin(ctx)

	g.mu.Lock()
	g.pin = pin
	g.mu.Unlock()

	return g.rebuild(g.gate.ActiveDisguise())
}

// rebuild 按伪装创建新识别器，旧识别器的定时器先停止
func (g *Guard) rebuild(disguise models.DisguiseType) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := trigger.New(disguise, g.pin, g.clock, g.handleUnlock,
		trigger.WithChangeListener(g.notifyView),
	)
	if err != nil {
		return fmt.Errorf("failed to build recognizer: %w", err)
	}

	if g.recognizer != nil {
		g.recognizer.Reset()
	}
	g.recognizer = rec
	return nil
}

func (g *Guard) currentPin() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pin
}

func (g *Guard) currentRecognizer() trigger.Recognizer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recognizer
}

// SetViewListener 识别器定时器改变渲染状态时回调（终端界面重绘）
func (g *Guard) SetViewListener(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onView = fn
}

func (g *Guard) notifyView() {
	g.mu.Lock()
	fn := g.onView
	g.mu.Unlock()
	fn()
}

// handleUnlock 识别器确认解锁手势
func (g *Guard) handleUnlock() {
	disguise := g.gate.ActiveDisguise()
	g.gate.Unlock()
	metrics.RecordUnlock(string(disguise))
}

// onGateChange 解锁门状态变化：发事件，锁定时清空识别器输入
func (g *Guard) onGateChange(prev, next gate.State) {
	if prev.ActiveDisguise != next.ActiveDisguise {
		g.emit(events.TypeDisguiseChanged, next.ActiveDisguise)
	}

	switch {
	case !prev.Unlocked && next.Unlocked:
		g.emit(events.TypeUnlocked, next.ActiveDisguise)
	case prev.Unlocked && !next.Unlocked:
		if rec := g.currentRecognizer(); rec != nil {
			rec.Reset()
		}
		g.emit(events.TypeLocked, next.ActiveDisguise)
	}
}

func (g *Guard) emit(t events.Type, disguise models.DisguiseType) {
	if g.deps.Events == nil {
		return
	}
	ev := events.New(t, g.clock.Now())
	ev.Disguise = string(disguise)
	g.deps.Events.Emit(ev)
}

// HandleInput 伪装界面输入；已解锁时忽略，触发解锁返回 true
func (g *Guard) HandleInput(ev models.InputEvent) bool {
	if g.gate.IsUnlocked() {
		return false
	}
	rec := g.currentRecognizer()
	if rec == nil {
		return false
	}
	return rec.Handle(ev)
}

// TriggerSOS 开始 SOS 倒计时（仅在面板解锁时有效）
func (g *Guard) TriggerSOS(ctx context.Context) bool {
	if !g.gate.IsUnlocked() {
		g.logger.Warn("SOS trigger rejected while locked")
		return false
	}
	return g.sos.Trigger(ctx)
}

// CancelSOS 取消倒计时
func (g *Guard) CancelSOS() bool {
	return g.sos.Cancel()
}

// Unlock 直接解锁（完成引导后进入面板）
func (g *Guard) Unlock() {
	g.gate.Unlock()
}

// Lock 锁定回到伪装界面；进行中的倒计时继续
func (g *Guard) Lock() {
	g.gate.Lock()
}

// SetDisguise 切换伪装（总是锁定）并重建识别器
func (g *Guard) SetDisguise(ctx context.Context, d models.DisguiseType) error {
	err := g.gate.SetActiveDisguise(ctx, d)
	if errors.Is(err, models.ErrValidation) {
		return err
	}

	if rerr := g.rebuild(g.gate.ActiveDisguise()); rerr != nil {
		return rerr
	}
	return err
}

// CallContact 直接拨打联系人
func (g *Guard) CallContact(ctx context.Context, id string) (bool, error) {
	c, err := g.contact(ctx, id)
	if err != nil {
		return false, err
	}
	return g.deps.Dispatcher.Call(ctx, c.Phone), nil
}

// MessageContact 给联系人发送简短求助短信
func (g *Guard) MessageContact(ctx context.Context, id string) (bool, error) {
	c, err := g.contact(ctx, id)
	if err != nil {
		return false, err
	}
	return g.deps.Dispatcher.Message(ctx, c.Phone, dispatch.DirectHelpMessage), nil
}

// CallStation 拨打安全站点电话
func (g *Guard) CallStation(ctx context.Context, id string) (bool, error) {
	if !g.gate.IsUnlocked() {
		return false, ErrLocked
	}
	s, err := g.deps.Stations.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if s.Phone == nil || *s.Phone == "" {
		return false, models.NewValidationError("phone", "station has no phone")
	}
	return g.deps.Dispatcher.Call(ctx, *s.Phone), nil
}

// CallEmergency 拨打紧急号码（policia、bombeiros、crianca、mulher）
func (g *Guard) CallEmergency(ctx context.Context, service string) (bool, error) {
	if !g.gate.IsUnlocked() {
		return false, ErrLocked
	}
	number, ok := models.EmergencyNumbers[service]
	if !ok {
		return false, fmt.Errorf("emergency service %q: %w", service, models.ErrNotFound)
	}
	return g.deps.Dispatcher.Call(ctx, number), nil
}

func (g *Guard) contact(ctx context.Context, id string) (models.EmergencyContact, error) {
	if !g.gate.IsUnlocked() {
		return models.EmergencyContact{}, ErrLocked
	}
	for _, c := range g.deps.Storage.Contacts(ctx) {
		if c.ID == id {
			return c, nil
		}
	}
	return models.EmergencyContact{}, fmt.Errorf("contact %s: %w", id, models.ErrNotFound)
}

// History SOS 历史（最新在前）
func (g *Guard) History(ctx context.Context) []models.SOSRecord {
	return g.audit.List(ctx)
}

// Snapshot 当前状态
func (g *Guard) Snapshot() Snapshot {
	s := Snapshot{
		Gate: g.gate.State(),
		SOS:  g.sos.Status(),
	}
	if rec := g.currentRecognizer(); rec != nil {
		s.View = rec.View()
	}
	return s
}

// Stop 停止倒计时和识别器定时器
func (g *Guard) Stop() {
	g.sos.Close()
	if rec := g.currentRecognizer(); rec != nil {
		rec.Reset()
	}
	g.logger.Info("Guard stopped")
}
