// Package sos SOS 倒计时控制器
//
// 状态：Idle -> Counting -> Dispatching -> Idle，Counting 可取消回到 Idle。
// 同一时间最多一个倒计时；倒计时窗口固定 10 秒，每秒一次触觉反馈，
// 到期后发起分发并写入一条 SOS 记录。取消不写记录。
package sos

import (
	"context"
	"sync"
	"time"

	"alertaja/internal/dispatch"
	"alertaja/internal/events"
	"alertaja/internal/metrics"
	"alertaja/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// 倒计时参数（固定，不可配置）
const (
	CountdownSeconds = 10
	TickInterval     = time.Second
)

// State 控制器状态
type State string

const (
	StateIdle        State = "idle"
	StateCounting    State = "counting"
	StateDispatching State = "dispatching"
)

// Status 控制器快照
type Status struct {
	State     State `json:"state"`
	Remaining int   `json:"remaining"`
}

// contactSource 联系人来源
type contactSource interface {
	Contacts(ctx context.Context) []models.EmergencyContact
}

// locator 尽力定位
type locator interface {
	Resolve(ctx context.Context) *models.Coordinates
}

// fanOut 告警分发
type fanOut interface {
	FanOut(ctx context.Context, contacts []models.EmergencyContact, message string) []string
}

// recorder SOS 审计日志
type recorder interface {
	Add(ctx context.Context, record models.SOSRecord)
}

// emitter 事件输出
type emitter interface {
	Emit(ev events.Event)
}

// Deps 控制器依赖
type Deps struct {
	Contacts   contactSource
	Locator    locator
	Dispatcher fanOut
	Audit      recorder
	Feedback   Feedback
	Events     emitter
}

// Controller SOS 倒计时控制器
type Controller struct {
	mu    sync.Mutex
	clock clockwork.Clock
	deps  Deps

	state     State
	remaining int
	gen       uint64
	timer     clockwork.Timer

	contacts       []models.EmergencyContact
	location       *models.Coordinates
	cancelLocation context.CancelFunc

	logger *zap.Logger
}

// New 创建控制器
func New(clock clockwork.Clock, deps Deps, logger *zap.Logger) *Controller {
	if deps.Feedback == nil {
		deps.Feedback = NopFeedback{}
	}
	return &Controller{
		clock:  clock,
		deps:   deps,
		state:  StateIdle,
		logger: logger.Named("sos"),
	}
}

// Trigger 开始倒计时，仅在 Idle 状态有效
func (c *Controller) Trigger(ctx context.Context) bool {
	c.mu.Lock()
	idle := c.state == StateIdle
	c.mu.Unlock()
	if !idle {
		return false
	}

	// 联系人在触发时确定；读取不持锁，之后重新检查状态
	contacts := c.deps.Contacts.Contacts(ctx)

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return false
	}

	c.state = StateCounting
	c.remaining = CountdownSeconds
	c.gen++
	gen := c.gen
	c.contacts = contacts
	c.location = nil

	locCtx, cancel := context.WithCancel(context.Background())
	c.cancelLocation = cancel
	c.timer = c.clock.AfterFunc(TickInterval, func() { c.tick(gen) })
	c.mu.Unlock()

	// 定位与倒计时并行
	go c.fetchLocation(locCtx, gen)

	c.deps.Feedback.Haptic(HapticWarning)
	c.emit(events.TypeSOSStarted, func(ev *events.Event) { ev.Remaining = CountdownSeconds })
	metrics.RecordSOS("started")

	c.logger.Info("SOS countdown started",
		zap.Int("seconds", CountdownSeconds),
		zap.Int("contacts", len(contacts)),
	)
	return true
}

// Cancel 取消倒计时，仅在 Counting 状态有效；不写记录
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.state != StateCounting {
		c.mu.Unlock()
		return false
	}

	remaining := c.remaining
	c.invalidate()
	c.state = StateIdle
	c.remaining = 0
	c.contacts = nil
	c.location = nil
	c.mu.Unlock()

	c.deps.Feedback.Haptic(HapticSuccess)
	c.emit(events.TypeSOSCancelled, func(ev *events.Event) { ev.Remaining = remaining })
	metrics.RecordSOS("cancelled")

	c.logger.Info("SOS countdown cancelled", zap.Int("remaining", remaining))
	return true
}

// invalidate 停止定时器、递增代数、放弃定位（调用方持锁）
func (c *Controller) invalidate() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	if c.cancelLocation != nil {
		c.cancelLocation()
		c.cancelLocation = nil
	}
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateCounting {
		c.mu.Unlock()
		return
	}

	c.remaining--
	if c.remaining > 0 {
		remaining := c.remaining
		c.timer = c.clock.AfterFunc(TickInterval, func() { c.tick(gen) })
		c.mu.Unlock()

		c.deps.Feedback.Haptic(HapticTick)
		c.emit(events.TypeSOSTick, func(ev *events.Event) { ev.Remaining = remaining })
		return
	}

	// 倒计时结束：进入分发，此后不可取消
	c.state = StateDispatching
	c.timer = nil
	contacts := c.contacts
	coords := c.location
	if c.cancelLocation != nil {
		c.cancelLocation()
		c.cancelLocation = nil
	}
	c.mu.Unlock()

	c.dispatch(contacts, coords)
}

func (c *Controller) dispatch(contacts []models.EmergencyContact, coords *models.Coordinates) {
	ctx := context.Background()

	// 1. 构建消息并发起分发（只等待"已尝试"）
	message := dispatch.BuildMessage(coords)
	notified := c.deps.Dispatcher.FanOut(ctx, contacts, message)
	metrics.RecordLocation(coords != nil)

	// 2. 写入 SOS 记录
	record := models.SOSRecord{
		ID:               uuid.New().String(),
		Timestamp:        c.clock.Now().UnixMilli(),
		ContactsNotified: notified,
		Cancelled:        false,
	}
	if coords != nil {
		lat, lng := coords.Latitude, coords.Longitude
		record.Latitude = &lat
		record.Longitude = &lng
	}
	c.deps.Audit.Add(ctx, record)

	// 3. 回到 Idle
	c.mu.Lock()
	c.state = StateIdle
	c.remaining = 0
	c.contacts = nil
	c.location = nil
	c.mu.Unlock()

	c.emit(events.TypeSOSDispatched, func(ev *events.Event) {
		ev.RecordID = record.ID
		ev.ContactsNotified = len(notified)
		ev.HasLocation = coords != nil
	})
	metrics.RecordSOS("dispatched")

	c.logger.Info("SOS dispatched",
		zap.String("record_id", record.ID),
		zap.Int("contacts", len(contacts)),
		zap.Int("notified", len(notified)),
		zap.Bool("has_location", coords != nil),
	)
}

func (c *Controller) fetchLocation(ctx context.Context, gen uint64) {
	coords := c.deps.Locator.Resolve(ctx)
	if coords == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.state != StateCounting {
		return
	}
	c.location = coords
}

func (c *Controller) emit(t events.Type, fill func(ev *events.Event)) {
	if c.deps.Events == nil {
		return
	}
	ev := events.New(t, c.clock.Now())
	if fill != nil {
		fill(&ev)
	}
	c.deps.Events.Emit(ev)
}

// Status 当前状态
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, Remaining: c.remaining}
}

// Close 停止进行中的倒计时（进程退出时调用，不发事件不写记录）
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCounting {
		return
	}
	c.invalidate()
	c.state = StateIdle
	c.remaining = 0
}
