package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sink 事件输出
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc 函数适配器
type SinkFunc func(ctx context.Context, ev Event) error

// Publish 调用函数
func (f SinkFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// DefaultBufferSize 事件队列长度
const DefaultBufferSize = 256

// Bus 事件总线：Emit 不阻塞调用方，后台协程按顺序投递到所有输出
type Bus struct {
	mu     sync.RWMutex
	sinks  []Sink
	queue  chan Event
	logger *zap.Logger
}

// NewBus 创建事件总线
func NewBus(bufferSize int, logger *zap.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		queue:  make(chan Event, bufferSize),
		logger: logger.Named("events"),
	}
}

// Attach 添加输出
func (b *Bus) Attach(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Emit 入队事件，队列满时丢弃并记录日志
func (b *Bus) Emit(ev Event) {
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn("Event queue full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("event_id", ev.ID),
		)
	}
}

// Run 投递事件直到 ctx 取消，取消后把队列中剩余事件投递完
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case ev := <-b.queue:
			b.deliver(ctx, ev)
		case <-ctx.Done():
			b.drain()
			return
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case ev := <-b.queue:
			b.deliver(context.Background(), ev)
		default:
			return
		}
	}
}

func (b *Bus) deliver(ctx context.Context, ev Event) {
	b.mu.RLock()
	sinks := append([]Sink(nil), b.sinks...)
	b.mu.RUnlock()

	for _, s := range sinks {
		if err := s.Publish(ctx, ev); err != nil {
			// 记录错误，继续投递到其他输出
			b.logger.Warn("Failed to publish event",
				zap.String("type", string(ev.Type)),
				zap.String("event_id", ev.ID),
				zap.Error(err),
			)
		}
	}
}
