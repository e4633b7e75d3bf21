package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultStreamMaxLen 事件流保留的大致条数
const DefaultStreamMaxLen = 1000

// StreamSink 把事件追加到 Redis Stream（本地事件日志）
type StreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamSink 创建事件流输出
func NewStreamSink(client *redis.Client, stream string) *StreamSink {
	return &StreamSink{
		client: client,
		stream: stream,
		maxLen: DefaultStreamMaxLen,
	}
}

// Publish XADD 事件
func (s *StreamSink) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":      string(ev.Type),
			"data":      string(data),
			"timestamp": ev.Timestamp,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add event to stream %s: %w", s.stream, err)
	}
	return nil
}
