package sos

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Haptic 触觉反馈类型
type Haptic string

const (
	HapticWarning Haptic = "warning" // 开始倒计时
	HapticTick    Haptic = "tick"    // 每秒一次
	HapticSuccess Haptic = "success" // 取消
)

// Feedback 触觉反馈输出
type Feedback interface {
	Haptic(kind Haptic)
}

// NopFeedback 无反馈
type NopFeedback struct{}

// Haptic 忽略
func (NopFeedback) Haptic(Haptic) {}

// FeedbackFunc 函数适配器
type FeedbackFunc func(kind Haptic)

// Haptic 调用函数
func (f FeedbackFunc) Haptic(kind Haptic) { f(kind) }

// publisher MQTT 发布能力
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTFeedback 通过 MQTT 让设备外壳振动（发布到 <prefix>/haptic，QoS 0，尽力而为）
type MQTTFeedback struct {
	client publisher
	topic  string
	logger *zap.Logger
}

// NewMQTTFeedback 创建 MQTT 触觉反馈
func NewMQTTFeedback(client publisher, topicPrefix string, logger *zap.Logger) *MQTTFeedback {
	return &MQTTFeedback{
		client: client,
		topic:  topicPrefix + "/haptic",
		logger: logger.Named("haptic"),
	}
}

// Haptic 发布反馈，失败只记录日志
func (f *MQTTFeedback) Haptic(kind Haptic) {
	payload, err := json.Marshal(map[string]string{"kind": string(kind)})
	if err != nil {
		f.logger.Warn("Failed to marshal haptic feedback",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return
	}

	if err := f.client.Publish(f.topic, 0, false, payload); err != nil {
		f.logger.Warn("Failed to publish haptic feedback",
			zap.String("topic", f.topic),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
