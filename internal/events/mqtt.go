package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// publisher MQTT 发布能力
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink 把事件发布到 <prefix>/status 供设备外壳刷新界面
type MQTTSink struct {
	client publisher
	topic  string
	qos    byte
}

// NewMQTTSink 创建 MQTT 输出
func NewMQTTSink(client publisher, topicPrefix string, qos byte) *MQTTSink {
	return &MQTTSink{
		client: client,
		topic:  topicPrefix + "/status",
		qos:    qos,
	}
}

// Publish 发布事件
func (s *MQTTSink) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.client.Publish(s.topic, s.qos, false, payload)
}
