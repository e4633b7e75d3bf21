package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Launcher 深链发起器（由设备外壳实际打开链接）
type Launcher interface {
	// CanOpen 设备是否能处理该链接
	CanOpen(ctx context.Context, url string) (bool, error)
	// Open 打开链接（发起意图，不保证送达）
	Open(ctx context.Context, url string) error
}

// LogLauncher 只记录日志的发起器（无设备外壳时使用）
type LogLauncher struct {
	logger *zap.Logger
}

// NewLogLauncher 创建日志发起器
func NewLogLauncher(logger *zap.Logger) *LogLauncher {
	return &LogLauncher{logger: logger.Named("launcher")}
}

// CanOpen 总是可以
func (l *LogLauncher) CanOpen(ctx context.Context, url string) (bool, error) {
	return true, nil
}

// Open 记录意图
func (l *LogLauncher) Open(ctx context.Context, url string) error {
	l.logger.Info("Intent issued", zap.String("url", url))
	return nil
}

// publisher MQTT 发布能力（mqttbridge.Client 实现）
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	IsConnected() bool
}

// IntentMessage 发给设备外壳的意图消息
type IntentMessage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// MQTTLauncher 通过 MQTT 把意图交给设备外壳
type MQTTLauncher struct {
	client publisher
	topic  string
	qos    byte
	logger *zap.Logger
}

// NewMQTTLauncher 创建 MQTT 发起器，意图发布到 <prefix>/intent
func NewMQTTLauncher(client publisher, topicPrefix string, qos byte, logger *zap.Logger) *MQTTLauncher {
	return &MQTTLauncher{
		client: client,
		topic:  topicPrefix + "/intent",
		qos:    qos,
		logger: logger.Named("launcher"),
	}
}

// CanOpen 设备外壳在线即可
func (l *MQTTLauncher) CanOpen(ctx context.Context, url string) (bool, error) {
	return l.client.IsConnected(), nil
}

// Open 发布意图
func (l *MQTTLauncher) Open(ctx context.Context, url string) error {
	msg := IntentMessage{
		ID:        uuid.New().String(),
		URL:       url,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	if err := l.client.Publish(l.topic, l.qos, false, payload); err != nil {
		return err
	}

	l.logger.Debug("Intent published",
		zap.String("topic", l.topic),
		zap.String("intent_id", msg.ID),
	)
	return nil
}

// canOpenResponse webhook 响应
type canOpenResponse struct {
	CanOpen bool `json:"canOpen"`
}

// WebhookLauncher 通过 HTTP webhook 把意图交给设备外壳
type WebhookLauncher struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewWebhookLauncher 创建 webhook 发起器（单次请求，不重试）
func NewWebhookLauncher(baseURL string, timeout time.Duration, logger *zap.Logger) *WebhookLauncher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookLauncher{
		httpClient: client,
		logger:     logger.Named("launcher"),
	}
}

// CanOpen 询问设备外壳能否处理链接
func (l *WebhookLauncher) CanOpen(ctx context.Context, url string) (bool, error) {
	var result canOpenResponse
	resp, err := l.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"url": url}).
		SetResult(&result).
		Post("/intents/can-open")
	if err != nil {
		return false, fmt.Errorf("failed to call can-open webhook: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("can-open webhook returned status %d", resp.StatusCode())
	}
	return result.CanOpen, nil
}

// Open 请求设备外壳打开链接
func (l *WebhookLauncher) Open(ctx context.Context, url string) error {
	resp, err := l.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"url": url}).
		Post("/intents/open")
	if err != nil {
		return fmt.Errorf("failed to call open webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("open webhook returned status %d", resp.StatusCode())
	}
	return nil
}
