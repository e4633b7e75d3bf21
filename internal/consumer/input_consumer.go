package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"alertaja/internal/models"
	"alertaja/internal/mqttbridge"

	"go.uber.org/zap"
)

// 设备外壳发来的命令
const (
	CommandTriggerSOS     = "trigger_sos"
	CommandCancelSOS      = "cancel_sos"
	CommandLock           = "lock"
	CommandSetDisguise    = "set_disguise"
	CommandCallContact    = "call_contact"
	CommandMessageContact = "message_contact"
	CommandCallStation    = "call_station"
	CommandCallEmergency  = "call_emergency"
)

// Command 命令消息
type Command struct {
	Command  string `json:"command"`
	Disguise string `json:"disguise,omitempty"`
	ID       string `json:"id,omitempty"`
}

// guard 核心服务
type guard interface {
	HandleInput(ev models.InputEvent) bool
	TriggerSOS(ctx context.Context) bool
	CancelSOS() bool
	Lock()
	SetDisguise(ctx context.Context, d models.DisguiseType) error
	CallContact(ctx context.Context, id string) (bool, error)
	MessageContact(ctx context.Context, id string) (bool, error)
	CallStation(ctx context.Context, id string) (bool, error)
	CallEmergency(ctx context.Context, service string) (bool, error)
}

// subscriber MQTT 订阅能力
type subscriber interface {
	Subscribe(topic string, qos byte, handler mqttbridge.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// InputConsumer 消费设备外壳的输入事件（<prefix>/input）和命令（<prefix>/command）
type InputConsumer struct {
	client       subscriber
	guard        guard
	inputTopic   string
	commandTopic string
	qos          byte
	logger       *zap.Logger
}

// NewInputConsumer 创建输入消费者
func NewInputConsumer(client subscriber, g guard, topicPrefix string, qos byte, logger *zap.Logger) *InputConsumer {
	return &InputConsumer{
		client:       client,
		guard:        g,
		inputTopic:   topicPrefix + "/input",
		commandTopic: topicPrefix + "/command",
		qos:          qos,
		logger:       logger.Named("consumer"),
	}
}

// Start 订阅主题并阻塞到 ctx 取消
func (c *InputConsumer) Start(ctx context.Context) error {
	if err := c.client.Subscribe(c.inputTopic, c.qos, c.handleInput); err != nil {
		return fmt.Errorf("failed to subscribe to input topic: %w", err)
	}
	if err := c.client.Subscribe(c.commandTopic, c.qos, c.handleCommand); err != nil {
		return fmt.Errorf("failed to subscribe to command topic: %w", err)
	}

	c.logger.Info("Input consumer started",
		zap.String("input_topic", c.inputTopic),
		zap.String("command_topic", c.commandTopic),
	)

	// 等待上下文取消
	<-ctx.Done()
	return nil
}

// Stop 取消订阅
func (c *InputConsumer) Stop() {
	if err := c.client.Unsubscribe(c.inputTopic, c.commandTopic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("Input consumer stopped")
}

// handleInput 处理伪装界面输入事件
func (c *InputConsumer) handleInput(topic string, payload []byte) error {
	var ev models.InputEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal input event: %w", err)
	}
	if ev.Kind == "" {
		return fmt.Errorf("input event without kind")
	}

	// 不记录按键内容
	c.logger.Debug("Received input event", zap.String("kind", string(ev.Kind)))

	c.guard.HandleInput(ev)
	return nil
}

// handleCommand 处理面板命令
func (c *InputConsumer) handleCommand(topic string, payload []byte) error {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	ctx := context.Background()
	c.logger.Debug("Received command", zap.String("command", cmd.Command))

	switch cmd.Command {
	case CommandTriggerSOS:
		if !c.guard.TriggerSOS(ctx) {
			c.logger.Info("SOS trigger ignored")
		}
	case CommandCancelSOS:
		if !c.guard.CancelSOS() {
			c.logger.Info("SOS cancel ignored")
		}
	case CommandLock:
		c.guard.Lock()
	case CommandSetDisguise:
		d, err := models.ParseDisguise(cmd.Disguise)
		if err != nil {
			return err
		}
		return c.guard.SetDisguise(ctx, d)
	case CommandCallContact:
		_, err := c.guard.CallContact(ctx, cmd.ID)
		return err
	case CommandMessageContact:
		_, err := c.guard.MessageContact(ctx, cmd.ID)
		return err
	case CommandCallStation:
		_, err := c.guard.CallStation(ctx, cmd.ID)
		return err
	case CommandCallEmergency:
		_, err := c.guard.CallEmergency(ctx, cmd.ID)
		return err
	default:
		return fmt.Errorf("unknown command: %q", cmd.Command)
	}
	return nil
}
