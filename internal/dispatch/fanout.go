package dispatch

import (
	"context"
	"sync"

	"alertaja/internal/metrics"
	"alertaja/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher 告警分发：每个联系人独立发起短信、WhatsApp、Telegram 意图
// 每个意图只尝试一次，不重试；一个渠道失败不影响其他渠道
type Dispatcher struct {
	launcher Launcher
	platform Platform
	logger   *zap.Logger
}

// NewDispatcher 创建分发器
func NewDispatcher(launcher Launcher, platform Platform, logger *zap.Logger) *Dispatcher {
	if platform == "" {
		platform = PlatformAndroid
	}
	return &Dispatcher{
		launcher: launcher,
		platform: platform,
		logger:   logger.Named("dispatch"),
	}
}

// issue 先询问能否打开再打开，任何错误都视为未发起
func (d *Dispatcher) issue(ctx context.Context, channel Channel, contactID, url string) bool {
	ok, err := d.launcher.CanOpen(ctx, url)
	if err == nil && ok {
		err = d.launcher.Open(ctx, url)
	}

	issued := err == nil && ok
	metrics.RecordDispatch(string(channel), issued)

	if err != nil {
		// 记录错误，继续处理其他渠道，不中断
		d.logger.Warn("Failed to issue intent",
			zap.String("channel", string(channel)),
			zap.String("contact_id", contactID),
			zap.Error(err),
		)
	} else if !ok {
		d.logger.Warn("Intent cannot be opened on device",
			zap.String("channel", string(channel)),
			zap.String("contact_id", contactID),
		)
	}
	return issued
}

// FanOut 向所有联系人并发发起意图，等待全部尝试完成
// 返回短信意图已发起的联系人 ID（按联系人顺序）
func (d *Dispatcher) FanOut(ctx context.Context, contacts []models.EmergencyContact, message string) []string {
	smsIssued := make([]bool, len(contacts))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for i, c := range contacts {
		i, c := i, c
		g.Go(func() error {
			issued := d.issue(ctx, ChannelSMS, c.ID, SMSURL(d.platform, c.Phone, message))
			mu.Lock()
			smsIssued[i] = issued
			mu.Unlock()
			return nil
		})

		if c.HasWhatsApp() {
			g.Go(func() error {
				d.issue(ctx, ChannelWhatsApp, c.ID, WhatsAppURL(*c.WhatsApp, message))
				return nil
			})
		}

		if c.HasTelegram() {
			g.Go(func() error {
				d.issue(ctx, ChannelTelegram, c.ID, TelegramURL(*c.Telegram, message))
				return nil
			})
		}
	}
	_ = g.Wait()

	notified := make([]string, 0, len(contacts))
	for i, c := range contacts {
		if smsIssued[i] {
			notified = append(notified, c.ID)
		}
	}

	d.logger.Info("SOS fan-out attempted",
		zap.Int("contacts", len(contacts)),
		zap.Int("notified", len(notified)),
	)
	return notified
}

// Call 直接拨号
func (d *Dispatcher) Call(ctx context.Context, phone string) bool {
	return d.issue(ctx, ChannelCall, "", CallURL(phone))
}

// Message 直接发短信
func (d *Dispatcher) Message(ctx context.Context, phone, message string) bool {
	return d.issue(ctx, ChannelSMS, "", SMSURL(d.platform, phone, message))
}
