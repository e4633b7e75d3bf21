package main

import (
	"context"
	"fmt"
	"time"

	"alertaja/internal/config"
	"alertaja/internal/dispatch"
	"alertaja/internal/events"
	"alertaja/internal/location"
	"alertaja/internal/mqttbridge"
	"alertaja/internal/repository"
	"alertaja/internal/service"
	"alertaja/internal/sos"
	"alertaja/internal/stations"
	"alertaja/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// app 进程内组装好的组件
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	kv          store.KV
	redisClient *redis.Client // 事件流（可能与存储共用）
	ownRedis    bool
	mqtt        *mqttbridge.Client

	storage  *repository.Storage
	bus      *events.Bus
	stations *stations.Directory
	guard    *service.Guard
	profile  *service.Profile
}

// appOptions 前端相关的可选项
type appOptions struct {
	feedback sos.Feedback
	sinks    []events.Sink
}

// newApp 按配置创建存储、分发、定位和核心服务
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	// 1. 本地存储
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	a.storage = repository.NewStorage(a.kv, logger)

	// 2. MQTT 设备外壳桥接
	if cfg.MQTT.Enabled() {
		client, err := mqttbridge.Connect(cfg.MQTT, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect mqtt: %w", err)
		}
		a.mqtt = client
	}

	// 3. 事件总线
	a.bus = events.NewBus(events.DefaultBufferSize, logger)
	if cfg.Redis.EventStream != "" {
		if err := a.openEventStream(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.bus.Attach(events.NewStreamSink(a.redisClient, cfg.Redis.EventStream))
	}
	if a.mqtt != nil {
		a.bus.Attach(events.NewMQTTSink(a.mqtt, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS))
	}
	for _, s := range opts.sinks {
		a.bus.Attach(s)
	}

	// 4. 分发与定位
	launcher := a.newLauncher()
	dispatcher := dispatch.NewDispatcher(launcher, dispatch.Platform(cfg.Dispatch.Platform), logger)

	provider, err := location.NewProvider(cfg.Location, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create location provider: %w", err)
	}

	feedback := opts.feedback
	if feedback == nil && a.mqtt != nil {
		feedback = sos.NewMQTTFeedback(a.mqtt, cfg.MQTT.TopicPrefix, logger)
	}

	// 5. 核心服务
	a.stations = stations.NewDirectory(a.storage, logger)
	a.guard = service.NewGuard(clockwork.NewRealClock(), service.GuardDeps{
		Storage:    a.storage,
		Locator:    location.NewEnricher(provider, logger),
		Dispatcher: dispatcher,
		Stations:   a.stations,
		Feedback:   feedback,
		Events:     a.bus,
	}, logger)
	a.profile = service.NewProfile(a.storage, a.guard, cfg.SOS.PinLength, logger)

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Storage.Backend {
	case "redis":
		kv, err := store.OpenRedis(ctx, store.RedisOptions{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		}, a.cfg.Storage.Namespace, a.logger)
		if err != nil {
			return fmt.Errorf("failed to open redis store: %w", err)
		}
		a.kv = kv
		a.redisClient = kv.Client()
	default:
		kv, err := store.OpenBadger(store.BadgerOptions{
			Path:       a.cfg.Storage.Path,
			SyncWrites: a.cfg.Storage.SyncWrites,
		}, a.cfg.Storage.Namespace, a.logger)
		if err != nil {
			return fmt.Errorf("failed to open badger store: %w", err)
		}
		a.kv = kv
	}
	return nil
}

// openEventStream 事件流复用存储的 Redis 连接，否则单独连接
func (a *app) openEventStream(ctx context.Context) error {
	if a.redisClient != nil {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	a.redisClient = client
	a.ownRedis = true
	return nil
}

func (a *app) newLauncher() dispatch.Launcher {
	switch a.cfg.Dispatch.Launcher {
	case "mqtt":
		return dispatch.NewMQTTLauncher(a.mqtt, a.cfg.MQTT.TopicPrefix, a.cfg.MQTT.QoS, a.logger)
	case "webhook":
		return dispatch.NewWebhookLauncher(a.cfg.Dispatch.WebhookURL, a.cfg.Dispatch.Timeout, a.logger)
	}
	return dispatch.NewLogLauncher(a.logger)
}

// close 释放连接（逆序）
func (a *app) close() {
	if a.guard != nil {
		a.guard.Stop()
	}
	if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if a.ownRedis && a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Failed to close redis", zap.Error(err))
		}
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.logger.Error("Failed to close store", zap.Error(err))
		}
	}
}

// runBus 在后台投递事件，返回停止并等待剩余事件投递完的函数
func (a *app) runBus(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.bus.Run(ctx)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			a.logger.Warn("Event bus did not drain in time")
		}
	}
}
