package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alertaja/internal/consumer"
	"alertaja/internal/metrics"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the core headless, driven by the device shell over MQTT",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 组装服务
	a, err := newApp(ctx, cfg, logger, appOptions{})
	if err != nil {
		logger.Error("Failed to create app", zap.Error(err))
		return err
	}
	defer a.close()

	stopBus := a.runBus(ctx)
	defer stopBus()

	if err := a.guard.Start(ctx); err != nil {
		logger.Error("Failed to start guard", zap.Error(err))
		return err
	}

	// 2. 本地指标
	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		logger.Info("Metrics server listening", zap.String("addr", cfg.Metrics.Addr))
	}

	// 3. 设备外壳输入
	serviceErrChan := make(chan error, 1)
	var inputConsumer *consumer.InputConsumer
	if a.mqtt != nil {
		inputConsumer = consumer.NewInputConsumer(a.mqtt, a.guard, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, logger)
		go func() {
			if err := inputConsumer.Start(ctx); err != nil {
				serviceErrChan <- err
			}
		}()
	} else {
		logger.Warn("MQTT not configured, core is idle until stopped")
	}

	// 4. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case err = <-serviceErrChan:
		logger.Error("Service error", zap.Error(err))
	}
	cancel()

	if inputConsumer != nil {
		inputConsumer.Stop()
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		if serr := metricsServer.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Metrics server shutdown failed", zap.Error(serr))
		}
	}

	logger.Info("Alertaja core stopped")
	return err
}
