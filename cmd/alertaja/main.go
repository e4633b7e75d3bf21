package main

import (
	"fmt"
	"os"

	"alertaja/internal/config"
	"alertaja/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logFile string

	rootCmd = &cobra.Command{
		Use:   "alertaja",
		Short: "Alerte Já personal-safety core",
		Long: `Runs the disguise unlock state machine and the SOS countdown/dispatch flow,
either as a headless service for a device shell (MQTT) or as a terminal disguise.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stdout")
	rootCmd.AddCommand(serveCmd, tuiCmd, setupCmd, contactsCmd, pinCmd, historyCmd, stationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, *zap.Logger, error) {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. 初始化日志
	var log *zap.Logger
	if logFile != "" {
		log, err = logger.NewFile(cfg.Log.Level, logFile)
	} else {
		log, err = logger.New(cfg.Log.Level, cfg.Log.Format, "alertaja")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return cfg, log, nil
}
