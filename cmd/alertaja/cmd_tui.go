package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"alertaja/internal/events"
	"alertaja/internal/tui"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the disguise in the terminal",
	Long: `Shows the active disguise (calculator, notes or clock) in the terminal.
The SOS dashboard appears only after the unlock gesture. Logs go to --log-file
(default alertaja.log) because the terminal is taken by the interface.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	if logFile == "" {
		logFile = "alertaja.log"
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 界面转发器同时作为触觉反馈和事件输出
	bridge := tui.NewBridge()
	a, err := newApp(ctx, cfg, logger, appOptions{
		feedback: bridge,
		sinks:    []events.Sink{bridge},
	})
	if err != nil {
		logger.Error("Failed to create app", zap.Error(err))
		return err
	}
	defer a.close()

	stopBus := a.runBus(ctx)
	defer stopBus()

	if !a.profile.IsOnboarded(ctx) {
		return fmt.Errorf("onboarding not completed, run `alertaja setup` first")
	}
	if err := a.guard.Start(ctx); err != nil {
		return err
	}
	a.guard.SetViewListener(bridge.Refresh)

	// 2. 运行界面
	model := tui.NewModel(ctx, tui.Deps{
		Core:     a.guard,
		Contacts: a.storage,
		Stations: a.stations,
		Clock:    clockwork.NewRealClock(),
	})
	if err := bridge.Run(ctx, model); err != nil {
		logger.Error("Terminal interface failed", zap.Error(err))
		return err
	}
	return nil
}
