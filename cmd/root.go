package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/psds-microservice/report-service/internal/application"
	"github.com/psds-microservice/report-service/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "report-service",
	Short: "Beaton client reports: Telegram intake bot, staff console bot and read-only HTTP API",
	RunE:  runBots,
}

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "Run both Telegram bots together with the HTTP API (default)",
	RunE:  runBots,
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run only the HTTP API (health, reports, dashboard, metrics)",
	RunE:  runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(botsCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
}

// setup загружает конфиг и логгер, общий для всех команд.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, application.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runBots(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	app, err := application.NewBots(ctx, cfg, log)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	app, err := application.NewAPI(cfg, log)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
