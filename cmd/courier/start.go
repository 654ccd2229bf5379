// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/courier-dev/courier/internal/config"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the courier bot",
		Long:  "Load configuration, connect to Telegram, and relay messages until interrupted.",
		RunE:  runStart,
	}
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		// Fall back to whatever file initViper discovered, if any.
		cfgPath = viper.ConfigFileUsed()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	initLogger(cfg.Logging, viper.GetBool("verbose"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := WireBot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wiring bot: %w", err)
	}
	defer func() {
		if err := bot.Close(); err != nil {
			slog.Warn("shutdown cleanup failed", "error", err)
		}
	}()

	slog.Info("courier started", "bot", bot.BotName, "default_model", cfg.Models.Default)

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("polling: %w", err)
	}

	slog.Info("courier stopped")
	return nil
}
