// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/courier-dev/courier/internal/channel/telegram"
	"github.com/courier-dev/courier/internal/config"
	"github.com/courier-dev/courier/internal/secrets"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the Telegram token, configured providers, and print the effective configuration.",
		RunE:  runDoctor,
	}

	cmd.Flags().Bool("show-config", false, "print the effective configuration (secrets redacted)")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = viper.ConfigFileUsed()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	cfg, cfgErr := config.Load(cfgPath)

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Config", func() string { return checkConfig(cfgPath, cfgErr) }},
		{"Telegram", func() string { return checkTelegram(ctx, cfg) }},
		{"Providers", func() string { return checkProviders(cfg) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	if cfg == nil {
		return nil
	}

	if show, _ := cmd.Flags().GetBool("show-config"); show {
		out, err := yaml.Marshal(redact(cfg))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s", out)
	}

	return nil
}

func checkConfig(path string, err error) string {
	if err != nil {
		return "FAIL: " + err.Error()
	}
	if path == "" {
		return "ok (defaults and environment only)"
	}
	return "ok (" + path + ")"
}

func checkTelegram(ctx context.Context, cfg *config.Config) string {
	if cfg == nil {
		return "SKIP: config did not load"
	}

	token, err := secrets.Resolve(secrets.NewKeyringStore(), cfg.Telegram.Token)
	if err != nil {
		return "FAIL: " + err.Error()
	}

	client, err := telegram.NewClient(telegram.Config{Token: token})
	if err != nil {
		return "FAIL: " + err.Error()
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		return "FAIL: " + err.Error()
	}
	return "ok (@" + me.Username + ")"
}

func checkProviders(cfg *config.Config) string {
	if cfg == nil {
		return "SKIP: config did not load"
	}
	if len(cfg.Providers) == 0 {
		return "none configured"
	}

	names := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		status := "ok"
		if pc.APIKey == "" {
			status = "missing api_key"
		}
		names = append(names, name+" ("+status+")")
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// redact replaces credential values with a placeholder for display.
func redact(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Telegram.Token != "" {
		out.Telegram.Token = "<redacted>"
	}
	out.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			pc.APIKey = "<redacted>"
		}
		out.Providers[name] = pc
	}
	return &out
}
