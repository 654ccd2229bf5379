// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/courier-dev/courier/internal/channel/telegram"
	"github.com/courier-dev/courier/internal/config"
	"github.com/courier-dev/courier/internal/provider"
	anthropicprov "github.com/courier-dev/courier/internal/provider/anthropic"
	googleprov "github.com/courier-dev/courier/internal/provider/google"
	openaiprov "github.com/courier-dev/courier/internal/provider/openai"
	"github.com/courier-dev/courier/internal/relay"
	"github.com/courier-dev/courier/internal/secrets"
	"github.com/courier-dev/courier/internal/store"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// Bot holds all wired subsystems and manages their lifecycle.
type Bot struct {
	Client   *telegram.Client
	Poller   *telegram.Poller
	Registry *provider.Registry
	Relay    *relay.Relay
	BotName  string
}

// providerFactory builds a provider.Completer from a resolved API key and
// its ProviderConfig.
type providerFactory func(apiKey string, cfg config.ProviderConfig) (provider.Completer, error)

// builtinProviderFactories maps provider names to their constructors.
var builtinProviderFactories = map[string]providerFactory{
	"openai": func(apiKey string, cfg config.ProviderConfig) (provider.Completer, error) {
		return openaiprov.New(openaiprov.Config{APIKey: apiKey, BaseURL: cfg.Endpoint})
	},
	"anthropic": func(apiKey string, cfg config.ProviderConfig) (provider.Completer, error) {
		return anthropicprov.New(anthropicprov.Config{APIKey: apiKey, BaseURL: cfg.Endpoint})
	},
	"google": func(apiKey string, cfg config.ProviderConfig) (provider.Completer, error) {
		return googleprov.New(googleprov.Config{APIKey: apiKey})
	},
}

// WireBot creates all subsystems and wires them together.
func WireBot(ctx context.Context, cfg *config.Config) (*Bot, error) {
	secretStore := secrets.NewKeyringStore()

	// 1. Telegram client — resolve the token and confirm it with getMe so
	// a bad credential fails at startup, not on the first message.
	token, err := secrets.Resolve(secretStore, cfg.Telegram.Token)
	if err != nil {
		return nil, courerr.Wrap(err, courerr.CodeCLISetupFailure, "resolving telegram token")
	}

	client, err := telegram.NewClient(telegram.Config{Token: token})
	if err != nil {
		return nil, err
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		return nil, courerr.Wrap(err, courerr.CodeCLISetupFailure, "validating telegram token")
	}
	slog.Info("telegram token accepted", "bot", me.Username)

	// 2. Provider registry.
	registry := provider.NewRegistry()
	for name, pc := range cfg.Providers {
		factory, ok := builtinProviderFactories[name]
		if !ok {
			slog.Warn("unknown provider in config, skipping", "provider", name)
			continue
		}

		apiKey, err := secrets.Resolve(secretStore, pc.APIKey)
		if err != nil {
			return nil, courerr.Wrapf(err, courerr.CodeCLISetupFailure, "resolving api key for %s", name)
		}

		p, err := factory(apiKey, pc)
		if err != nil {
			return nil, courerr.Wrapf(err, courerr.CodeCLISetupFailure, "creating provider %s", name)
		}
		registry.Register(name, p)
		slog.Info("registered provider", "provider", name)
	}

	if cfg.Models.Default != "" {
		if err := registry.SetDefault(cfg.Models.Default); err != nil {
			_ = registry.Close()
			return nil, courerr.Wrapf(err, courerr.CodeCLISetupFailure, "setting default model: %s", cfg.Models.Default)
		}
	}
	if len(cfg.Models.Failover) > 0 {
		if err := registry.SetFailover(cfg.Models.Failover); err != nil {
			_ = registry.Close()
			return nil, courerr.Wrap(err, courerr.CodeCLISetupFailure, "setting failover chain")
		}
	}

	// 3. Conversation store and relay.
	conversations := store.NewMemoryStore()
	r := relay.New(conversations, registry, telegram.NewTransport(client), relay.Options{
		EditEvery:     cfg.Relay.EditEvery,
		PlainTextChat: cfg.Relay.PlainTextChat,
	}, slog.Default())

	// 4. Poller — one handler goroutine per inbound message.
	botName := me.Username
	handler := func(ctx context.Context, msg *telegram.Message) {
		in := relay.Inbound{
			ConversationID: formatID(msg.Chat.ID),
			MessageID:      formatID(msg.MessageID),
			Text:           msg.Text,
		}
		if err := r.HandleMessage(ctx, in, botName); err != nil {
			slog.Error("message handling failed", "chat", msg.Chat.ID, "error", err)
		}
	}

	poller := telegram.NewPoller(client, handler,
		time.Duration(cfg.Telegram.PollTimeoutSec)*time.Second, slog.Default())

	return &Bot{
		Client:   client,
		Poller:   poller,
		Registry: registry,
		Relay:    r,
		BotName:  botName,
	}, nil
}

// Run polls for updates and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	return b.Poller.Run(ctx)
}

// Close releases all resources held by the bot.
func (b *Bot) Close() error {
	return b.Registry.Close()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
