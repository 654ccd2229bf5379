// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

// Package config loads and validates courier configuration from defaults,
// an optional YAML file, and COURIER_-prefixed environment variables.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	courerr "github.com/courier-dev/courier/pkg/errors"
)

// Config is the top-level courier configuration.
type Config struct {
	Telegram  TelegramConfig            `mapstructure:"telegram" yaml:"telegram"`
	Providers map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
	Models    ModelsConfig              `mapstructure:"models" yaml:"models"`
	Relay     RelayConfig               `mapstructure:"relay" yaml:"relay"`
	Logging   LoggingConfig             `mapstructure:"logging" yaml:"logging"`
}

// TelegramConfig holds bot credentials and polling behavior. Token may be an
// inline value or a keyring://service/key URI.
type TelegramConfig struct {
	Token          string `mapstructure:"token" yaml:"token"`
	PollTimeoutSec int    `mapstructure:"poll_timeout_sec" yaml:"poll_timeout_sec"`
}

// ProviderConfig holds credentials and endpoint for one completion provider.
// APIKey may be an inline value or a keyring://service/key URI.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// ModelsConfig controls model selection.
type ModelsConfig struct {
	Default  string   `mapstructure:"default" yaml:"default"`
	Failover []string `mapstructure:"failover" yaml:"failover"`
}

// RelayConfig controls conversation handling.
type RelayConfig struct {
	// EditEvery is the non-empty-fragment count between progress edits of
	// the streamed reply.
	EditEvery int `mapstructure:"edit_every" yaml:"edit_every"`

	// PlainTextChat treats non-command messages as chat input.
	PlainTextChat bool `mapstructure:"plain_text_chat" yaml:"plain_text_chat"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// SetDefaults installs courier's default values on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("telegram.poll_timeout_sec", 30)
	v.SetDefault("models.default", "openai/gpt-4.1-mini")
	v.SetDefault("relay.edit_every", 20)
	v.SetDefault("relay.plain_text_chat", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SetupEnv binds COURIER_-prefixed environment variables, so e.g.
// COURIER_TELEGRAM_TOKEN overrides telegram.token.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("COURIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, courerr.Errorf(courerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, courerr.Errorf(courerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, courerr.Errorf(courerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns a slice
// of all validation errors found, collecting all issues rather than
// stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateTelegram()...)
	errs = append(errs, c.validateModels()...)
	errs = append(errs, c.validateRelay()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateTelegram() []error {
	var errs []error

	if c.Telegram.Token == "" {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: telegram.token must not be empty"))
	}

	if c.Telegram.PollTimeoutSec < 0 || c.Telegram.PollTimeoutSec > 50 {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: telegram.poll_timeout_sec must be between 0 and 50, got %d",
			c.Telegram.PollTimeoutSec,
		))
	}

	return errs
}

func (c *Config) validateModels() []error {
	var errs []error

	if c.Models.Default == "" {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: models.default must not be empty"))
	} else if !strings.Contains(c.Models.Default, "/") {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: models.default must be in \"provider/model\" format, got %q",
			c.Models.Default,
		))
	} else if c.Providers != nil {
		// Only cross-reference providers when the providers section exists
		// in config; a nil map means defaults-only setups are still valid.
		providerName := providerFromModel(c.Models.Default)
		if _, ok := c.Providers[providerName]; !ok {
			errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
				"config: models.default %q references provider %q which is not configured",
				c.Models.Default, providerName,
			))
		}
	}

	for i, model := range c.Models.Failover {
		if !strings.Contains(model, "/") {
			errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
				"config: models.failover[%d] must be in \"provider/model\" format, got %q",
				i, model,
			))
			continue
		}
		if c.Providers != nil {
			providerName := providerFromModel(model)
			if _, ok := c.Providers[providerName]; !ok {
				errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
					"config: models.failover[%d] %q references provider %q which is not configured",
					i, model, providerName,
				))
			}
		}
	}

	return errs
}

func (c *Config) validateRelay() []error {
	var errs []error

	if c.Relay.EditEvery <= 0 {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: relay.edit_every must be greater than 0, got %d",
			c.Relay.EditEvery,
		))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: logging.level must be one of [debug, info, warn, error], got %q",
			c.Logging.Level,
		))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, courerr.Errorf(courerr.CodeConfigValidateInvalidValue,
			"config: logging.format must be one of [text, json], got %q",
			c.Logging.Format,
		))
	}

	return errs
}

// providerFromModel extracts the provider prefix from a "provider/model" string.
func providerFromModel(model string) string {
	if idx := strings.Index(model, "/"); idx > 0 {
		return model[:idx]
	}
	return model
}
