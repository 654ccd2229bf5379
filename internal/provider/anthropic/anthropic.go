// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/courier-dev/courier/internal/provider"
	"github.com/courier-dev/courier/internal/store"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "claude-haiku-4-5"

// defaultMaxTokens bounds completion length; the Messages API requires an
// explicit value.
const defaultMaxTokens = 4096

// Config holds Anthropic provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.Completer using the Anthropic Messages API.
type Provider struct {
	client anthropicsdk.Client
	config Config
	health *provider.HealthTracker
}

// Compile-time interface check.
var _ provider.Completer = (*Provider)(nil)

// New creates a new Anthropic provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, courerr.New(courerr.CodeProviderRequestInvalid,
			"anthropic: missing api_key in config", courerr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	health, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: anthropicsdk.NewClient(opts...),
		config: cfg,
		health: health,
	}, nil
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Available(_ context.Context) bool {
	return p.health.IsHealthy()
}

func (p *Provider) Close() error { return nil }

// Complete performs a single non-streaming message request.
func (p *Provider) Complete(ctx context.Context, req provider.Request) (store.Turn, error) {
	params := buildParams(req)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		p.health.RecordFailure()
		return store.Turn{}, courerr.Wrapf(err, courerr.CodeProviderUpstreamFailure, "anthropic: message request")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	p.health.RecordSuccess()
	return store.AssistantTurn(text.String()), nil
}

// Stream opens a streaming message request and converts SDK events into
// provider events on the returned channel.
func (p *Provider) Stream(ctx context.Context, req provider.Request) (<-chan provider.Event, error) {
	params := buildParams(req)

	eventCh := make(chan provider.Event, 100)

	go func() {
		defer close(eventCh)
		p.streamChat(ctx, params, eventCh)
	}()

	return eventCh, nil
}

// buildParams converts a provider.Request into Anthropic SDK MessageNewParams.
// A leading system turn becomes the top-level system param; the Messages API
// does not accept system-role messages inline.
func buildParams(req provider.Request) anthropicsdk.MessageNewParams {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	system, rest := provider.SplitSystem(req.Turns)

	msgs := make([]anthropicsdk.MessageParam, 0, len(rest))
	for _, turn := range rest {
		switch turn.Role {
		case store.RoleAssistant:
			msgs = append(msgs, anthropicsdk.NewAssistantMessage(
				anthropicsdk.NewTextBlock(turn.Text),
			))
		case store.RoleSystem:
			// Out-of-position system turns can only appear after a Reset
			// race; fold them into the user side rather than fail the call.
			msgs = append(msgs, anthropicsdk.NewUserMessage(
				anthropicsdk.NewTextBlock(turn.Text),
			))
		default:
			msgs = append(msgs, anthropicsdk.NewUserMessage(
				anthropicsdk.NewTextBlock(turn.Text),
			))
		}
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(model),
		Messages:  msgs,
		MaxTokens: defaultMaxTokens,
	}

	if system != "" {
		params.System = []anthropicsdk.TextBlockParam{
			{Text: system},
		}
	}

	return params
}

// streamChat runs the streaming loop, converting SDK events into provider
// events. Sends select on ctx so an abandoned consumer cannot block this
// goroutine forever.
func (p *Provider) streamChat(ctx context.Context, params anthropicsdk.MessageNewParams, ch chan<- provider.Event) {
	stream := p.client.Messages.NewStreaming(ctx, params)

	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" {
				if !provider.Emit(ctx, ch, provider.Event{
					Type: provider.EventTextDelta,
					Text: event.Delta.Text,
				}) {
					return
				}
			}

		case "message_stop":
			p.health.RecordSuccess()
			provider.Emit(ctx, ch, provider.Event{Type: provider.EventDone})
			return
		}
	}

	if err := stream.Err(); err != nil {
		p.health.RecordFailure()
		provider.Emit(ctx, ch, provider.Event{
			Type:  provider.EventError,
			Error: err.Error(),
		})
		return
	}

	p.health.RecordSuccess()
	provider.Emit(ctx, ch, provider.Event{Type: provider.EventDone})
}
