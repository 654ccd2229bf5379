// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/courier-dev/courier/internal/provider"
	"github.com/courier-dev/courier/internal/store"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gpt-4.1-mini"

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.Completer using the OpenAI Chat Completions API.
type Provider struct {
	client openaisdk.Client
	config Config
	health *provider.HealthTracker
}

// Compile-time interface check.
var _ provider.Completer = (*Provider)(nil)

// New creates a new OpenAI provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, courerr.New(courerr.CodeProviderRequestInvalid,
			"openai: missing api_key in config", courerr.FieldProvider("openai"))
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
		client: openaisdk.NewClient(opts...),
		config: cfg,
		health: health,
	}, nil
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Available(_ context.Context) bool {
	return p.health.IsHealthy()
}

func (p *Provider) Close() error { return nil }

// Complete performs a single non-streaming chat completion.
func (p *Provider) Complete(ctx context.Context, req provider.Request) (store.Turn, error) {
	params := buildParams(req)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		p.health.RecordFailure()
		return store.Turn{}, courerr.Wrapf(err, courerr.CodeProviderUpstreamFailure, "openai: completion request")
	}
	if len(resp.Choices) == 0 {
		p.health.RecordFailure()
		return store.Turn{}, courerr.New(courerr.CodeProviderResponseInvalid,
			"openai: completion returned no choices")
	}

	p.health.RecordSuccess()
	return store.AssistantTurn(resp.Choices[0].Message.Content), nil
}

// Stream opens a streaming chat completion and converts SDK chunks into
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

// buildParams converts a provider.Request into OpenAI SDK ChatCompletionNewParams.
func buildParams(req provider.Request) openaisdk.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Turns))
	for _, turn := range req.Turns {
		switch turn.Role {
		case store.RoleSystem:
			msgs = append(msgs, openaisdk.SystemMessage(turn.Text))
		case store.RoleAssistant:
			msgs = append(msgs, openaisdk.AssistantMessage(turn.Text))
		default:
			msgs = append(msgs, openaisdk.UserMessage(turn.Text))
		}
	}

	return openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: msgs,
	}
}

// streamChat runs the streaming loop, converting SDK chunks into provider
// events. Sends select on ctx so an abandoned consumer cannot block this
// goroutine forever.
func (p *Provider) streamChat(ctx context.Context, params openaisdk.ChatCompletionNewParams, ch chan<- provider.Event) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)

	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				if !provider.Emit(ctx, ch, provider.Event{
					Type: provider.EventTextDelta,
					Text: choice.Delta.Content,
				}) {
					return
				}
			}
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
