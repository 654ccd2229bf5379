// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package google

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/courier-dev/courier/internal/provider"
	"github.com/courier-dev/courier/internal/store"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gemini-2.5-flash"

// Config holds Google provider configuration.
type Config struct {
	APIKey string
}

// Provider implements provider.Completer using the Google Gemini API.
type Provider struct {
	client *genai.Client
	config Config
	health *provider.HealthTracker
}

// Compile-time interface check.
var _ provider.Completer = (*Provider)(nil)

// New creates a new Google provider. Returns an error if the API key is missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, courerr.New(courerr.CodeProviderRequestInvalid,
			"google: missing api_key in config", courerr.FieldProvider("google"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, courerr.Wrapf(err, courerr.CodeProviderUpstreamFailure, "google: creating client")
	}

	health, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: client,
		config: cfg,
		health: health,
	}, nil
}

func (p *Provider) Name() string { return "google" }

func (p *Provider) Available(_ context.Context) bool {
	return p.health.IsHealthy()
}

func (p *Provider) Close() error { return nil }

// Complete performs a single non-streaming generation.
func (p *Provider) Complete(ctx context.Context, req provider.Request) (store.Turn, error) {
	model, contents, config := buildRequest(req)

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		p.health.RecordFailure()
		return store.Turn{}, courerr.Wrapf(err, courerr.CodeProviderUpstreamFailure, "google: generate request")
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}

	p.health.RecordSuccess()
	return store.AssistantTurn(text.String()), nil
}

// Stream opens a streaming generation and converts SDK responses into
// provider events on the returned channel.
func (p *Provider) Stream(ctx context.Context, req provider.Request) (<-chan provider.Event, error) {
	model, contents, config := buildRequest(req)

	eventCh := make(chan provider.Event, 100)

	go func() {
		defer close(eventCh)
		p.streamChat(ctx, model, contents, config, eventCh)
	}()

	return eventCh, nil
}

// buildRequest converts a provider.Request into genai call arguments. A
// leading system turn becomes the SystemInstruction; the Gemini API does not
// accept system-role contents inline.
func buildRequest(req provider.Request) (string, []*genai.Content, *genai.GenerateContentConfig) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	system, rest := provider.SplitSystem(req.Turns)

	contents := make([]*genai.Content, 0, len(rest))
	for _, turn := range rest {
		role := "user"
		if turn.Role == store.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role: role,
			Parts: []*genai.Part{
				{Text: turn.Text},
			},
		})
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: system},
			},
		}
	}

	return model, contents, config
}

// streamChat runs the streaming loop, converting SDK responses into provider
// events. Sends select on ctx so an abandoned consumer cannot block this
// goroutine forever.
func (p *Provider) streamChat(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	ch chan<- provider.Event,
) {
	for result, err := range p.client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			p.health.RecordFailure()
			provider.Emit(ctx, ch, provider.Event{
				Type:  provider.EventError,
				Error: err.Error(),
			})
			return
		}

		for _, candidate := range result.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					if !provider.Emit(ctx, ch, provider.Event{
						Type: provider.EventTextDelta,
						Text: part.Text,
					}) {
						return
					}
				}
			}
		}
	}

	p.health.RecordSuccess()
	provider.Emit(ctx, ch, provider.Event{Type: provider.EventDone})
}
