// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

// Package relay wires the conversation store, the completion providers, and
// the messaging transport together: it interprets user commands and drives
// streaming completions into progressively-edited transport messages.
package relay

import (
	"context"
	"log/slog"
	"strings"

	"github.com/courier-dev/courier/internal/provider"
	"github.com/courier-dev/courier/internal/store"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// Transport is the outbound surface the relay needs from the messaging
// channel. Message and conversation ids are opaque strings owned by the
// transport.
type Transport interface {
	// Send delivers an untargeted message to the conversation and returns
	// the new message's id.
	Send(ctx context.Context, conversationID, text string) (string, error)

	// Reply delivers a message addressed as a reply to replyTo and returns
	// the new message's id.
	Reply(ctx context.Context, conversationID, replyTo, text string) (string, error)

	// Edit replaces the text of a previously sent message in place.
	Edit(ctx context.Context, conversationID, messageID, text string) error
}

// Inbound is one user message delivered by the transport.
type Inbound struct {
	ConversationID string
	MessageID      string
	Text           string
}

// Options tunes relay behavior.
type Options struct {
	// Model is a "provider/model" ref; empty selects the registry default.
	Model string

	// EditEvery is the non-empty-fragment count between progress edits
	// during a streaming completion. Zero selects DefaultEditEvery.
	EditEvery int

	// PlainTextChat treats non-command messages as chat input instead of
	// ignoring them.
	PlainTextChat bool
}

// DefaultEditEvery is the default progress-edit threshold.
const DefaultEditEvery = 20

// placeholderText is the immediate reply that is later edited in place with
// streamed output.
const placeholderText = "💭"

const (
	replyPromptSet    = "Prompt set."
	replyCleared      = "Chat histories cleared."
	replyEmptyHistory = "Empty chat history."
	replyFailure      = "Something went wrong, please try again."
)

// Relay dispatches inbound messages to the store, providers, and transport.
type Relay struct {
	store     store.ConversationStore
	registry  *provider.Registry
	transport Transport
	opts      Options
	log       *slog.Logger
}

// New creates a Relay. A nil logger falls back to slog.Default.
func New(st store.ConversationStore, reg *provider.Registry, tr Transport, opts Options, log *slog.Logger) *Relay {
	if opts.EditEvery <= 0 {
		opts.EditEvery = DefaultEditEvery
	}
	if log == nil {
		log = slog.Default()
	}
	return &Relay{
		store:     st,
		registry:  reg,
		transport: tr,
		opts:      opts,
		log:       log,
	}
}

// HandleMessage processes one inbound message end to end. Errors are
// returned for the transport's dispatch loop to log; they never affect
// other conversations.
func (r *Relay) HandleMessage(ctx context.Context, in Inbound, botName string) error {
	cmd, ok := ParseCommand(in.Text, botName)
	if !ok {
		if !r.opts.PlainTextChat || strings.TrimSpace(in.Text) == "" {
			return nil
		}
		cmd = Command{Kind: KindChat, Arg: in.Text}
	}

	switch cmd.Kind {
	case KindHelp:
		return r.handleHelp(ctx, in)
	case KindPrompt:
		return r.handlePrompt(ctx, in, cmd.Arg)
	case KindChat:
		return r.handleChat(ctx, in, cmd.Arg)
	case KindView:
		return r.handleView(ctx, in)
	case KindClear:
		return r.handleClear(ctx, in)
	}

	return courerr.Errorf(courerr.CodeRelayCommandInvalid, "unhandled command kind %d", cmd.Kind)
}

func (r *Relay) handleHelp(ctx context.Context, in Inbound) error {
	// Help replies untargeted; every other reply addresses the triggering message.
	_, err := r.transport.Send(ctx, in.ConversationID, HelpText)
	return courerr.Wrap(err, courerr.CodeChannelSendFailure, "sending help text",
		courerr.FieldConversationID(in.ConversationID))
}

func (r *Relay) handlePrompt(ctx context.Context, in Inbound, prompt string) error {
	r.log.Info("set prompt", "conversation", in.ConversationID, "prompt", prompt)

	r.store.Reset(in.ConversationID, prompt)

	_, err := r.transport.Reply(ctx, in.ConversationID, in.MessageID, replyPromptSet)
	return courerr.Wrap(err, courerr.CodeChannelSendFailure, "confirming prompt",
		courerr.FieldConversationID(in.ConversationID))
}

func (r *Relay) handleChat(ctx context.Context, in Inbound, content string) error {
	if strings.TrimSpace(content) == "" {
		_, err := r.transport.Reply(ctx, in.ConversationID, in.MessageID,
			"Nothing to chat about. Usage: /chat <text>")
		return courerr.Wrap(err, courerr.CodeChannelSendFailure, "rejecting empty chat",
			courerr.FieldConversationID(in.ConversationID))
	}

	r.log.Info("chat", "conversation", in.ConversationID, "content", content)

	if err := r.streamCompletion(ctx, in, content); err != nil {
		r.log.Error("chat failed", "conversation", in.ConversationID, "error", err)
		r.notifyFailure(ctx, in)
		return err
	}
	return nil
}

func (r *Relay) handleView(ctx context.Context, in Inbound) error {
	turns := r.store.Snapshot(in.ConversationID)

	content := replyEmptyHistory
	if len(turns) > 0 {
		lines := make([]string, len(turns))
		for i, turn := range turns {
			lines[i] = string(turn.Role) + ": " + strings.TrimSpace(turn.Text)
		}
		content = strings.Join(lines, "\n\n")
	}

	_, err := r.transport.Reply(ctx, in.ConversationID, in.MessageID, content)
	return courerr.Wrap(err, courerr.CodeChannelSendFailure, "sending history",
		courerr.FieldConversationID(in.ConversationID))
}

func (r *Relay) handleClear(ctx context.Context, in Inbound) error {
	r.store.Clear(in.ConversationID)

	_, err := r.transport.Reply(ctx, in.ConversationID, in.MessageID, replyCleared)
	return courerr.Wrap(err, courerr.CodeChannelSendFailure, "confirming clear",
		courerr.FieldConversationID(in.ConversationID))
}

// notifyFailure sends a best-effort error notice. Delivery failures are
// logged, not returned.
func (r *Relay) notifyFailure(ctx context.Context, in Inbound) {
	if _, err := r.transport.Reply(ctx, in.ConversationID, in.MessageID, replyFailure); err != nil {
		r.log.Warn("failure notice undeliverable", "conversation", in.ConversationID, "error", err)
	}
}
