// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package relay

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/courier-dev/courier/internal/provider"
	"github.com/courier-dev/courier/internal/store"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// accumulator collects the fragments of one in-flight streaming completion.
// It is owned exclusively by the handler that created it and never shared.
type accumulator struct {
	joined   strings.Builder
	nonEmpty int

	// placeholderID is the transport message being progressively edited.
	placeholderID string
}

func (a *accumulator) add(fragment string) {
	a.joined.WriteString(fragment)
	if strings.TrimSpace(fragment) != "" {
		a.nonEmpty++
	}
}

// streamCompletion drives one streaming completion end to end and produces
// exactly one assistant turn:
//
//  1. Append the user turn and snapshot the history as request context.
//  2. Send the placeholder reply and capture its message id.
//  3. Open the stream and consume fragments in arrival order, editing the
//     placeholder with the full joined text after every EditEvery-th
//     non-empty fragment. Edits are issued inline from this single consumer,
//     so no edit overlaps a prior edit of the same message.
//  4. On stream end, issue one final edit with the complete joined text,
//     then append the assistant turn to the store.
//
// A mid-stream transport or provider error aborts the remaining steps. The
// already-appended user turn is retained; history is not rolled back.
func (r *Relay) streamCompletion(ctx context.Context, in Inbound, content string) error {
	// Completion id correlates the log lines of one stream across handlers.
	log := r.log.With("completion", uuid.New().String(), "conversation", in.ConversationID)

	// Cancelling on return releases the provider's stream goroutine when an
	// abort (failed edit, provider error) stops consumption mid-stream.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.store.Append(in.ConversationID, store.UserTurn(content))
	turns := r.store.Snapshot(in.ConversationID)

	placeholderID, err := r.transport.Reply(ctx, in.ConversationID, in.MessageID, placeholderText)
	if err != nil {
		return courerr.Wrap(err, courerr.CodeChannelSendFailure, "sending placeholder",
			courerr.FieldConversationID(in.ConversationID))
	}

	completer, model, err := r.registry.Resolve(ctx, r.opts.Model)
	if err != nil {
		return err
	}

	log.Debug("opening stream", "provider", completer.Name(), "model", model, "turns", len(turns))

	events, err := completer.Stream(ctx, provider.Request{Model: model, Turns: turns})
	if err != nil {
		return courerr.Wrap(err, courerr.CodeProviderUpstreamFailure, "opening stream",
			courerr.FieldProvider(completer.Name()), courerr.FieldModel(model))
	}

	acc := &accumulator{placeholderID: placeholderID}

	for ev := range events {
		switch ev.Type {
		case provider.EventTextDelta:
			counted := strings.TrimSpace(ev.Text) != ""
			acc.add(ev.Text)
			if counted && acc.nonEmpty%r.opts.EditEvery == 0 {
				if err := r.transport.Edit(ctx, in.ConversationID, acc.placeholderID, acc.joined.String()); err != nil {
					return courerr.Wrap(err, courerr.CodeChannelEditFailure, "progress edit",
						courerr.FieldConversationID(in.ConversationID),
						courerr.FieldMessageID(acc.placeholderID))
				}
			}
		case provider.EventError:
			return courerr.New(courerr.CodeProviderUpstreamFailure, ev.Error,
				courerr.FieldProvider(completer.Name()), courerr.FieldModel(model))
		case provider.EventDone:
			// Terminal; the channel closes right after.
		}
	}

	// Final edit is unconditional so the tail since the last threshold edit
	// is always visible, including the zero-fragment case.
	final := acc.joined.String()
	if err := r.transport.Edit(ctx, in.ConversationID, acc.placeholderID, final); err != nil {
		return courerr.Wrap(err, courerr.CodeChannelEditFailure, "final edit",
			courerr.FieldConversationID(in.ConversationID),
			courerr.FieldMessageID(acc.placeholderID))
	}

	r.store.Append(in.ConversationID, store.AssistantTurn(final))
	log.Info("completion finished", "fragments", acc.nonEmpty, "chars", len(final))
	return nil
}
