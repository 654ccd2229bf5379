// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// UpdateHandler processes one inbound message. Handlers run on their own
// goroutine; the transport delivers messages for a single chat in arrival
// order but handlers for the same chat may still overlap.
type UpdateHandler func(ctx context.Context, msg *Message)

// Poller drives the getUpdates long-poll loop and dispatches one handler
// goroutine per inbound message.
type Poller struct {
	client      *Client
	handle      UpdateHandler
	pollTimeout time.Duration
	log         *slog.Logger
}

// pollErrorBackoff is the pause after a failed getUpdates call before retrying.
const pollErrorBackoff = 3 * time.Second

// NewPoller creates a Poller. A nil logger falls back to slog.Default.
func NewPoller(client *Client, handle UpdateHandler, pollTimeout time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		client:      client,
		handle:      handle,
		pollTimeout: pollTimeout,
		log:         log,
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried
// after a backoff; handler panics are recovered so one bad message cannot
// take the poller down.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		updates, err := p.client.GetUpdates(ctx, offset, int(p.pollTimeout.Seconds()))
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			p.log.Warn("poll failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollErrorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			msg := update.Message
			go p.safeHandle(ctx, msg)
		}
	}
}

func (p *Poller) safeHandle(ctx context.Context, msg *Message) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("handler panic", "chat", msg.Chat.ID, "panic", rec)
		}
	}()
	p.handle(ctx, msg)
}
