// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

// Package provider defines the completion-engine boundary the relay talks
// to, plus the registry that routes "provider/model" references to a
// concrete adapter.
package provider

import (
	"context"

	"github.com/courier-dev/courier/internal/store"
)

// Completer is the core interface for completion providers.
type Completer interface {
	Name() string
	Available(ctx context.Context) bool

	// Complete performs a single non-streaming completion and returns the
	// finished assistant turn.
	Complete(ctx context.Context, req Request) (store.Turn, error)

	// Stream opens a streaming completion. The returned channel delivers
	// text fragments in order and is closed after a terminal EventDone or
	// EventError. Fragments may be empty or whitespace-only; consumers
	// must tolerate this.
	Stream(ctx context.Context, req Request) (<-chan Event, error)

	Close() error
}

// Request carries the ordered conversation context for one completion.
// An empty Model selects the adapter's (or registry's) default.
type Request struct {
	Model string
	Turns []store.Turn
}

// EventType defines the type of streaming event.
type EventType string

const (
	EventTextDelta EventType = "text_delta"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// Event is a single streaming response event.
type Event struct {
	Type  EventType
	Text  string
	Error string
}

// Emit delivers one event unless ctx is done first, reporting whether the
// send happened. Stream goroutines must use it for every send: the consumer
// may abandon the channel mid-stream, and a bare send would block this
// goroutine forever once the channel buffer fills.
func Emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// SplitSystem separates a leading system turn from the rest of the history.
// Adapters whose APIs take the system prompt out of band (Anthropic, Google)
// use this; OpenAI-style APIs pass system turns inline.
func SplitSystem(turns []store.Turn) (system string, rest []store.Turn) {
	if len(turns) > 0 && turns[0].Role == store.RoleSystem {
		return turns[0].Text, turns[1:]
	}
	return "", turns
}
