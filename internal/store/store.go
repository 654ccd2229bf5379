// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

// Package store holds per-conversation turn history for the relay.
//
// A conversation is keyed by an opaque identifier supplied by the transport
// (for Telegram, the chat id). Histories are append-only except for Reset
// and Clear, which atomically replace the entire sequence. Turn order is
// significant: it is the literal context sent to the completion provider.
package store

// ConversationStore manages ordered turn histories keyed by conversation id.
// All operations are safe for concurrent use. None of them can fail short of
// memory exhaustion, so they do not return errors.
type ConversationStore interface {
	// Append adds turn to the end of the conversation's history, creating
	// an empty history first if the conversation is unknown.
	Append(id string, turn Turn)

	// Snapshot returns a copy of the current history. The returned slice is
	// stable against subsequent concurrent mutation of the conversation.
	Snapshot(id string) []Turn

	// Reset atomically clears the history and inserts exactly one system
	// turn containing systemText.
	Reset(id string, systemText string)

	// Clear atomically empties the history, including any system turn.
	Clear(id string)

	// IsEmpty reports whether the conversation has no turns.
	IsEmpty(id string) bool
}
