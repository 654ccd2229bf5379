// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courier-dev/courier/internal/store"
)

// TestMemoryStore_AppendOrder verifies turns come back in append order.
func TestMemoryStore_AppendOrder(t *testing.T) {
	st := store.NewMemoryStore()

	st.Append("chat-1", store.UserTurn("first"))
	st.Append("chat-1", store.AssistantTurn("second"))
	st.Append("chat-1", store.UserTurn("third"))

	turns := st.Snapshot("chat-1")
	require.Len(t, turns, 3)
	assert.Equal(t, store.UserTurn("first"), turns[0])
	assert.Equal(t, store.AssistantTurn("second"), turns[1])
	assert.Equal(t, store.UserTurn("third"), turns[2])
}

// TestMemoryStore_UnknownConversation verifies an id that was never written
// reads as empty.
func TestMemoryStore_UnknownConversation(t *testing.T) {
	st := store.NewMemoryStore()

	assert.Empty(t, st.Snapshot("never-seen"))
	assert.True(t, st.IsEmpty("never-seen"))
}

// TestMemoryStore_Reset verifies Reset discards history and leaves exactly
// one system turn.
func TestMemoryStore_Reset(t *testing.T) {
	st := store.NewMemoryStore()

	st.Append("chat-1", store.UserTurn("hello"))
	st.Append("chat-1", store.AssistantTurn("hi"))

	st.Reset("chat-1", "You are terse.")

	turns := st.Snapshot("chat-1")
	require.Len(t, turns, 1)
	assert.Equal(t, store.SystemTurn("You are terse."), turns[0])
	assert.False(t, st.IsEmpty("chat-1"))
}

// TestMemoryStore_Clear verifies Clear empties the conversation and that it
// is usable again afterwards.
func TestMemoryStore_Clear(t *testing.T) {
	st := store.NewMemoryStore()

	st.Append("chat-1", store.UserTurn("hello"))
	st.Clear("chat-1")

	assert.Empty(t, st.Snapshot("chat-1"))
	assert.True(t, st.IsEmpty("chat-1"))

	st.Append("chat-1", store.UserTurn("again"))
	require.Len(t, st.Snapshot("chat-1"), 1)
}

// TestMemoryStore_ClearIsPerConversation verifies Clear on one id does not
// touch another.
func TestMemoryStore_ClearIsPerConversation(t *testing.T) {
	st := store.NewMemoryStore()

	st.Append("chat-1", store.UserTurn("one"))
	st.Append("chat-2", store.UserTurn("two"))

	st.Clear("chat-1")

	assert.True(t, st.IsEmpty("chat-1"))
	require.Len(t, st.Snapshot("chat-2"), 1)
}

// TestMemoryStore_SnapshotIsStable verifies a snapshot does not observe
// later appends and cannot corrupt the store when mutated.
func TestMemoryStore_SnapshotIsStable(t *testing.T) {
	st := store.NewMemoryStore()

	st.Append("chat-1", store.UserTurn("hello"))

	snap := st.Snapshot("chat-1")
	st.Append("chat-1", store.AssistantTurn("hi"))
	require.Len(t, snap, 1)

	snap[0].Text = "mutated"
	assert.Equal(t, "hello", st.Snapshot("chat-1")[0].Text)
}

// TestMemoryStore_Concurrent verifies concurrent appends across many
// conversations all land, and per-conversation counts are exact.
func TestMemoryStore_Concurrent(t *testing.T) {
	st := store.NewMemoryStore()

	const (
		conversations = 32
		perWriter     = 50
	)

	var wg sync.WaitGroup
	for i := 0; i < conversations; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				st.Append(id, store.UserTurn("msg"))
			}
		}(fmt.Sprintf("chat-%d", i))
	}
	wg.Wait()

	for i := 0; i < conversations; i++ {
		assert.Len(t, st.Snapshot(fmt.Sprintf("chat-%d", i)), perWriter)
	}
}
