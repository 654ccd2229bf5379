// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package store

import (
	"hash/fnv"
	"sync"
)

// shardCount is the number of independent lock shards. Conversations hash
// to a shard by id, so unrelated conversations contend only when they land
// on the same shard.
const shardCount = 16

// Compile-time interface check.
var _ ConversationStore = (*MemoryStore)(nil)

// MemoryStore is a volatile ConversationStore keeping histories in process
// memory. Histories are created lazily on first reference and live for the
// lifetime of the process; there is no eviction and no persistence.
//
// Locking is sharded by conversation id rather than process-wide, so
// handlers for unrelated conversations do not serialize on a single mutex.
// Within one conversation every operation holds that conversation's shard
// lock for its full duration, which preserves the single-writer guarantee.
type MemoryStore struct {
	shards [shardCount]shard
}

type shard struct {
	mu        sync.Mutex
	histories map[string][]Turn
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i].histories = make(map[string][]Turn)
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Append(id string, turn Turn) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.histories[id] = append(sh.histories[id], turn)
}

func (s *MemoryStore) Snapshot(id string) []Turn {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	history := sh.histories[id]
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

func (s *MemoryStore) Reset(id string, systemText string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.histories[id] = []Turn{SystemTurn(systemText)}
}

func (s *MemoryStore) Clear(id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.histories[id] = nil
}

func (s *MemoryStore) IsEmpty(id string) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return len(sh.histories[id]) == 0
}
