package storage

import (
	"sync"
	"sync/atomic"
)

// MemoryStore keeps entries in per-partition maps. The dispatch layer
// guarantees a single writer per partition; the per-shard mutex exists
// so reads and count sampling from other goroutines stay safe.
type MemoryStore struct {
	mu      sync.RWMutex
	shards  map[int32]*shard
	entries atomic.Int64
}

type shard struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shards: make(map[int32]*shard),
	}
}

func (s *MemoryStore) shardFor(partitionID int32, create bool) *shard {
	s.mu.RLock()
	sh, ok := s.shards[partitionID]
	s.mu.RUnlock()
	if ok || !create {
		return sh
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok = s.shards[partitionID]; ok {
		return sh
	}
	sh = &shard{data: make(map[string][]byte)}
	s.shards[partitionID] = sh
	return sh
}

// Put stores a value under key in the given partition
func (s *MemoryStore) Put(partitionID int32, key, value []byte) error {
	sh := s.shardFor(partitionID, true)

	stored := make([]byte, len(value))
	copy(stored, value)

	sh.mu.Lock()
	_, existed := sh.data[string(key)]
	sh.data[string(key)] = stored
	sh.mu.Unlock()

	if !existed {
		s.entries.Add(1)
	}
	return nil
}

// Get returns the value stored under key, ErrNotFound when absent
func (s *MemoryStore) Get(partitionID int32, key []byte) ([]byte, error) {
	sh := s.shardFor(partitionID, false)
	if sh == nil {
		return nil, ErrNotFound
	}

	sh.mu.RLock()
	value, ok := sh.data[string(key)]
	sh.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Delete removes key from the partition
func (s *MemoryStore) Delete(partitionID int32, key []byte) (bool, error) {
	sh := s.shardFor(partitionID, false)
	if sh == nil {
		return false, nil
	}

	sh.mu.Lock()
	_, existed := sh.data[string(key)]
	if existed {
		delete(sh.data, string(key))
	}
	sh.mu.Unlock()

	if existed {
		s.entries.Add(-1)
	}
	return existed, nil
}

// EntryCount returns the total number of stored entries
func (s *MemoryStore) EntryCount() int64 {
	return s.entries.Load()
}

// Close releases the store's resources
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.shards = make(map[int32]*shard)
	s.mu.Unlock()
	s.entries.Store(0)
	return nil
}
