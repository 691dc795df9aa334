/*
Package storage holds the partition-sharded record data a Burrow node serves.

The Store interface is partition addressed: every Put, Get, and Delete
names the partition the key lives in. The dispatch layer routes all
operations for a partition to the worker owning it, so a store never
sees two concurrent writers for the same partition. Reads and entry
count sampling may still arrive from other goroutines (metrics
collector, health checks), which is why both implementations stay
internally synchronized.

# Implementations

MemoryStore:
  - Per-partition map shards created lazily on first write
  - Values copied in and out so callers cannot alias stored bytes
  - Entry count kept in an atomic counter for cheap sampling

BoltStore:
  - File: <dataDir>/burrow.db
  - One BoltDB bucket per partition, named by the little-endian
    partition id, created lazily on first write
  - Raw key/value bytes, no serialization layer
  - Entry count recounted from bucket stats at open, then maintained
    incrementally

	┌───────────────────── STORE LAYOUT ─────────────────────┐
	│                                                         │
	│   partition 0   ─►  shard / bucket 0   {key: value}     │
	│   partition 1   ─►  shard / bucket 1   {key: value}     │
	│   partition n   ─►  shard / bucket n   {key: value}     │
	│                                                         │
	│   single writer per partition (dispatch invariant)      │
	│   concurrent readers via RWMutex / MVCC snapshots       │
	└─────────────────────────────────────────────────────────┘

# Usage

	store := storage.NewMemoryStore()
	defer store.Close()

	err := store.Put(7, []byte("user:42"), []byte(`{"name":"amy"}`))
	value, err := store.Get(7, []byte("user:42"))
	removed, err := store.Delete(7, []byte("user:42"))

Get returns ErrNotFound for absent keys. Delete of an absent key is not
an error; the bool reports whether an entry was removed.

# Integration Points

This package integrates with:

  - pkg/handler: operation handlers execute put/get/delete against the store
  - pkg/node: chooses the backend from config and owns the lifecycle
  - pkg/metrics: StoredEntries gauge is fed from EntryCount
*/
package storage
