package storage

import "errors"

// ErrNotFound is returned when a key has no entry in its partition
var ErrNotFound = errors.New("entry not found")

// Store is the partition-sharded record store the grid node serves.
// Writes to a partition arrive only from the dispatch worker owning that
// partition, so implementations see at most one writer per partition at
// any time.
type Store interface {
	// Put stores a value under key in the given partition
	Put(partitionID int32, key, value []byte) error

	// Get returns the value stored under key, ErrNotFound when absent
	Get(partitionID int32, key []byte) ([]byte, error)

	// Delete removes key from the partition. Deleting an absent key is
	// not an error; the bool reports whether an entry was removed.
	Delete(partitionID int32, key []byte) (bool, error)

	// EntryCount returns the total number of stored entries
	EntryCount() int64

	// Close releases the store's resources
	Close() error
}
