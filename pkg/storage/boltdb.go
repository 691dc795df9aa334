package storage

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync/atomic"

	bolt "go.etcd.io/bbolt"
)

// BoltStore implements Store interface using BoltDB. Each partition
// gets its own bucket, created lazily on first write.
type BoltStore struct {
	db      *bolt.DB
	entries atomic.Int64
}

// NewBoltStore opens (or creates) a BoltDB-backed store under dataDir
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "burrow.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &BoltStore{db: db}

	// Recount entries from an existing database
	err = db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			s.entries.Add(int64(b.Stats().KeyN))
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	return s, nil
}

func partitionBucket(partitionID int32) []byte {
	name := make([]byte, 4)
	binary.LittleEndian.PutUint32(name, uint32(partitionID))
	return name
}

// Put stores a value under key in the given partition
func (s *BoltStore) Put(partitionID int32, key, value []byte) error {
	var created bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(partitionBucket(partitionID))
		if err != nil {
			return fmt.Errorf("failed to create bucket for partition %d: %w", partitionID, err)
		}
		created = b.Get(key) == nil
		return b.Put(key, value)
	})
	if err != nil {
		return err
	}
	if created {
		s.entries.Add(1)
	}
	return nil
}

// Get returns the value stored under key, ErrNotFound when absent
func (s *BoltStore) Get(partitionID int32, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(partitionBucket(partitionID))
		if b == nil {
			return ErrNotFound
		}
		data := b.Get(key)
		if data == nil {
			return ErrNotFound
		}
		// Copy out: BoltDB data is only valid during the transaction
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete removes key from the partition
func (s *BoltStore) Delete(partitionID int32, key []byte) (bool, error) {
	var existed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(partitionBucket(partitionID))
		if b == nil {
			return nil
		}
		existed = b.Get(key) != nil
		if !existed {
			return nil
		}
		return b.Delete(key)
	})
	if err != nil {
		return false, err
	}
	if existed {
		s.entries.Add(-1)
	}
	return existed, nil
}

// EntryCount returns the total number of stored entries
func (s *BoltStore) EntryCount() int64 {
	return s.entries.Load()
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
