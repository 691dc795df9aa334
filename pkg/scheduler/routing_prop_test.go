package scheduler

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func Test_PartitionOwnerInRange(t *testing.T) {
	s, _, _ := newTestScheduler(t, func(cfg *Config) {
		cfg.PartitionWorkers = 4
	})

	properties := gopter.NewProperties(nil)

	properties.Property("owner index is always a valid partition worker", prop.ForAll(
		func(partitionID int32) bool {
			owner := s.partitionOwner(partitionID)
			return owner >= 0 && owner < len(s.partitionWorkers)
		},
		gen.Int32Range(0, 1<<30),
	))

	properties.Property("routing is deterministic", prop.ForAll(
		func(partitionID int32) bool {
			return s.partitionOwner(partitionID) == s.partitionOwner(partitionID)
		},
		gen.Int32Range(0, 1<<30),
	))

	properties.TestingRun(t)
}

func Test_QueuesFollowOwnership(t *testing.T) {
	s, _, _ := newTestScheduler(t, func(cfg *Config) {
		cfg.PartitionWorkers = 4
	})

	properties := gopter.NewProperties(nil)

	// Every operation bound to a partition must land in the queue pair of
	// the single worker that owns it, otherwise per-partition ordering breaks.
	properties.Property("same partition always maps to the same queue pair", prop.ForAll(
		func(partitionID int32) bool {
			w1, p1 := s.queuesFor(partitionID)
			w2, p2 := s.queuesFor(partitionID)
			owner := s.partitionOwner(partitionID)
			return w1 == w2 && p1 == p2 &&
				w1 == s.partitionWorkers[owner].work &&
				p1 == s.partitionWorkers[owner].priority
		},
		gen.Int32Range(0, 1<<30),
	))

	properties.Property("congruent partitions share a worker", prop.ForAll(
		func(partitionID int32) bool {
			p := int32(len(s.partitionWorkers))
			w1, _ := s.queuesFor(partitionID)
			w2, _ := s.queuesFor(partitionID + p)
			return w1 == w2
		},
		gen.Int32Range(0, 1<<29),
	))

	properties.TestingRun(t)
}
