/*
Package types defines the core data structures used throughout Burrow.

This package contains the fundamental types of Burrow's domain model: node
addresses, operations, wire packets, invocation responses, and runnable
housekeeping tasks. These types are shared by the dispatch core, the
transport layer, the invocation registry, and the storage handlers.

# Core Types

Task variants (everything the dispatcher can queue):

  - Operation: deserialized in-process operation, bound to a partition or
    generic, optionally urgent or directed at a named executor
  - Packet: serialized envelope from the wire; flags select response vs.
    operation handling and urgent routing
  - Runnable: plain function scheduled alongside operations

Supporting types:

  - Address: host:port endpoint identity of a caller node
  - Response: outcome of a completed invocation, matched by call id
  - OperationKind: dispatch key for the operation handler (put, get,
    delete, noop)

All types are designed to be:
  - Serializable (JSON payload envelopes inside binary packet frames on
    the wire)
  - Cheap to route (flags and partition id inspected without payload
    deserialization)
  - Self-documenting (clear field names and comments)

# Partition Binding

An Operation or Packet with PartitionID >= 0 is partition-aware: it is
serialized on the single worker that owns that partition. PartitionID < 0
(GenericPartitionID) means the task may run on any generic worker.

# See Also

  - pkg/scheduler - Dispatch core consuming these types
  - pkg/transport - Wire codec for Packet and the payload envelopes
  - pkg/invocation - Call tracking built on Response
*/
package types
