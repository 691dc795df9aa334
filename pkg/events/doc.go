/*
Package events provides an in-memory event broker for Burrow's pub/sub messaging.

The events package implements a lightweight event bus for broadcasting node
events to interested subscribers. It supports asynchronous event delivery with
buffered channels, enabling loose coupling between Burrow components for
lifecycle changes, notifications, and monitoring.

# Architecture

Burrow's event system provides non-blocking pub/sub messaging with buffered
channels:

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Event Broker                  │          │
	│  │  - In-memory message bus                   │          │
	│  │  - Topic-agnostic (all events broadcast)   │          │
	│  │  - Non-blocking publish                    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Event Distribution                │          │
	│  │                                            │          │
	│  │  Publisher → Event Channel (buffer: 100)   │          │
	│  │       ↓                                    │          │
	│  │  Broadcast Loop                            │          │
	│  │       ↓                                    │          │
	│  │  Subscriber Channels (buffer: 50 each)     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Event Types                      │          │
	│  │                                            │          │
	│  │  Worker Events:                            │          │
	│  │    - worker.started, worker.stopped        │          │
	│  │    - worker.died, worker.respawned         │          │
	│  │                                            │          │
	│  │  Node Events:                              │          │
	│  │    - node.started, node.shutdown           │          │
	│  │                                            │          │
	│  │  Dispatch Events:                          │          │
	│  │    - submission.rejected                   │          │
	│  │    - packet.dropped                        │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	broker.Publish(&events.Event{
		Type:    events.EventWorkerDied,
		Message: "partition worker 3 exited after panic",
	})

	for event := range sub {
		fmt.Println(event.Type, event.Message)
	}

Slow subscribers never block the broker: when a subscriber's buffer is
full, events destined for it are dropped.

# See Also

  - pkg/reconciler - Publishes worker.died / worker.respawned
  - pkg/node - Publishes node lifecycle events
*/
package events
