package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublishSubscribe tests event fan-out to subscribers
func TestPublishSubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(&Event{ID: "1", Type: EventWorkerDied, Message: "worker died"})

	for _, sub := range []Subscriber{sub1, sub2} {
		select {
		case ev := <-sub:
			assert.Equal(t, EventWorkerDied, ev.Type)
			assert.False(t, ev.Timestamp.IsZero())
		case <-time.After(5 * time.Second):
			t.Fatal("event never delivered")
		}
	}
}

// TestUnsubscribe tests that removed subscribers stop receiving
func TestUnsubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	// The channel is closed on unsubscribe
	_, open := <-sub
	require.False(t, open)
}

// TestSlowSubscriberDoesNotBlock tests the drop-on-full policy
func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	fast := b.Subscribe()

	// Overflow the slow subscriber's buffer
	for i := 0; i < 120; i++ {
		b.Publish(&Event{Type: EventSubmissionRejected})
	}

	// The fast subscriber drains and keeps receiving
	drained := 0
	deadline := time.After(5 * time.Second)
	for drained < 50 {
		select {
		case <-fast:
			drained++
		case <-deadline:
			t.Fatalf("drained only %d events", drained)
		}
	}

	assert.LessOrEqual(t, len(sub), cap(sub))
}
