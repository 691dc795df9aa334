package queue

import (
	"errors"
	"sync"

	ring "github.com/eapache/queue"
)

var (
	// ErrRejected is returned when an offer exceeds the queue's capacity bound
	ErrRejected = errors.New("queue capacity exceeded")

	// ErrInterrupted is returned from Take after the queue has been interrupted
	ErrInterrupted = errors.New("queue interrupted")
)

// Blocking is a many-writer FIFO whose Take blocks until an item arrives.
// A zero capacity means unbounded. Interrupt wakes all blocked takers and
// is sticky: once interrupted, every subsequent Take that finds the queue
// empty returns ErrInterrupted.
type Blocking struct {
	mu          sync.Mutex
	notEmpty    *sync.Cond
	items       *ring.Queue
	capacity    int
	interrupted bool
}

// NewBlocking creates a blocking FIFO. capacity <= 0 means unbounded.
func NewBlocking(capacity int) *Blocking {
	b := &Blocking{
		items:    ring.New(),
		capacity: capacity,
	}
	b.notEmpty = sync.NewCond(&b.mu)
	return b
}

// Offer appends a task to the queue. It never blocks; when the queue is
// bounded and full it returns ErrRejected.
func (b *Blocking) Offer(task any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capacity > 0 && b.items.Length() >= b.capacity {
		return ErrRejected
	}

	b.items.Add(task)
	b.notEmpty.Signal()
	return nil
}

// Take removes and returns the oldest task, blocking while the queue is
// empty. After Interrupt it returns ErrInterrupted instead of blocking.
func (b *Blocking) Take() (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.items.Length() == 0 {
		if b.interrupted {
			return nil, ErrInterrupted
		}
		b.notEmpty.Wait()
	}

	task := b.items.Remove()
	return task, nil
}

// Interrupt wakes all blocked takers. The interrupt is sticky.
func (b *Blocking) Interrupt() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.interrupted = true
	b.notEmpty.Broadcast()
}

// Len returns the number of queued tasks
func (b *Blocking) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.Length()
}

// Priority is a many-writer FIFO whose Poll never blocks. Urgent tasks are
// kept here and drained to exhaustion before ordinary work resumes.
type Priority struct {
	mu    sync.Mutex
	items *ring.Queue
}

// NewPriority creates an empty priority queue
func NewPriority() *Priority {
	return &Priority{items: ring.New()}
}

// Offer appends a task. Priority queues are always unbounded.
func (p *Priority) Offer(task any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items.Add(task)
}

// Poll removes and returns the oldest task, or reports false when empty
func (p *Priority) Poll() (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.items.Length() == 0 {
		return nil, false
	}
	return p.items.Remove(), true
}

// Len returns the number of queued tasks
func (p *Priority) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Length()
}
