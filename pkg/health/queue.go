package health

import (
	"context"
	"fmt"
	"time"
)

// QueueSource reports dispatch queue depths
type QueueSource interface {
	QueueSize() int
	PriorityQueueSize() int
	ResponseQueueSize() int
}

// QueueCheck fails when total queued work exceeds the threshold,
// which usually means workers cannot keep up with arrivals.
type QueueCheck struct {
	source    QueueSource
	threshold int
}

// NewQueueCheck creates a queue depth check. A threshold of zero or
// less uses the default of 10000 queued items.
func NewQueueCheck(source QueueSource, threshold int) *QueueCheck {
	if threshold <= 0 {
		threshold = 10000
	}
	return &QueueCheck{source: source, threshold: threshold}
}

// Name identifies the check
func (c *QueueCheck) Name() string {
	return "queues"
}

// Check reports unhealthy when queued work exceeds the threshold
func (c *QueueCheck) Check(ctx context.Context) Result {
	start := time.Now()

	depth := c.source.QueueSize() + c.source.PriorityQueueSize() + c.source.ResponseQueueSize()
	healthy := depth <= c.threshold

	message := fmt.Sprintf("%d queued", depth)
	if !healthy {
		message = fmt.Sprintf("%d queued (threshold %d)", depth, c.threshold)
	}

	return Result{
		Healthy:   healthy,
		Message:   message,
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}
