package health

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// WorkerSource reports dispatch workers that have died
type WorkerSource interface {
	DeadWorkers() []string
}

// WorkerCheck fails when any dispatch worker is dead
type WorkerCheck struct {
	source WorkerSource
}

// NewWorkerCheck creates a worker liveness check
func NewWorkerCheck(source WorkerSource) *WorkerCheck {
	return &WorkerCheck{source: source}
}

// Name identifies the check
func (c *WorkerCheck) Name() string {
	return "workers"
}

// Check reports unhealthy when dead workers exist
func (c *WorkerCheck) Check(ctx context.Context) Result {
	start := time.Now()

	dead := c.source.DeadWorkers()
	if len(dead) > 0 {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("dead workers: %s", strings.Join(dead, ", ")),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   "all workers alive",
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}
