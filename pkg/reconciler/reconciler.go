package reconciler

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
)

// DefaultInterval is the time between watchdog sweeps
const DefaultInterval = 2 * time.Second

// WorkerSupervisor exposes the dead-worker view and the respawn
// operation the watchdog drives.
type WorkerSupervisor interface {
	DeadWorkers() []string
	RespawnWorker(id string) error
}

// Reconciler watches for dead dispatch workers and applies the
// configured respawn policy: respawn relaunches them with exponential
// backoff, escalate triggers node shutdown, none only reports.
type Reconciler struct {
	supervisor WorkerSupervisor
	policy     config.RespawnPolicy
	broker     *events.Broker
	escalate   func()
	interval   time.Duration
	logger     zerolog.Logger

	mu       sync.Mutex
	backoffs map[string]backoff.BackOff
	nextTry  map[string]time.Time
	reported map[string]bool

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewReconciler creates a worker watchdog. The escalate callback is
// invoked once when the policy is escalate and a worker dies; it may
// be nil for other policies.
func NewReconciler(supervisor WorkerSupervisor, policy config.RespawnPolicy, broker *events.Broker, escalate func()) *Reconciler {
	return &Reconciler{
		supervisor: supervisor,
		policy:     policy,
		broker:     broker,
		escalate:   escalate,
		interval:   DefaultInterval,
		logger:     log.WithComponent("reconciler"),
		backoffs:   make(map[string]backoff.BackOff),
		nextTry:    make(map[string]time.Time),
		reported:   make(map[string]bool),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins the watchdog loop
func (r *Reconciler) Start() {
	go r.run()
}

// Stop stops the watchdog and waits for the loop to exit
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}

func (r *Reconciler) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reconcile()
		case <-r.stopCh:
			return
		}
	}
}

// reconcile performs one watchdog sweep
func (r *Reconciler) reconcile() {
	dead := r.supervisor.DeadWorkers()
	if len(dead) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range dead {
		if !r.reported[id] {
			r.reported[id] = true
			r.logger.Error().Str("worker_id", id).Msg("Worker died")
			r.publish(events.EventWorkerDied, id, "dispatch worker died")
		}

		switch r.policy {
		case config.RespawnPolicyRespawn:
			r.respawn(id)
		case config.RespawnPolicyEscalate:
			r.logger.Error().Str("worker_id", id).Msg("Escalating dead worker to node shutdown")
			if r.escalate != nil {
				escalate := r.escalate
				r.escalate = nil
				go escalate()
			}
		case config.RespawnPolicyNone:
			// Reported above, nothing else to do
		}
	}
}

func (r *Reconciler) respawn(id string) {
	now := time.Now()
	if next, ok := r.nextTry[id]; ok && now.Before(next) {
		return
	}

	bo, ok := r.backoffs[id]
	if !ok {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 500 * time.Millisecond
		eb.MaxInterval = 30 * time.Second
		eb.MaxElapsedTime = 0
		bo = eb
		r.backoffs[id] = bo
	}

	if err := r.supervisor.RespawnWorker(id); err != nil {
		wait := bo.NextBackOff()
		r.nextTry[id] = now.Add(wait)
		r.logger.Error().Err(err).
			Str("worker_id", id).
			Dur("retry_in", wait).
			Msg("Failed to respawn worker")
		return
	}

	delete(r.backoffs, id)
	delete(r.nextTry, id)
	delete(r.reported, id)
	r.logger.Info().Str("worker_id", id).Msg("Worker respawned")
	r.publish(events.EventWorkerRespawned, id, "dispatch worker respawned")
}

func (r *Reconciler) publish(eventType events.EventType, workerID, message string) {
	if r.broker == nil {
		return
	}
	r.broker.Publish(&events.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Message: message,
		Metadata: map[string]string{
			"worker_id": workerID,
		},
	})
}
