package node

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/execution"
	"github.com/cuemby/burrow/pkg/handler"
	"github.com/cuemby/burrow/pkg/health"
	"github.com/cuemby/burrow/pkg/invocation"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/reconciler"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/transport"
	"github.com/cuemby/burrow/pkg/types"
)

// Node is a running grid node: the dispatch core plus the record
// store, wire listener, watchdog, and observability endpoints.
type Node struct {
	cfg    *config.Config
	id     string
	logger zerolog.Logger

	store     storage.Store
	registry  *invocation.Registry
	executors *execution.Service
	responder *responder
	sched     *scheduler.Scheduler
	server    *transport.Server
	watchdog  *reconciler.Reconciler
	broker    *events.Broker
	collector *MetricsCollector

	httpServer *http.Server

	active   atomic.Bool
	stopOnce sync.Once
}

// NewNode assembles a node from its configuration
func NewNode(cfg *config.Config) (*Node, error) {
	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})

	n := &Node{
		cfg:    cfg,
		id:     uuid.New().String(),
		logger: log.WithComponent("node"),
	}

	var err error
	if cfg.Storage.Persistent {
		n.store, err = storage.NewBoltStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
	} else {
		n.store = storage.NewMemoryStore()
	}

	n.broker = events.NewBroker()
	n.registry = invocation.NewRegistry()
	n.executors = execution.NewService()
	n.responder = newResponder()

	n.sched, err = scheduler.NewScheduler(scheduler.Config{
		PartitionWorkers:   cfg.Scheduler.PartitionWorkers(),
		GenericWorkers:     cfg.Scheduler.GenericWorkers(),
		QueueCapacity:      cfg.Scheduler.QueueCapacity,
		TerminationTimeout: cfg.Scheduler.TerminationTimeout,
		OperationHandler:   handler.NewHandler(n.store, n.registry, n.responder),
		ResponseHandler:    invocation.NewHandler(n.registry),
		Executors:          n.executors,
		Lifecycle:          &eventLifecycle{broker: n.broker},
		Active:             n.Active,
	})
	if err != nil {
		n.store.Close()
		return nil, err
	}

	n.server = transport.NewServer(cfg.Transport.ListenAddr, n.sched)
	n.watchdog = reconciler.NewReconciler(n.sched, cfg.Scheduler.RespawnPolicy, n.broker, n.Stop)
	n.collector = NewMetricsCollector(n.sched, n.registry, n.store)

	checks := health.NewService(5 * time.Second)
	checks.Register(health.NewWorkerCheck(n.sched))
	checks.Register(health.NewQueueCheck(n.sched, 0))

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/healthz", checks.Handler())
	n.httpServer = &http.Server{
		Addr:    cfg.Metrics.ListenAddr,
		Handler: mux,
	}

	return n, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() string {
	return n.id
}

// Active reports whether the node accepts work
func (n *Node) Active() bool {
	return n.active.Load()
}

// Scheduler exposes the dispatch core
func (n *Node) Scheduler() *scheduler.Scheduler {
	return n.sched
}

// Executors exposes the named executor service
func (n *Node) Executors() *execution.Service {
	return n.executors
}

// Events exposes the node's event broker
func (n *Node) Events() *events.Broker {
	return n.broker
}

// Start brings the node up: workers, watchdog, collector, wire
// listener, and the metrics endpoint.
func (n *Node) Start() error {
	n.broker.Start()
	n.sched.Start()
	n.watchdog.Start()
	n.collector.Start()

	if err := n.server.Start(); err != nil {
		n.Stop()
		return fmt.Errorf("failed to start transport: %w", err)
	}

	go func() {
		if err := n.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			n.logger.Error().Err(err).Msg("Metrics listener failed")
		}
	}()

	n.active.Store(true)
	n.publish(events.EventNodeStarted, "node started")
	n.logger.Info().
		Str("node_id", n.id).
		Str("transport_addr", n.server.Addr()).
		Str("metrics_addr", n.cfg.Metrics.ListenAddr).
		Msg("Node started")
	return nil
}

// Stop shuts the node down in dependency order: stop accepting work,
// close the wire, stop the watchdog and workers, fail pending
// invocations, then release storage.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		n.active.Store(false)
		n.publish(events.EventNodeShutdown, "node shutting down")

		n.server.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.httpServer.Shutdown(ctx); err != nil {
			n.logger.Warn().Err(err).Msg("Metrics listener did not stop cleanly")
		}
		cancel()

		n.watchdog.Stop()
		n.collector.Stop()
		n.sched.Stop()
		n.registry.Close()
		n.executors.Shutdown()
		n.responder.Close()

		if err := n.store.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("Record store did not close cleanly")
		}

		n.broker.Stop()
		n.logger.Info().Str("node_id", n.id).Msg("Node stopped")
	})
}

// Invoke submits an operation and blocks until its response arrives or
// the context is done.
func (n *Node) Invoke(ctx context.Context, op *types.Operation) (*types.Response, error) {
	inv := n.registry.Register(op)

	if err := n.sched.Submit(op); err != nil {
		n.registry.Complete(&types.Response{CallID: op.CallID, Err: err.Error()})
		return nil, fmt.Errorf("failed to submit operation: %w", err)
	}

	return inv.Await(ctx)
}

func (n *Node) publish(eventType events.EventType, message string) {
	n.broker.Publish(&events.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Message: message,
		Metadata: map[string]string{
			"node_id": n.id,
		},
	})
}

// eventLifecycle publishes worker starts and stops on the event broker
type eventLifecycle struct {
	broker *events.Broker
}

func (l *eventLifecycle) OnWorkerStart(info scheduler.WorkerInfo) {
	l.publish(events.EventWorkerStarted, info, "dispatch worker started")
}

func (l *eventLifecycle) OnWorkerStop(info scheduler.WorkerInfo) {
	l.publish(events.EventWorkerStopped, info, "dispatch worker stopped")
}

func (l *eventLifecycle) publish(eventType events.EventType, info scheduler.WorkerInfo, message string) {
	l.broker.Publish(&events.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Message: message,
		Metadata: map[string]string{
			"worker_id":   info.ID,
			"worker_kind": string(info.Kind),
		},
	})
}
