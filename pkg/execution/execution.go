package execution

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/fault"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/scheduler"
)

// ErrShutdown is returned by Submit after the pool has been shut down
var ErrShutdown = errors.New("executor is shut down")

// Service manages named executor pools. It satisfies the scheduler's
// executor registry for operations that name an executor.
type Service struct {
	mu     sync.RWMutex
	pools  map[string]*Pool
	logger zerolog.Logger
	down   bool
}

// NewService creates an empty executor service
func NewService() *Service {
	return &Service{
		pools:  make(map[string]*Pool),
		logger: log.WithComponent("execution"),
	}
}

// Register creates and starts a pool with the given worker count.
// Registering an existing name returns the existing pool.
func (s *Service) Register(name string, workers int) *Pool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pools[name]; ok {
		return p
	}

	p := newPool(name, workers, s.logger)
	s.pools[name] = p
	s.logger.Info().Str("executor", name).Int("workers", workers).Msg("Executor registered")
	return p
}

// Get resolves a pool by name, nil when unknown
func (s *Service) Get(name string) scheduler.Executor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[name]
	if !ok {
		return nil
	}
	return p
}

// Shutdown stops every pool and waits for their workers to drain
func (s *Service) Shutdown() {
	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return
	}
	s.down = true
	pools := make([]*Pool, 0, len(s.pools))
	for _, p := range s.pools {
		pools = append(pools, p)
	}
	s.mu.Unlock()

	for _, p := range pools {
		p.shutdown()
	}
}

// Pool is a fixed-size worker pool draining an unbounded task queue
type Pool struct {
	name   string
	tasks  *queue.Blocking
	logger zerolog.Logger

	wg   sync.WaitGroup
	mu   sync.Mutex
	down bool
}

func newPool(name string, workers int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		name:   name,
		tasks:  queue.NewBlocking(0),
		logger: logger.With().Str("executor", name).Logger(),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues a task for the pool's workers
func (p *Pool) Submit(fn func()) error {
	p.mu.Lock()
	down := p.down
	p.mu.Unlock()
	if down {
		return ErrShutdown
	}

	if err := p.tasks.Offer(fn); err != nil {
		return fmt.Errorf("failed to enqueue executor task: %w", err)
	}
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		task, err := p.tasks.Take()
		if err != nil {
			return
		}

		fn, ok := task.(func())
		if !ok {
			continue
		}
		p.runTask(fn)
	}
}

func (p *Pool) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			flt := fault.Inspect(r)
			p.logger.Error().
				Str("fault", string(flt.Kind)).
				Interface("recovered", flt.Recovered).
				Msg("Executor task panicked")
		}
	}()

	fn()
}

func (p *Pool) shutdown() {
	p.mu.Lock()
	if p.down {
		p.mu.Unlock()
		return
	}
	p.down = true
	p.mu.Unlock()

	p.tasks.Interrupt()
	p.wg.Wait()
	p.logger.Info().Msg("Executor stopped")
}
