package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/log"
)

// Result represents the outcome of a health check
type Result struct {
	Healthy   bool          `json:"healthy"`
	Message   string        `json:"message,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
	Duration  time.Duration `json:"duration"`
}

// Checker is the interface that all health checkers must implement
type Checker interface {
	// Name identifies the check in aggregated status
	Name() string

	// Check performs the health check and returns the result
	Check(ctx context.Context) Result
}

// Status is the aggregated outcome of all registered checks
type Status struct {
	Healthy   bool              `json:"healthy"`
	Checks    map[string]Result `json:"checks"`
	CheckedAt time.Time         `json:"checked_at"`
}

// Service runs registered checkers and aggregates their results
type Service struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewService creates a health service. Each check gets at most timeout
// to complete; zero means the default of 5 seconds.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		timeout: timeout,
		logger:  log.WithComponent("health"),
	}
}

// Register adds a checker to the service
func (s *Service) Register(c Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, c)
}

// Evaluate runs every registered check and aggregates the results. The
// node is healthy only when all checks pass.
func (s *Service) Evaluate(ctx context.Context) Status {
	s.mu.RLock()
	checkers := make([]Checker, len(s.checkers))
	copy(checkers, s.checkers)
	s.mu.RUnlock()

	status := Status{
		Healthy:   true,
		Checks:    make(map[string]Result, len(checkers)),
		CheckedAt: time.Now(),
	}

	for _, c := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		result := c.Check(checkCtx)
		cancel()

		status.Checks[c.Name()] = result
		if !result.Healthy {
			status.Healthy = false
			s.logger.Warn().
				Str("check", c.Name()).
				Str("message", result.Message).
				Msg("Health check failed")
		}
	}

	return status
}
