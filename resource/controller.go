package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for solve admission.
type Config struct {
	// MaxConcurrentSolves is the maximum number of solves running at
	// once. If 0, defaults to 1.
	MaxConcurrentSolves int64

	// SolvesPerSec limits the rate at which new solves are admitted.
	// If 0, unlimited.
	SolvesPerSec float64

	// SolveBurst is the admission burst size when SolvesPerSec is set.
	// If 0, defaults to 1.
	SolveBurst int
}

// Controller gates solve admission so a shared process can bound the
// CPU and memory pressure of concurrent coverage solves.
type Controller struct {
	cfg Config

	solveSem *semaphore.Weighted
	limiter  *rate.Limiter // nil if unlimited

	inFlight atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentSolves <= 0 {
		cfg.MaxConcurrentSolves = 1
	}

	c := &Controller{
		cfg:      cfg,
		solveSem: semaphore.NewWeighted(cfg.MaxConcurrentSolves),
	}

	if cfg.SolvesPerSec > 0 {
		burst := cfg.SolveBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SolvesPerSec), burst)
	}

	return c
}

// AcquireSolve reserves a solve slot, blocking until one is free and
// the admission rate allows it, or until ctx is canceled.
// A nil controller admits everything.
func (c *Controller) AcquireSolve(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if err := c.solveSem.Acquire(ctx, 1); err != nil {
		return err
	}

	c.inFlight.Add(1)
	return nil
}

// TryAcquireSolve reserves a solve slot without blocking.
// Returns false if the concurrency or rate limit would be exceeded.
func (c *Controller) TryAcquireSolve() bool {
	if c == nil {
		return true
	}

	if c.limiter != nil && !c.limiter.Allow() {
		return false
	}

	if !c.solveSem.TryAcquire(1) {
		return false
	}

	c.inFlight.Add(1)
	return true
}

// ReleaseSolve releases a previously acquired solve slot.
func (c *Controller) ReleaseSolve() {
	if c == nil {
		return
	}
	c.solveSem.Release(1)
	c.inFlight.Add(-1)
}

// InFlight returns the number of solves currently admitted.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}
