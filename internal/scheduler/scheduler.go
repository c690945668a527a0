// Package scheduler implements the fixed-interval polling loop of an agent.
// Each iteration runs to completion, then the scheduler sleeps for the full
// interval; there is no catch-up when an iteration overruns. The clock and the
// sleep function are injectable so tests can run a bounded number of
// iterations without waiting.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IterationFunc performs one gather/build/post cycle.
type IterationFunc func(ctx context.Context)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config configures a Scheduler.
type Config struct {
	Interval time.Duration
	Logger   *zap.Logger      // optional
	Now      func() time.Time // optional, defaults to time.Now
	Sleep    SleepFunc        // optional, defaults to a timer-based sleep

	// MaxIterations stops the loop after that many iterations when positive.
	MaxIterations int
}

// Scheduler manages the periodic execution of an iteration.
type Scheduler struct {
	interval      time.Duration
	logger        *zap.Logger
	now           func() time.Time
	sleep         SleepFunc
	maxIterations int
}

// New creates a new Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	return &Scheduler{
		interval:      cfg.Interval,
		logger:        cfg.Logger,
		now:           cfg.Now,
		sleep:         cfg.Sleep,
		maxIterations: cfg.MaxIterations,
	}
}

// Run executes fn, sleeps for the interval and repeats until ctx is cancelled
// or MaxIterations is reached. It returns ctx.Err() on cancellation and nil
// after the last allowed iteration.
func (s *Scheduler) Run(ctx context.Context, fn IterationFunc) error {
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := s.now()
		fn(ctx)
		s.logger.Debug("Iteration finished",
			zap.Int("iteration", n),
			zap.Duration("took", s.now().Sub(start)))

		if s.maxIterations > 0 && n >= s.maxIterations {
			return nil
		}

		s.logger.Debug("Sleeping", zap.Duration("interval", s.interval))
		if err := s.sleep(ctx, s.interval); err != nil {
			return err
		}
	}
}

// Sleep waits for d using a timer and returns early with ctx.Err() when ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
