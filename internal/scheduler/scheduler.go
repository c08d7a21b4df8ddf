package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// CycleRunner is what the scheduler drives once per interval.
type CycleRunner interface {
	Execute(ctx context.Context) error
}

// Scheduler runs monitoring cycles on a fixed interval from a single
// goroutine. The first cycle starts immediately so the API becomes ready
// without waiting a full interval. A panic inside a cycle is contained: the
// loop logs it and keeps ticking.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func New(runner CycleRunner, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// Start launches the loop. Returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)

		s.logger.Info("Scheduler started", "interval", s.interval.String())

		// First cycle right away.
		s.runCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle(ctx)
			case <-ctx.Done():
				s.logger.Info("Scheduler stopped")
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for any in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
	})
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Cycle panicked", fmt.Errorf("%v", r))
		}
	}()

	if err := s.runner.Execute(ctx); err != nil {
		// A failed cycle leaves the previous snapshot in place; the next
		// tick tries again.
		s.logger.Error("Cycle failed", err)
	}
}
