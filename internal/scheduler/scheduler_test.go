package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

type countingRunner struct {
	runs  atomic.Int64
	err   error
	panic bool
	slow  time.Duration
}

func (r *countingRunner) Execute(ctx context.Context) error {
	if r.slow > 0 {
		time.Sleep(r.slow)
	}
	r.runs.Add(1)
	if r.panic {
		panic("boom")
	}
	return r.err
}

func TestSchedulerRunsFirstCycleImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, time.Hour, logger.New("error"))

	s.Start(context.Background())
	defer s.Stop()

	deadline := time.After(time.Second)
	for runner.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first cycle did not run immediately")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSchedulerTicksRepeatedly(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 20*time.Millisecond, logger.New("error"))

	s.Start(context.Background())
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	if runs := runner.runs.Load(); runs < 3 {
		t.Fatalf("expected at least 3 cycles, got %d", runs)
	}
}

func TestSchedulerSurvivesCycleErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("collection failed")}
	s := New(runner, 15*time.Millisecond, logger.New("error"))

	s.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	s.Stop()

	if runs := runner.runs.Load(); runs < 2 {
		t.Fatalf("failing cycles must not stop the loop, got %d runs", runs)
	}
}

func TestSchedulerSurvivesPanics(t *testing.T) {
	runner := &countingRunner{panic: true}
	s := New(runner, 15*time.Millisecond, logger.New("error"))

	s.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	s.Stop()

	if runs := runner.runs.Load(); runs < 2 {
		t.Fatalf("panicking cycles must not stop the loop, got %d runs", runs)
	}
}

func TestStopWaitsForInflightCycle(t *testing.T) {
	runner := &countingRunner{slow: 60 * time.Millisecond}
	s := New(runner, time.Hour, logger.New("error"))

	s.Start(context.Background())
	// Let the first cycle start.
	time.Sleep(10 * time.Millisecond)

	s.Stop()
	if runner.runs.Load() != 1 {
		t.Fatal("Stop must wait for the in-flight cycle to finish")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(&countingRunner{}, time.Hour, logger.New("error"))
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
