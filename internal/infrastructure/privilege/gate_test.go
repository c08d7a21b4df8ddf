package privilege

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

func newTestGate(escalate escalateFunc) *Gate {
	g := NewGate(Config{Timeout: time.Second}, logger.New("error"))
	g.mu.Lock()
	g.state.Granted = false
	g.mu.Unlock()
	g.escalate = escalate
	return g
}

func TestRequestEscalationGrants(t *testing.T) {
	g := newTestGate(func(ctx context.Context) error { return nil })

	state, err := g.RequestEscalation(context.Background())
	if err != nil {
		t.Fatalf("expected escalation to succeed, got %v", err)
	}
	if !state.Granted {
		t.Fatal("expected granted state after successful escalation")
	}
	if state.LastAttempt.IsZero() {
		t.Fatal("expected LastAttempt to be stamped")
	}
	if got := g.CurrentState(); !got.Granted {
		t.Fatal("expected CurrentState to report granted")
	}
}

func TestRequestEscalationDenied(t *testing.T) {
	g := newTestGate(func(ctx context.Context) error {
		return errors.New("sudo: a password is required")
	})

	state, err := g.RequestEscalation(context.Background())
	if err == nil {
		t.Fatal("expected escalation error")
	}
	var escErr *EscalationError
	if !errors.As(err, &escErr) {
		t.Fatalf("expected *EscalationError, got %T", err)
	}
	if state.Granted {
		t.Fatal("expected denied state")
	}
	if state.LastError == "" {
		t.Fatal("expected LastError to be recorded")
	}
}

func TestRequestEscalationIdempotentWhileGranted(t *testing.T) {
	calls := 0
	g := newTestGate(func(ctx context.Context) error {
		calls++
		return nil
	})

	for i := 0; i < 3; i++ {
		if _, err := g.RequestEscalation(context.Background()); err != nil {
			t.Fatalf("escalation %d failed: %v", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single escalation attempt, got %d", calls)
	}
}

func TestRequestEscalationRetriesAfterFailure(t *testing.T) {
	calls := 0
	g := newTestGate(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("denied")
		}
		return nil
	})

	if _, err := g.RequestEscalation(context.Background()); err == nil {
		t.Fatal("expected first attempt to fail")
	}
	state, err := g.RequestEscalation(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if !state.Granted || state.LastError != "" {
		t.Fatalf("expected clean granted state after retry, got %+v", state)
	}
}

func TestConcurrentEscalationsShareOneAttempt(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	g := newTestGate(func(ctx context.Context) error {
		calls++
		close(started)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	results := make([]error, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[0] = g.RequestEscalation(context.Background())
	}()
	<-started

	for i := 1; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = g.RequestEscalation(context.Background())
		}(i)
	}
	// Give the joiners a moment to park on the in-flight attempt.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("expected a single underlying attempt, got %d", calls)
	}
	for i, err := range results {
		if err != nil {
			t.Fatalf("caller %d got error: %v", i, err)
		}
	}
}

func TestAvailableFeaturesTrackPrivilege(t *testing.T) {
	g := newTestGate(func(ctx context.Context) error { return nil })

	features := g.AvailableFeatures()
	if !features["cpu_metrics"] {
		t.Fatal("basic metrics must always be available")
	}
	if features["hardware_sensors"] {
		t.Fatal("hardware sensors must require elevation")
	}

	if _, err := g.RequestEscalation(context.Background()); err != nil {
		t.Fatalf("escalation failed: %v", err)
	}
	if !g.AvailableFeatures()["hardware_sensors"] {
		t.Fatal("hardware sensors must unlock after escalation")
	}
}
