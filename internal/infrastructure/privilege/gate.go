package privilege

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// EscalationError wraps a failed privilege request. Escalation failures are
// never fatal: they only limit which metric sources run at full fidelity.
type EscalationError struct {
	Reason string
}

func (e *EscalationError) Error() string {
	return "escalation failed: " + e.Reason
}

// escalateFunc performs the actual privilege check/acquisition. Injectable
// for tests.
type escalateFunc func(ctx context.Context) error

// Gate tracks whether the process holds elevated host access and brokers
// escalation requests. It is the single writer of its PrivilegeState.
//
// Escalation is not reentrant: a request that arrives while another is in
// flight joins that attempt's outcome instead of spawning a second host
// prompt.
type Gate struct {
	mu       sync.Mutex
	state    entity.PrivilegeState
	inflight *attempt

	escalate escalateFunc
	timeout  time.Duration
	logger   *logger.Logger
}

type attempt struct {
	done  chan struct{}
	state entity.PrivilegeState
	err   error
}

type Config struct {
	// Command is the helper invocation that proves privileged operations
	// work, e.g. "sudo -n true". Empty means the platform default.
	Command string
	Timeout time.Duration
}

func NewGate(cfg Config, log *logger.Logger) *Gate {
	g := &Gate{
		timeout: cfg.Timeout,
		logger:  log,
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}
	g.escalate = g.commandEscalate(cfg.Command)

	// A process started as root is already elevated; no prompt needed.
	if runningAsRoot() {
		g.state = entity.PrivilegeState{Granted: true}
	}

	return g
}

// CurrentState returns a copy of the gate's state without blocking on any
// in-flight escalation.
func (g *Gate) CurrentState() entity.PrivilegeState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// RequestEscalation attempts to obtain elevated access. Idempotent while
// granted; concurrent callers share one attempt.
func (g *Gate) RequestEscalation(ctx context.Context) (entity.PrivilegeState, error) {
	g.mu.Lock()

	if g.state.Granted {
		state := g.state
		g.mu.Unlock()
		return state, nil
	}

	if g.inflight != nil {
		// Join the attempt already running.
		a := g.inflight
		g.mu.Unlock()
		select {
		case <-a.done:
			return a.state, a.err
		case <-ctx.Done():
			return g.CurrentState(), ctx.Err()
		}
	}

	a := &attempt{done: make(chan struct{})}
	g.inflight = a
	g.mu.Unlock()

	a.state, a.err = g.runEscalation(ctx)

	g.mu.Lock()
	g.inflight = nil
	g.mu.Unlock()
	close(a.done)

	return a.state, a.err
}

func (g *Gate) runEscalation(ctx context.Context) (entity.PrivilegeState, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	now := time.Now()
	err := g.escalate(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.LastAttempt = now
	if err != nil {
		g.state.Granted = false
		g.state.LastError = err.Error()
		g.logger.Warn("Privilege escalation failed", "error", err.Error())
		return g.state, &EscalationError{Reason: err.Error()}
	}

	g.state.Granted = true
	g.state.LastError = ""
	g.logger.Info("Privilege escalation granted")
	return g.state, nil
}

// commandEscalate validates privileged access by running a helper command.
// Exit status zero means privileged helper operations will work for the
// metric sources that need them.
func (g *Gate) commandEscalate(command string) escalateFunc {
	return func(ctx context.Context) error {
		if runtime.GOOS == "windows" {
			return fmt.Errorf("automatic elevation is not supported on windows; restart the service with administrative rights")
		}

		if command == "" {
			command = "sudo -n true"
		}
		parts := strings.Fields(command)

		cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
		if out, err := cmd.CombinedOutput(); err != nil {
			msg := strings.TrimSpace(string(out))
			if msg == "" {
				msg = err.Error()
			}
			return fmt.Errorf("%s", msg)
		}
		return nil
	}
}

// AvailableFeatures reports which monitoring capabilities the current
// privilege level unlocks. Basic categories are always available; hardware
// sensors and process/service control need elevation.
func (g *Gate) AvailableFeatures() map[string]bool {
	granted := g.CurrentState().Granted
	return map[string]bool{
		"cpu_metrics":      true,
		"memory_metrics":   true,
		"disk_metrics":     true,
		"network_metrics":  true,
		"hardware_sensors": granted,
		"process_control":  granted,
		"service_control":  granted,
		"system_logs":      granted,
	}
}

func runningAsRoot() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	return os.Geteuid() == 0
}
