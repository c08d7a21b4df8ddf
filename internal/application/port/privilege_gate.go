package port

import (
	"context"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// PrivilegeGate brokers elevated host access (Port). Implementations must be
// safe for concurrent use: CurrentState never blocks, and concurrent
// RequestEscalation calls join a single in-flight attempt instead of
// triggering duplicate host prompts.
type PrivilegeGate interface {
	// CurrentState returns a copy of the gate's state.
	CurrentState() entity.PrivilegeState

	// RequestEscalation attempts to obtain elevated access. It is idempotent:
	// while already granted it returns immediately. A failed attempt records
	// the error in the returned state and leaves the gate ungranted; it is
	// never fatal to the process.
	RequestEscalation(ctx context.Context) (entity.PrivilegeState, error)

	// AvailableFeatures maps monitoring capabilities to their availability
	// under the current privilege level.
	AvailableFeatures() map[string]bool
}
