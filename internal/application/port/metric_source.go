package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

// ErrElevationRequired marks a collection failure that privilege escalation
// could fix. The collector turns it into the suggest_admin signal; it must be
// distinguishable from generic source failures via errors.Is.
var ErrElevationRequired = errors.New("elevation required")

// SourceError wraps a per-category collection failure. Source failures are
// never fatal to a cycle; they only mark the category degraded.
type SourceError struct {
	Category valueobject.Category
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("collect %s: %v", e.Category, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// MetricSource pulls one category of raw metrics from the host (Port).
// Implementations live in the infrastructure layer and must respect the
// context deadline: a slow host API is a CollectionError, not a stalled cycle.
type MetricSource interface {
	// Category identifies which snapshot slot this source fills.
	Category() valueobject.Category

	// RequiresElevation reports whether the source cannot run at all without
	// elevated host access. Sources that merely degrade in fidelity return
	// false and collect what they can.
	RequiresElevation() bool

	// Collect gathers the category's reading. When the source requires
	// elevation and privilege.Granted is false it must fail with an error
	// wrapping ErrElevationRequired.
	Collect(ctx context.Context, privilege entity.PrivilegeState) (entity.CategoryReading, error)
}
