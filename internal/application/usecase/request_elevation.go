package usecase

import (
	"context"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// RequestElevationUseCase asks the privilege gate for elevated access.
// The next scheduled cycle picks the new state up automatically; the caller
// does not wait for a re-collection.
type RequestElevationUseCase struct {
	gate   port.PrivilegeGate
	logger *logger.Logger
}

func NewRequestElevationUseCase(gate port.PrivilegeGate, log *logger.Logger) *RequestElevationUseCase {
	return &RequestElevationUseCase{
		gate:   gate,
		logger: log,
	}
}

// Execute attempts escalation and returns the resulting state. The error is
// the escalation failure, if any; the DTO is valid either way.
func (uc *RequestElevationUseCase) Execute(ctx context.Context) (*dto.PrivilegeDTO, error) {
	state, err := uc.gate.RequestEscalation(ctx)
	if err != nil {
		uc.logger.Warn("Elevation request failed", "error", err.Error())
	} else {
		uc.logger.Info("Elevation request granted")
	}
	return dto.FromPrivilegeState(state, uc.gate.AvailableFeatures()), err
}

// State returns the current privilege state without attempting escalation.
func (uc *RequestElevationUseCase) State() *dto.PrivilegeDTO {
	return dto.FromPrivilegeState(uc.gate.CurrentState(), uc.gate.AvailableFeatures())
}
