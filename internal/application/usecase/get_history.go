package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

const defaultHistoryLimit = 100

// GetHistoryUseCase returns persisted cycles for a time range. Only
// available when a repository is configured.
type GetHistoryUseCase struct {
	repository port.SnapshotRepository
	logger     *logger.Logger
}

func NewGetHistoryUseCase(repository port.SnapshotRepository, log *logger.Logger) *GetHistoryUseCase {
	return &GetHistoryUseCase{
		repository: repository,
		logger:     log,
	}
}

// Enabled reports whether history is backed by a repository.
func (uc *GetHistoryUseCase) Enabled() bool {
	return uc.repository != nil
}

// Execute returns cycles between from and to, newest first. A zero `to`
// means now; a zero `from` means one hour before `to`.
func (uc *GetHistoryUseCase) Execute(ctx context.Context, from, to time.Time, limit int) ([]port.CycleRecord, error) {
	if uc.repository == nil {
		return nil, fmt.Errorf("history is not configured")
	}

	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-time.Hour)
	}
	if from.After(to) {
		return nil, fmt.Errorf("invalid range: from is after to")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := uc.repository.CyclesInRange(ctx, from, to, limit)
	if err != nil {
		uc.logger.Error("Failed to load history", err)
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}
