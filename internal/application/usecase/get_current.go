package usecase

import (
	"errors"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/cache"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// ErrNotReady is returned until the first monitoring cycle has completed.
var ErrNotReady = errors.New("no snapshot collected yet")

// GetCurrentUseCase serves the latest evaluated snapshot from the cache.
// Read-only; never triggers collection.
type GetCurrentUseCase struct {
	cache  *cache.SnapshotCache
	logger *logger.Logger
}

func NewGetCurrentUseCase(snapshotCache *cache.SnapshotCache, log *logger.Logger) *GetCurrentUseCase {
	return &GetCurrentUseCase{
		cache:  snapshotCache,
		logger: log,
	}
}

// Execute returns the latest cycle, or ErrNotReady before the first one.
func (uc *GetCurrentUseCase) Execute() (*dto.DiagnosticsDTO, error) {
	snapshot, result, ok := uc.cache.Get()
	if !ok {
		return nil, ErrNotReady
	}
	return dto.FromCycle(snapshot, result), nil
}
