package cache

import (
	"fmt"
	"sync"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// SnapshotCache holds the latest evaluated cycle for readers. The scheduler
// goroutine is the only writer; HTTP handlers are the readers. Set swaps the
// snapshot and its analysis together, so a reader can never observe a
// snapshot paired with another cycle's analysis.
type SnapshotCache struct {
	mu       sync.RWMutex
	snapshot *entity.Snapshot
	result   *entity.AnalysisResult
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Set atomically replaces the cached pair. The result must have been computed
// from exactly the given snapshot.
func (c *SnapshotCache) Set(snapshot *entity.Snapshot, result *entity.AnalysisResult) error {
	if snapshot == nil || result == nil {
		return fmt.Errorf("cache: snapshot and result are both required")
	}
	if result.SnapshotID() != snapshot.ID() {
		return fmt.Errorf("cache: result %s does not belong to snapshot %s", result.SnapshotID(), snapshot.ID())
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.result = result
	c.mu.Unlock()
	return nil
}

// Get returns the latest pair. ok is false until the first cycle completes.
func (c *SnapshotCache) Get() (*entity.Snapshot, *entity.AnalysisResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, nil, false
	}
	return c.snapshot, c.result, true
}

// Ready reports whether at least one cycle has been published.
func (c *SnapshotCache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil
}
