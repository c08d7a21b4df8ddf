package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// CycleRecord is one persisted snapshot/analysis pair as stored in the
// history table. Payloads are kept as raw JSON: history exists for display,
// not for the pipeline's correctness.
type CycleRecord struct {
	ID          string          `json:"id"`
	CapturedAt  time.Time       `json:"captured_at"`
	Diagnostics json.RawMessage `json:"diagnostics"`
	Analysis    json.RawMessage `json:"analysis"`
}

// SnapshotRepository persists cycle history and the append-only alert log
// (Port). The pipeline treats every call as best-effort: persistence failure
// never fails a cycle.
type SnapshotRepository interface {
	// SaveCycle appends one evaluated snapshot to the history.
	SaveCycle(ctx context.Context, snapshot *entity.Snapshot, result *entity.AnalysisResult) error

	// SaveAlerts appends alert records, including failed deliveries.
	SaveAlerts(ctx context.Context, records []entity.AlertRecord) error

	// LatestCycle returns the most recent persisted cycle, or nil when the
	// history is empty.
	LatestCycle(ctx context.Context) (*CycleRecord, error)

	// CyclesInRange returns persisted cycles between from and to, newest
	// first, capped at limit.
	CyclesInRange(ctx context.Context, from, to time.Time, limit int) ([]CycleRecord, error)

	// DeleteOlderThan prunes history beyond the retention window and returns
	// the number of removed cycles.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
