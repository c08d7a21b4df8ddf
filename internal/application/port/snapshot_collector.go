package port

import (
	"context"

	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// SnapshotCollector gathers one full snapshot per cycle (Port). Implemented
// by the parallel collector in the infrastructure layer.
type SnapshotCollector interface {
	Collect(ctx context.Context) (*entity.Snapshot, error)
}

// LatestSnapshotMirror replicates the newest evaluated snapshot to an
// external cache so other processes can read it (Port).
type LatestSnapshotMirror interface {
	Publish(ctx context.Context, snapshot *dto.DiagnosticsDTO) error
	Close() error
}
