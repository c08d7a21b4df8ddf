package port

import (
	"context"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
)

// CycleMetricsPublisher mirrors evaluated readings to an external metrics
// backend (Port). Optional: the pipeline runs identically without it.
type CycleMetricsPublisher interface {
	PublishCycle(ctx context.Context, snapshot *entity.Snapshot, result *entity.AnalysisResult) error
	Close(ctx context.Context) error
}

// AlertLogPublisher ships alert records to an external log store (Port).
type AlertLogPublisher interface {
	PublishAlerts(ctx context.Context, records []entity.AlertRecord) error
	Close(ctx context.Context) error
}
