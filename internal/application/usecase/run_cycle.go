package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/alerting"
	"github.com/dreschagin/system-diagnostics/internal/application/dto"
	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/service"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/cache"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/messaging/nats"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// RunCycleUseCase drives one complete monitoring cycle: collect, analyze,
// dispatch alerts, publish. The scheduler calls Execute from a single
// goroutine, so the previous-result state needs no locking.
//
// Sinks beyond the snapshot cache (repository, event bus, metrics mirror,
// WebSocket hub) are optional and best-effort: their failures are logged and
// never fail the cycle.
type RunCycleUseCase struct {
	collector  port.SnapshotCollector
	analyzer   *service.Analyzer
	thresholds valueobject.Thresholds
	dispatcher *alerting.Dispatcher
	cache      *cache.SnapshotCache

	repository port.SnapshotRepository
	events     port.EventPublisher
	metrics    port.CycleMetricsPublisher
	alertLog   port.AlertLogPublisher
	notifier   port.NotificationService
	mirror     port.LatestSnapshotMirror

	logger *logger.Logger

	// Result of the last completed cycle; drives edge-triggered alerting.
	previous *entity.AnalysisResult
}

// RunCycleDeps bundles the optional sinks so construction sites stay
// readable.
type RunCycleDeps struct {
	Repository port.SnapshotRepository
	Events     port.EventPublisher
	Metrics    port.CycleMetricsPublisher
	AlertLog   port.AlertLogPublisher
	Notifier   port.NotificationService
	Mirror     port.LatestSnapshotMirror
}

func NewRunCycleUseCase(
	collector port.SnapshotCollector,
	analyzer *service.Analyzer,
	thresholds valueobject.Thresholds,
	dispatcher *alerting.Dispatcher,
	snapshotCache *cache.SnapshotCache,
	deps RunCycleDeps,
	log *logger.Logger,
) *RunCycleUseCase {
	return &RunCycleUseCase{
		collector:  collector,
		analyzer:   analyzer,
		thresholds: thresholds,
		dispatcher: dispatcher,
		cache:      snapshotCache,
		repository: deps.Repository,
		events:     deps.Events,
		metrics:    deps.Metrics,
		alertLog:   deps.AlertLog,
		notifier:   deps.Notifier,
		mirror:     deps.Mirror,
		logger:     log,
	}
}

// Execute runs one cycle. An error here means the cycle produced no snapshot
// at all; readers keep seeing the previous one.
func (uc *RunCycleUseCase) Execute(ctx context.Context) error {
	startedAt := time.Now()
	uc.logger.Debug("Starting monitoring cycle")

	snapshot, err := uc.collector.Collect(ctx)
	if err != nil {
		uc.logger.Error("Cycle aborted: collection failed", err)
		return fmt.Errorf("cycle: %w", err)
	}

	result := uc.analyzer.Analyze(snapshot, uc.thresholds)

	records := uc.dispatcher.Dispatch(ctx, result, uc.previous)

	if err := uc.cache.Set(snapshot, result); err != nil {
		// Only possible on a snapshot/result mismatch, which would be a
		// programming error. Keep the previous cycle visible.
		uc.logger.Error("Cycle aborted: cache rejected pair", err)
		return fmt.Errorf("cycle: %w", err)
	}
	uc.previous = result

	uc.publish(ctx, snapshot, result, records)

	uc.logger.Info("Monitoring cycle completed",
		"status", result.Status().String(),
		"warnings", len(result.Warnings()),
		"alerts", len(records),
		"duration", time.Since(startedAt).String())

	return nil
}

// publish fans the completed cycle out to the optional sinks.
func (uc *RunCycleUseCase) publish(ctx context.Context, snapshot *entity.Snapshot, result *entity.AnalysisResult, records []entity.AlertRecord) {
	view := dto.FromCycle(snapshot, result)

	if uc.notifier != nil {
		uc.notifier.Broadcast(view)
		for _, record := range records {
			uc.notifier.BroadcastAlert(record)
		}
	}

	if uc.mirror != nil {
		if err := uc.mirror.Publish(ctx, view); err != nil {
			uc.logger.Error("Failed to mirror snapshot", err)
		}
	}

	if uc.repository != nil {
		if err := uc.repository.SaveCycle(ctx, snapshot, result); err != nil {
			uc.logger.Error("Failed to persist cycle", err)
		}
		if err := uc.repository.SaveAlerts(ctx, records); err != nil {
			uc.logger.Error("Failed to persist alert records", err)
		}
	}

	if uc.events != nil {
		if err := uc.events.PublishEvent(ctx, nats.SubjectCycleCompleted, view); err != nil {
			uc.logger.Error("Failed to publish cycle event", err)
		}
		for _, record := range records {
			if err := uc.events.PublishEvent(ctx, nats.SubjectAlertRaised, record); err != nil {
				uc.logger.Error("Failed to publish alert event", err)
			}
		}
	}

	if uc.metrics != nil {
		if err := uc.metrics.PublishCycle(ctx, snapshot, result); err != nil {
			uc.logger.Error("Failed to mirror cycle metrics", err)
		}
	}

	if uc.alertLog != nil && len(records) > 0 {
		if err := uc.alertLog.PublishAlerts(ctx, records); err != nil {
			uc.logger.Error("Failed to ship alert log", err)
		}
	}
}
