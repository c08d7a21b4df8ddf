package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/alerting"
	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/service"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/dreschagin/system-diagnostics/internal/infrastructure/cache"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

type stubCollector struct {
	values map[valueobject.Category]map[string]float64
	err    error
}

func (c *stubCollector) Collect(ctx context.Context) (*entity.Snapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	readings := make(map[valueobject.Category]entity.CategoryReading)
	for category, values := range c.values {
		reading, err := entity.NewCategoryReading(category, values, nil)
		if err != nil {
			return nil, err
		}
		readings[category] = reading
	}
	return entity.NewSnapshot(time.Now(), map[string]string{"os": "linux"}, readings, nil), nil
}

type recordingChannel struct {
	sent []port.AlertNotification
}

func (c *recordingChannel) Name() string { return "test" }
func (c *recordingChannel) Send(ctx context.Context, n port.AlertNotification) error {
	c.sent = append(c.sent, n)
	return nil
}

func newCycleUseCase(collector port.SnapshotCollector, channel port.AlertChannel, snapshotCache *cache.SnapshotCache) *RunCycleUseCase {
	log := logger.New("error")
	var channels []port.AlertChannel
	if channel != nil {
		channels = append(channels, channel)
	}
	return NewRunCycleUseCase(
		collector,
		service.NewAnalyzer(),
		valueobject.DefaultThresholds(),
		alerting.NewDispatcher(channels, time.Second, log),
		snapshotCache,
		RunCycleDeps{},
		log,
	)
}

func healthyValues() map[valueobject.Category]map[string]float64 {
	return map[valueobject.Category]map[string]float64{
		valueobject.CPU:    {"usage_percent": 20},
		valueobject.Memory: {"usage_percent": 40, "swap_percent": 5},
	}
}

func TestExecutePublishesToCache(t *testing.T) {
	snapshotCache := cache.NewSnapshotCache()
	uc := newCycleUseCase(&stubCollector{values: healthyValues()}, nil, snapshotCache)

	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	snapshot, result, ok := snapshotCache.Get()
	if !ok {
		t.Fatal("expected cache populated after cycle")
	}
	if result.SnapshotID() != snapshot.ID() {
		t.Fatal("cached pair does not match")
	}
	if result.Status() != valueobject.StatusOK {
		t.Fatalf("expected ok status, got %s", result.Status())
	}
}

func TestExecuteCollectionFailureKeepsPreviousCycle(t *testing.T) {
	snapshotCache := cache.NewSnapshotCache()
	collector := &stubCollector{values: healthyValues()}
	uc := newCycleUseCase(collector, nil, snapshotCache)

	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	first, _, _ := snapshotCache.Get()

	collector.err = errors.New("host api unavailable")
	if err := uc.Execute(context.Background()); err == nil {
		t.Fatal("expected error when collection fails entirely")
	}

	current, _, ok := snapshotCache.Get()
	if !ok || current.ID() != first.ID() {
		t.Fatal("failed cycle must leave the previous snapshot cached")
	}
}

func TestExecuteEdgeTriggeredAlertsAcrossCycles(t *testing.T) {
	snapshotCache := cache.NewSnapshotCache()
	collector := &stubCollector{values: map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 95},
	}}
	channel := &recordingChannel{}
	uc := newCycleUseCase(collector, channel, snapshotCache)

	// First cycle: breach appears, alert fires.
	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle 1 failed: %v", err)
	}
	if len(channel.sent) != 1 {
		t.Fatalf("expected 1 alert after first breach, got %d", len(channel.sent))
	}

	// Second cycle: breach persists, no new alert.
	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle 2 failed: %v", err)
	}
	if len(channel.sent) != 1 {
		t.Fatalf("persisting breach must not re-alert, got %d", len(channel.sent))
	}

	// Third cycle: breach clears.
	collector.values = map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 10},
	}
	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle 3 failed: %v", err)
	}
	if len(channel.sent) != 1 {
		t.Fatalf("clean cycle must not alert, got %d", len(channel.sent))
	}

	// Fourth cycle: breach returns, alert fires again.
	collector.values = map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 95},
	}
	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle 4 failed: %v", err)
	}
	if len(channel.sent) != 2 {
		t.Fatalf("returning breach must re-alert, got %d", len(channel.sent))
	}
}

func TestExecuteFailedCycleDoesNotAdvanceAlertBaseline(t *testing.T) {
	snapshotCache := cache.NewSnapshotCache()
	collector := &stubCollector{values: map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 95},
	}}
	channel := &recordingChannel{}
	uc := newCycleUseCase(collector, channel, snapshotCache)

	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle 1 failed: %v", err)
	}

	// A failed cycle in between must not make the still-active breach look
	// new on the next success.
	collector.err = errors.New("host api unavailable")
	_ = uc.Execute(context.Background())
	collector.err = nil

	if err := uc.Execute(context.Background()); err != nil {
		t.Fatalf("cycle 3 failed: %v", err)
	}
	if len(channel.sent) != 1 {
		t.Fatalf("breach persisted across a failed cycle, expected no re-alert, got %d", len(channel.sent))
	}
}
