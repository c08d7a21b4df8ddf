package service

import (
	"strings"
	"testing"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

func buildSnapshot(t *testing.T, values map[valueobject.Category]map[string]float64, degraded map[valueobject.Category]entity.DegradedReason) *entity.Snapshot {
	t.Helper()
	readings := make(map[valueobject.Category]entity.CategoryReading)
	for category, v := range values {
		reading, err := entity.NewCategoryReading(category, v, nil)
		if err != nil {
			t.Fatalf("build reading for %s: %v", category, err)
		}
		readings[category] = reading
	}
	return entity.NewSnapshot(time.Now(), nil, readings, degraded)
}

func TestAnalyzeHealthySnapshot(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU:     {"usage_percent": 35, "temperature_c": 50},
		valueobject.Memory:  {"usage_percent": 60, "swap_percent": 2},
		valueobject.Disk:    {"/": 70},
		valueobject.Network: {"sent_kbps": 120, "recv_kbps": 300},
	}, nil)

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	if result.Status() != valueobject.StatusOK {
		t.Fatalf("expected ok, got %s", result.Status())
	}
	if len(result.Warnings()) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings())
	}
	if result.SnapshotID() != snap.ID() {
		t.Fatal("result must reference the analyzed snapshot")
	}
}

func TestAnalyzeBoundaryValueIsNotABreach(t *testing.T) {
	thresholds := valueobject.DefaultThresholds()
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU:    {"usage_percent": thresholds.CPUUsageMax},
		valueobject.Memory: {"usage_percent": thresholds.MemoryUsageMax},
		valueobject.Disk:   {"/": thresholds.DiskUsageMax},
	}, nil)

	result := NewAnalyzer().Analyze(snap, thresholds)

	if result.Status() != valueobject.StatusOK {
		t.Fatalf("values exactly at the threshold must pass, got %s", result.Status())
	}
}

func TestAnalyzeCPUUsageWarning(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 95.5},
	}, nil)

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	if result.Status() != valueobject.StatusWarning {
		t.Fatalf("expected warning, got %s", result.Status())
	}
	warnings := result.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "95.5%") {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestAnalyzeCPUTemperatureIsCritical(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 10, "temperature_c": 91},
	}, nil)

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	if result.Status() != valueobject.StatusCritical {
		t.Fatalf("expected critical for thermal breach, got %s", result.Status())
	}
	if !result.HasBreach(valueobject.CPU, valueobject.SeverityCritical) {
		t.Fatal("expected critical cpu breach")
	}
}

func TestAnalyzePerMountDiskBreaches(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.Disk: {"/var": 95, "/": 97, "/home": 20},
	}, nil)

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	if result.Status() != valueobject.StatusCritical {
		t.Fatalf("expected critical, got %s", result.Status())
	}
	warnings := result.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected one warning per breached mount, got %v", warnings)
	}
	// Mount order is sorted, so the output is stable.
	if !strings.Contains(warnings[0], "on /") || !strings.Contains(warnings[1], "on /var") {
		t.Fatalf("unexpected warning order: %v", warnings)
	}
}

func TestAnalyzeWorstSeverityWins(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU:  {"usage_percent": 95},
		valueobject.Disk: {"/": 99},
	}, nil)

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	if result.Status() != valueobject.StatusCritical {
		t.Fatalf("critical must dominate warning, got %s", result.Status())
	}
	if len(result.Warnings()) != 2 {
		t.Fatalf("both breaches must be reported, got %v", result.Warnings())
	}
}

func TestAnalyzeDegradedCategoryGetsNoteNotWarning(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU: {"usage_percent": 20},
	}, map[valueobject.Category]entity.DegradedReason{
		valueobject.Sensors: {Cause: "elevation required", ElevationRequired: true},
	})

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	if result.Status() != valueobject.StatusOK {
		t.Fatalf("degraded category must not affect status, got %s", result.Status())
	}
	for _, w := range result.Warnings() {
		if strings.Contains(w, "sensors") {
			t.Fatalf("degraded category must not produce a warning: %q", w)
		}
	}
	notes := result.Notes()
	if len(notes) != 1 || !strings.Contains(notes[0], "sensors") {
		t.Fatalf("expected one sensors note, got %v", notes)
	}
}

func TestAnalyzeWarningsFollowCategoryOrder(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.CPU:     {"usage_percent": 95},
		valueobject.Memory:  {"usage_percent": 95},
		valueobject.Disk:    {"/": 95},
		valueobject.Sensors: {"zone0": 95},
	}, nil)

	result := NewAnalyzer().Analyze(snap, valueobject.DefaultThresholds())

	warnings := result.Warnings()
	if len(warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %v", warnings)
	}
	order := []string{"CPU usage", "Memory usage", "Disk usage", "Temperature"}
	for i, prefix := range order {
		if !strings.Contains(warnings[i], prefix) {
			t.Fatalf("warning %d = %q, expected to mention %q", i, warnings[i], prefix)
		}
	}
}

func TestAnalyzeDeterministicForSameSnapshot(t *testing.T) {
	snap := buildSnapshot(t, map[valueobject.Category]map[string]float64{
		valueobject.Disk: {"/a": 95, "/b": 96, "/c": 97},
	}, nil)
	analyzer := NewAnalyzer()
	thresholds := valueobject.DefaultThresholds()

	first := analyzer.Analyze(snap, thresholds)
	for i := 0; i < 5; i++ {
		again := analyzer.Analyze(snap, thresholds)
		if len(again.Warnings()) != len(first.Warnings()) {
			t.Fatal("warning count changed between runs")
		}
		for j := range first.Warnings() {
			if first.Warnings()[j] != again.Warnings()[j] {
				t.Fatalf("warning order changed: %v vs %v", first.Warnings(), again.Warnings())
			}
		}
	}
}
