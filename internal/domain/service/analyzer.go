package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
)

// Analyzer evaluates snapshots against thresholds (Domain Service). It is
// stateless: Analyze is a pure function of its inputs apart from the
// evaluated-at timestamp.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze walks the categories in declaration order and produces the health
// verdict for one snapshot. Degraded categories are treated as unknown: they
// never generate warnings, only an informational note, and never affect the
// status.
func (a *Analyzer) Analyze(snapshot *entity.Snapshot, thresholds valueobject.Thresholds) *entity.AnalysisResult {
	status := valueobject.StatusOK
	var warnings []string
	var notes []string
	var breaches []entity.Breach

	for _, category := range valueobject.AllCategories() {
		if reason, degraded := snapshot.IsDegraded(category); degraded {
			notes = append(notes, fmt.Sprintf("%s: data unavailable (%s)", category, reason.Cause))
			continue
		}

		reading, ok := snapshot.Reading(category)
		if !ok {
			continue
		}

		for _, breach := range a.evaluate(category, reading, thresholds) {
			warnings = append(warnings, breach.Message)
			breaches = append(breaches, breach)
			status = status.Worse(breach.Severity.Status())
		}
	}

	return entity.NewAnalysisResult(snapshot.ID(), status, warnings, notes, breaches, time.Now())
}

func (a *Analyzer) evaluate(category valueobject.Category, reading entity.CategoryReading, t valueobject.Thresholds) []entity.Breach {
	switch category {
	case valueobject.CPU:
		return a.evaluateCPU(reading, t)
	case valueobject.Memory:
		return a.evaluateMemory(reading, t)
	case valueobject.Disk:
		return a.evaluateDisk(reading, t)
	case valueobject.Sensors:
		return a.evaluateSensors(reading, t)
	default:
		// Network readings are informational; no threshold applies.
		return nil
	}
}

func (a *Analyzer) evaluateCPU(reading entity.CategoryReading, t valueobject.Thresholds) []entity.Breach {
	var breaches []entity.Breach

	if usage, ok := reading.Value("usage_percent"); ok && usage > t.CPUUsageMax {
		breaches = append(breaches, entity.Breach{
			Category: valueobject.CPU,
			Severity: valueobject.SeverityWarning,
			Message:  fmt.Sprintf("CPU usage is critically high: %.1f%%", usage),
		})
	}

	// CPU temperature breaches are a thermal-safety condition.
	if temp, ok := reading.Value("temperature_c"); ok && temp > t.CPUTempMax {
		breaches = append(breaches, entity.Breach{
			Category: valueobject.CPU,
			Severity: valueobject.SeverityCritical,
			Message:  fmt.Sprintf("CPU temperature is critically high: %.1f°C", temp),
		})
	}

	return breaches
}

func (a *Analyzer) evaluateMemory(reading entity.CategoryReading, t valueobject.Thresholds) []entity.Breach {
	var breaches []entity.Breach

	if usage, ok := reading.Value("usage_percent"); ok && usage > t.MemoryUsageMax {
		breaches = append(breaches, entity.Breach{
			Category: valueobject.Memory,
			Severity: valueobject.SeverityWarning,
			Message:  fmt.Sprintf("Memory usage is critically high: %.1f%%", usage),
		})
	}

	if swap, ok := reading.Value("swap_percent"); ok && swap > t.MemoryUsageMax {
		breaches = append(breaches, entity.Breach{
			Category: valueobject.Memory,
			Severity: valueobject.SeverityWarning,
			Message:  fmt.Sprintf("Swap usage is critically high: %.1f%%", swap),
		})
	}

	return breaches
}

// evaluateDisk treats every key of the disk reading as a mountpoint. A full
// disk can take the host down, so disk breaches are critical.
func (a *Analyzer) evaluateDisk(reading entity.CategoryReading, t valueobject.Thresholds) []entity.Breach {
	var breaches []entity.Breach

	for _, mount := range sortedKeys(reading.Values()) {
		usage, _ := reading.Value(mount)
		if usage > t.DiskUsageMax {
			breaches = append(breaches, entity.Breach{
				Category: valueobject.Disk,
				Severity: valueobject.SeverityCritical,
				Message:  fmt.Sprintf("Disk usage on %s is critically high: %.1f%%", mount, usage),
			})
		}
	}

	return breaches
}

func (a *Analyzer) evaluateSensors(reading entity.CategoryReading, t valueobject.Thresholds) []entity.Breach {
	var breaches []entity.Breach

	for _, zone := range sortedKeys(reading.Values()) {
		temp, _ := reading.Value(zone)
		if temp > t.SensorTempMax {
			breaches = append(breaches, entity.Breach{
				Category: valueobject.Sensors,
				Severity: valueobject.SeverityCritical,
				Message:  fmt.Sprintf("Temperature is critically high on %s: %.1f°C", zone, temp),
			})
		}
	}

	return breaches
}

// sortedKeys keeps per-mount and per-zone output deterministic.
func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
