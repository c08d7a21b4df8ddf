package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/shirou/gopsutil/v3/host"
)

// SensorsSource reads hardware temperature probes. Reading the full sensor
// tree needs elevated host access on most platforms, so the source refuses
// to run unprivileged instead of returning a silently empty reading.
type SensorsSource struct{}

func NewSensorsSource() *SensorsSource {
	return &SensorsSource{}
}

func (s *SensorsSource) Category() valueobject.Category {
	return valueobject.Sensors
}

func (s *SensorsSource) RequiresElevation() bool {
	return true
}

func (s *SensorsSource) Collect(ctx context.Context, privilege entity.PrivilegeState) (entity.CategoryReading, error) {
	if !privilege.Granted {
		return entity.CategoryReading{}, fmt.Errorf("hardware sensors: %w", port.ErrElevationRequired)
	}

	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		return entity.CategoryReading{}, fmt.Errorf("sensor temperatures: %w", err)
	}
	if len(temps) == 0 {
		return entity.CategoryReading{}, fmt.Errorf("sensor temperatures: no probes found")
	}

	values := make(map[string]float64)
	details := make(map[string]interface{})
	for _, t := range temps {
		if t.Temperature <= 0 {
			continue
		}
		key := t.SensorKey
		// Keep the hottest reading when a key repeats (multi-core packages
		// report one entry per core under the same key).
		if prev, ok := values[key]; !ok || t.Temperature > prev {
			values[key] = t.Temperature
		}
		if t.Critical > 0 {
			details[key+"_critical_c"] = t.Critical
		}
	}

	if len(values) == 0 {
		return entity.CategoryReading{}, fmt.Errorf("sensor temperatures: all probes returned zero")
	}

	return entity.NewCategoryReading(valueobject.Sensors, values, details)
}

// isCPUSensor matches the sensor keys common platforms use for processor
// thermal probes.
func isCPUSensor(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "coretemp") ||
		strings.Contains(k, "k10temp") ||
		strings.Contains(k, "cpu") ||
		strings.Contains(k, "package")
}
