package source

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// CPUSource collects processor load and, when the host exposes it, the CPU
// package temperature.
type CPUSource struct{}

func NewCPUSource() *CPUSource {
	return &CPUSource{}
}

func (s *CPUSource) Category() valueobject.Category {
	return valueobject.CPU
}

func (s *CPUSource) RequiresElevation() bool {
	return false
}

func (s *CPUSource) Collect(ctx context.Context, _ entity.PrivilegeState) (entity.CategoryReading, error) {
	percentages, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return entity.CategoryReading{}, fmt.Errorf("cpu percent: %w", err)
	}
	if len(percentages) == 0 {
		return entity.CategoryReading{}, fmt.Errorf("cpu percent: no samples returned")
	}

	values := map[string]float64{
		"usage_percent": percentages[0],
	}
	details := make(map[string]interface{})

	if counts, err := cpu.CountsWithContext(ctx, true); err == nil {
		details["logical_cores"] = counts
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		details["model"] = infos[0].ModelName
	}

	// Temperature is best effort: many hosts expose no CPU thermal zone,
	// and its absence is not a collection failure.
	if temp, ok := cpuTemperature(ctx); ok {
		values["temperature_c"] = temp
	}

	return entity.NewCategoryReading(valueobject.CPU, values, details)
}

// cpuTemperature picks the hottest sensor that looks like a CPU package or
// core probe.
func cpuTemperature(ctx context.Context) (float64, bool) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil || len(temps) == 0 {
		return 0, false
	}

	best := 0.0
	found := false
	for _, t := range temps {
		if !isCPUSensor(t.SensorKey) || t.Temperature <= 0 {
			continue
		}
		if !found || t.Temperature > best {
			best = t.Temperature
			found = true
		}
	}
	return best, found
}
