package source

import (
	"context"
	"fmt"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemorySource collects virtual memory and swap utilization.
type MemorySource struct{}

func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

func (s *MemorySource) Category() valueobject.Category {
	return valueobject.Memory
}

func (s *MemorySource) RequiresElevation() bool {
	return false
}

func (s *MemorySource) Collect(ctx context.Context, _ entity.PrivilegeState) (entity.CategoryReading, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return entity.CategoryReading{}, fmt.Errorf("virtual memory: %w", err)
	}

	values := map[string]float64{
		"usage_percent": vm.UsedPercent,
	}
	details := map[string]interface{}{
		"total_bytes":     vm.Total,
		"available_bytes": vm.Available,
		"used_bytes":      vm.Used,
	}

	// Swap may be absent (containers, some cloud images); report zero
	// rather than failing the category.
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		values["swap_percent"] = swap.UsedPercent
		details["swap_total_bytes"] = swap.Total
	} else {
		values["swap_percent"] = 0
	}

	return entity.NewCategoryReading(valueobject.Memory, values, details)
}
