package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/shirou/gopsutil/v3/disk"
)

// DiskSource collects used-space percentages for every real mountpoint.
// Pseudo filesystems (proc, sysfs, overlay scratch mounts) are skipped.
type DiskSource struct{}

func NewDiskSource() *DiskSource {
	return &DiskSource{}
}

func (s *DiskSource) Category() valueobject.Category {
	return valueobject.Disk
}

func (s *DiskSource) RequiresElevation() bool {
	return false
}

func (s *DiskSource) Collect(ctx context.Context, _ entity.PrivilegeState) (entity.CategoryReading, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return entity.CategoryReading{}, fmt.Errorf("disk partitions: %w", err)
	}

	values := make(map[string]float64)
	details := make(map[string]interface{})

	for _, p := range partitions {
		if skipFilesystem(p.Fstype) {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			// A single unreadable mount does not degrade the category.
			continue
		}
		values[p.Mountpoint] = usage.UsedPercent
		details[p.Mountpoint] = map[string]interface{}{
			"fstype":      p.Fstype,
			"total_bytes": usage.Total,
			"free_bytes":  usage.Free,
		}
	}

	if len(values) == 0 {
		return entity.CategoryReading{}, fmt.Errorf("disk usage: no readable mountpoints")
	}

	return entity.NewCategoryReading(valueobject.Disk, values, details)
}

func skipFilesystem(fstype string) bool {
	switch strings.ToLower(fstype) {
	case "proc", "sysfs", "devfs", "devtmpfs", "tmpfs", "squashfs", "overlay", "cgroup", "cgroup2":
		return true
	}
	return false
}
