package collector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/application/port"
	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
	"github.com/shirou/gopsutil/v3/host"
)

// Collector fans out to every registered metric source in parallel and
// assembles one snapshot per cycle. A failing source never fails the cycle:
// its category is marked degraded with the cause, and collection of the
// remaining categories proceeds.
type Collector struct {
	sources       []port.MetricSource
	gate          port.PrivilegeGate
	sourceTimeout time.Duration
	logger        *logger.Logger
}

func New(sources []port.MetricSource, gate port.PrivilegeGate, sourceTimeout time.Duration, log *logger.Logger) *Collector {
	if sourceTimeout <= 0 {
		sourceTimeout = 10 * time.Second
	}
	return &Collector{
		sources:       sources,
		gate:          gate,
		sourceTimeout: sourceTimeout,
		logger:        log,
	}
}

type sourceResult struct {
	category valueobject.Category
	reading  entity.CategoryReading
	err      error
}

// Collect runs one full collection cycle and returns the snapshot. The only
// error case is a cancelled context; per-category failures surface through
// the snapshot's degraded map.
func (c *Collector) Collect(ctx context.Context) (*entity.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	privilege := c.gate.CurrentState()
	startedAt := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]sourceResult, 0, len(c.sources))

	for _, src := range c.sources {
		wg.Add(1)
		go func(src port.MetricSource) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
			defer cancel()

			reading, err := src.Collect(srcCtx, privilege)
			if err != nil {
				err = &port.SourceError{Category: src.Category(), Err: err}
			}

			mu.Lock()
			results = append(results, sourceResult{
				category: src.Category(),
				reading:  reading,
				err:      err,
			})
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	readings := make(map[valueobject.Category]entity.CategoryReading)
	degraded := make(map[valueobject.Category]entity.DegradedReason)
	for _, res := range results {
		if res.err != nil {
			elevation := errors.Is(res.err, port.ErrElevationRequired)
			degraded[res.category] = entity.DegradedReason{
				Cause:             res.err.Error(),
				ElevationRequired: elevation,
			}
			if elevation {
				c.logger.Debug("Source needs elevation", "category", res.category.String())
			} else {
				c.logger.Warn("Source failed", "category", res.category.String(), "error", res.err.Error())
			}
			continue
		}
		readings[res.category] = res.reading
	}

	snapshot := entity.NewSnapshot(startedAt, c.systemInfo(ctx), readings, degraded)
	c.logger.Debug("Collection cycle finished",
		"duration", time.Since(startedAt).String(),
		"collected", len(readings),
		"degraded", len(degraded))

	return snapshot, nil
}

// systemInfo gathers static host facts. Failures here degrade nothing: the
// map just carries fewer keys.
func (c *Collector) systemInfo(ctx context.Context) map[string]string {
	info := map[string]string{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
	}

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return info
	}

	info["hostname"] = hi.Hostname
	info["platform"] = hi.Platform
	info["platform_version"] = hi.PlatformVersion
	info["kernel_version"] = hi.KernelVersion
	info["uptime_seconds"] = strconv.FormatUint(hi.Uptime, 10)
	if hi.BootTime > 0 {
		info["boot_time"] = time.Unix(int64(hi.BootTime), 0).UTC().Format(time.RFC3339)
	}
	info["processor"] = fmt.Sprintf("%s/%d cpus", runtime.GOARCH, runtime.NumCPU())

	return info
}
