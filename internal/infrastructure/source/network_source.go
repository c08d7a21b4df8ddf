package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/system-diagnostics/internal/domain/entity"
	"github.com/dreschagin/system-diagnostics/internal/domain/valueobject"
	"github.com/shirou/gopsutil/v3/net"
)

// NetworkSource collects aggregate send/receive throughput. gopsutil exposes
// monotonic byte counters, so the source keeps the previous sample and
// reports the delta as KB/s. The first cycle has no baseline and reports
// zero rates.
type NetworkSource struct {
	mu        sync.Mutex
	lastStats *net.IOCountersStat
	lastCheck time.Time
}

func NewNetworkSource() *NetworkSource {
	return &NetworkSource{}
}

func (s *NetworkSource) Category() valueobject.Category {
	return valueobject.Network
}

func (s *NetworkSource) RequiresElevation() bool {
	return false
}

func (s *NetworkSource) Collect(ctx context.Context, _ entity.PrivilegeState) (entity.CategoryReading, error) {
	stats, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return entity.CategoryReading{}, fmt.Errorf("network counters: %w", err)
	}
	if len(stats) == 0 {
		return entity.CategoryReading{}, fmt.Errorf("network counters: no interfaces")
	}

	now := time.Now()
	current := stats[0]

	s.mu.Lock()
	var sentKBps, recvKBps float64
	if s.lastStats != nil {
		elapsed := now.Sub(s.lastCheck).Seconds()
		if elapsed > 0 && current.BytesSent >= s.lastStats.BytesSent {
			sentKBps = float64(current.BytesSent-s.lastStats.BytesSent) / elapsed / 1024
			recvKBps = float64(current.BytesRecv-s.lastStats.BytesRecv) / elapsed / 1024
		}
	}
	s.lastStats = &current
	s.lastCheck = now
	s.mu.Unlock()

	values := map[string]float64{
		"sent_kbps": sentKBps,
		"recv_kbps": recvKBps,
	}
	details := map[string]interface{}{
		"bytes_sent":   current.BytesSent,
		"bytes_recv":   current.BytesRecv,
		"packets_sent": current.PacketsSent,
		"packets_recv": current.PacketsRecv,
	}

	return entity.NewCategoryReading(valueobject.Network, values, details)
}
