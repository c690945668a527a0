// Network I/O collector: gathers cumulative RX/TX counters.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// NetworkCollector collects network I/O counters summed over all interfaces.
// Values are reported as counters; the hub computes rates from consecutive reports.
type NetworkCollector struct{}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// Collect gathers the byte, packet and error counters.
func (c *NetworkCollector) Collect(ctx context.Context) (report.Node, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	data := report.NewMap()
	if len(counters) == 0 {
		return data, nil
	}
	io := counters[0]
	data.Set("bytes_sent", report.Encode(report.Uint(io.BytesSent), report.Counter(), report.Unit(unitBytes)))
	data.Set("bytes_recv", report.Encode(report.Uint(io.BytesRecv), report.Counter(), report.Unit(unitBytes)))
	data.Set("packets_sent", counter(io.PacketsSent))
	data.Set("packets_recv", counter(io.PacketsRecv))
	data.Set("errin", counter(io.Errin))
	data.Set("errout", counter(io.Errout))
	return data, nil
}

// IsAvailable returns true; network metrics are available on all platforms.
func (c *NetworkCollector) IsAvailable() bool { return true }
