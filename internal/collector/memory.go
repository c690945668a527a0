// RAM and swap collectors.
// Uses gopsutil for cross-platform memory metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Guliveer/overwatch-agents/internal/report"
	"github.com/Guliveer/overwatch-agents/internal/threshold"
)

// MemoryCollector collects RAM usage metrics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect gathers memory usage data.
func (c *MemoryCollector) Collect(ctx context.Context) (report.Node, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewMap().
		Set("total_bytes", bytesValue(v.Total)).
		Set("available_bytes", bytesValue(v.Available)).
		Set("used_bytes", bytesValue(v.Used)).
		Set("percent", report.Encode(report.Float(round(v.UsedPercent, 1)), report.Unit(unitPercents))), nil
}

// IsAvailable returns true; memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }

// SwapCollector collects swap usage metrics.
type SwapCollector struct{}

// NewSwapCollector creates a new swap collector.
func NewSwapCollector() *SwapCollector {
	return &SwapCollector{}
}

// Name returns the collector identifier.
func (c *SwapCollector) Name() string { return "swap" }

// Collect gathers swap usage; the percentage carries the swap check.
func (c *SwapCollector) Collect(ctx context.Context) (report.Node, error) {
	s, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return swapNode(s.Total, s.Used, s.Free, s.UsedPercent), nil
}

func swapNode(total, used, free uint64, percent float64) *report.Map {
	return report.NewMap().
		Set("total_bytes", bytesValue(total)).
		Set("used_bytes", bytesValue(used)).
		Set("free_bytes", bytesValue(free)).
		Set("percent", report.Encode(report.Float(percent),
			report.Checked(threshold.SwapPercent(percent))))
}

// IsAvailable returns true; swap metrics are available on all platforms.
func (c *SwapCollector) IsAvailable() bool { return true }
