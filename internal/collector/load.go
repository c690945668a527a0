// Load average collector.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/load"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// LoadCollector collects the 1, 5 and 15 minute load averages.
type LoadCollector struct{}

// NewLoadCollector creates a new load collector.
func NewLoadCollector() *LoadCollector {
	return &LoadCollector{}
}

// Name returns the collector identifier.
func (c *LoadCollector) Name() string { return "load" }

// Collect gathers the load averages rounded to two decimals.
func (c *LoadCollector) Collect(ctx context.Context) (report.Node, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewMap().
		Set("01m", report.Float(round(avg.Load1, 2))).
		Set("05m", report.Float(round(avg.Load5, 2))).
		Set("15m", report.Float(round(avg.Load15, 2))), nil
}

// IsAvailable returns true; platforms without load averages report null.
func (c *LoadCollector) IsAvailable() bool { return true }
