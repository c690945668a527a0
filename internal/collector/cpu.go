// CPU collector: gathers core counts, cumulative CPU times and scheduler counters.
// Uses gopsutil for cross-platform CPU metrics.
package collector

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// CPUCollector collects CPU metrics.
type CPUCollector struct {
	logger *zap.Logger
}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector(logger *zap.Logger) *CPUCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CPUCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// Collect gathers CPU counts, times (counters, seconds) and stats (counters).
func (c *CPUCollector) Collect(ctx context.Context) (report.Node, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("logical cpu count: %w", err)
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		// Non-fatal: some virtualized hosts do not expose cores
		c.logger.Debug("Physical CPU count not available", zap.Error(err))
	}

	data := report.NewMap()
	data.Set("count", report.NewMap().
		Set("logical", report.Int(int64(logical))).
		Set("physical", report.Int(int64(physical))))

	times := report.NewMap()
	ts, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("cpu times: %w", err)
	}
	if len(ts) > 0 {
		t := ts[0]
		times.Set("user", cpuTime(t.User))
		times.Set("system", cpuTime(t.System))
		times.Set("idle", cpuTime(t.Idle))
		if runtime.GOOS == "linux" {
			times.Set("iowait", cpuTime(t.Iowait))
		}
	}
	data.Set("times", times)

	stats := report.NewMap()
	misc, err := load.MiscWithContext(ctx)
	if err != nil {
		c.logger.Debug("CPU stats not available", zap.Error(err))
	} else {
		stats.Set("ctx_switches", counter(uint64(misc.Ctxt)))
		stats.Set("procs_running", report.Int(int64(misc.ProcsRunning)))
		stats.Set("procs_blocked", report.Int(int64(misc.ProcsBlocked)))
	}
	data.Set("stats", stats)

	return data, nil
}

func cpuTime(seconds float64) report.Value {
	return report.Encode(report.Float(seconds), report.Unit(unitSeconds), report.Counter())
}

// IsAvailable returns true; CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }
