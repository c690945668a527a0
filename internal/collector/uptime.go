// System uptime collector: gathers seconds since last boot and the boot time.
// Uses gopsutil host for cross-platform uptime metrics.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// UptimeCollector collects system uptime.
type UptimeCollector struct {
	logger *zap.Logger
}

// NewUptimeCollector creates a new uptime collector.
func NewUptimeCollector(logger *zap.Logger) *UptimeCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UptimeCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *UptimeCollector) Name() string { return "uptime" }

// Collect gathers the uptime. When the platform cannot provide it the
// result is null rather than an error.
func (c *UptimeCollector) Collect(ctx context.Context) (report.Node, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		c.logger.Debug("Cannot determine uptime", zap.Error(err))
		return report.Null(), nil
	}

	data := report.NewMap().
		Set("seconds", report.Encode(report.Uint(uptime), report.Unit(unitSeconds))).
		Set("string", report.String(formatUptime(time.Duration(uptime)*time.Second)))

	if boot, err := host.BootTimeWithContext(ctx); err == nil {
		data.Set("boot_time", report.String(report.FormatDate(time.Unix(int64(boot), 0))))
	}
	return data, nil
}

// formatUptime renders d as "N days, H:MM:SS".
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	rest := total % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rest/3600, rest%3600/60, rest%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}

// IsAvailable returns true; unsupported platforms report null.
func (c *UptimeCollector) IsAvailable() bool { return true }
