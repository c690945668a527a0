// Disk usage collector: gathers per-mount disk usage information.
// Uses gopsutil for cross-platform disk metrics.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/report"
	"github.com/Guliveer/overwatch-agents/internal/threshold"
)

// DiskCollector collects disk usage metrics per mount point.
type DiskCollector struct {
	logger *zap.Logger
}

// NewDiskCollector creates a new disk collector.
func NewDiskCollector(logger *zap.Logger) *DiskCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiskCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return "volumes" }

// Collect gathers disk usage data for all mounted partitions, keyed by mount point.
// Inaccessible partitions are skipped.
func (c *DiskCollector) Collect(ctx context.Context) (report.Node, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	volumes := report.NewMap()
	for _, p := range partitions {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			c.logger.Debug("Skipping inaccessible partition",
				zap.String("mount", p.Mountpoint),
				zap.Error(err))
			continue
		}
		// Skip partitions with 0 total bytes (some virtual mounts report 0 size)
		if usage.Total == 0 {
			continue
		}
		volumes.Set(p.Mountpoint, volumeNode(p, usage))
	}

	return volumes, nil
}

// volumeNode builds the report of one volume with its free-space and percent checks.
func volumeNode(p disk.PartitionStat, u *disk.UsageStat) *report.Map {
	usage := report.NewMap().
		Set("total_bytes", bytesValue(u.Total)).
		Set("used_bytes", bytesValue(u.Used)).
		Set("free_bytes", bytesValue(u.Free, report.Checked(threshold.DiskFree(u.Total, u.Free)))).
		Set("percent", report.Encode(report.Float(u.UsedPercent),
			report.Unit(unitPercents),
			report.Checked(threshold.DiskPercent(u.UsedPercent))))

	return report.NewMap().
		Set("mountpoint", report.String(p.Mountpoint)).
		Set("device", report.String(p.Device)).
		Set("fstype", report.String(p.Fstype)).
		Set("opts", report.String(strings.Join(p.Opts, ","))).
		Set("usage", usage)
}

// IsAvailable returns true; disk metrics are available on all platforms.
func (c *DiskCollector) IsAvailable() bool { return true }
