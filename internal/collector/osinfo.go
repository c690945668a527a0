// Host info collector: gathers OS, platform and kernel versions.
// Results are cached since they rarely change during runtime.
package collector

import (
	"context"
	"sync"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// HostInfoCollector collects OS name and version information.
// Results are cached after the first successful collection.
type HostInfoCollector struct {
	mu    sync.Mutex
	cache *report.Map
}

// NewHostInfoCollector creates a new host info collector.
func NewHostInfoCollector() *HostInfoCollector {
	return &HostInfoCollector{}
}

// Name returns the collector identifier.
func (c *HostInfoCollector) Name() string { return "host" }

// Collect gathers OS name and version.
func (c *HostInfoCollector) Collect(ctx context.Context) (report.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache != nil {
		return c.cache, nil
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	c.cache = report.NewMap().
		Set("os", report.String(info.OS)).
		Set("platform", report.String(info.Platform)).
		Set("platform_version", report.String(info.PlatformVersion)).
		Set("kernel_version", report.String(info.KernelVersion)).
		Set("kernel_arch", report.String(info.KernelArch))
	return c.cache, nil
}

// IsAvailable returns true; host info is available on all platforms.
func (c *HostInfoCollector) IsAvailable() bool { return true }
