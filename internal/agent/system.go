package agent

import (
	"context"

	"github.com/Guliveer/overwatch-agents/internal/collector"
	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/report"
)

// SystemAgent reports host metrics.
type SystemAgent struct {
	*base
	registry *collector.Registry
}

// NewSystemAgent creates the system agent and registers its collectors in
// report order.
func NewSystemAgent(cfg *config.SystemConfig, opts Options) *SystemAgent {
	opts = opts.withDefaults()
	rt := newBase(KindSystem, &cfg.Common, opts)

	registry := collector.NewRegistry(rt.logger)
	registry.Register(collector.NewCPUCollector(rt.logger))
	registry.Register(collector.NewLoadCollector())
	registry.Register(collector.NewUptimeCollector(rt.logger))
	registry.Register(collector.NewDiskCollector(rt.logger))
	registry.Register(collector.NewMemoryCollector())
	registry.Register(collector.NewSwapCollector())
	registry.Register(collector.NewNetworkCollector())
	registry.Register(collector.NewHostInfoCollector())
	registry.Register(collector.NewOutwardIP4Collector(cfg.OutwardIP.IPv4URL, rt.logger))
	registry.Register(collector.NewOutwardIP6Collector(cfg.OutwardIP.IPv6URL, rt.logger))
	registry.Register(collector.NewAgentCollector(opts.Version))

	return &SystemAgent{base: rt, registry: registry}
}

// Collect gathers one report.
func (a *SystemAgent) Collect(ctx context.Context) *report.Report {
	draft := a.builder.Start("")
	a.registry.CollectAll(ctx, draft.State())
	return draft.Finish("duration")
}

// Iterate gathers and posts one report.
func (a *SystemAgent) Iterate(ctx context.Context) {
	a.post(ctx, a.Collect(ctx))
}

// Run loops until ctx is cancelled.
func (a *SystemAgent) Run(ctx context.Context) error {
	return a.run(ctx, a.Iterate)
}
