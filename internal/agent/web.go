package agent

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/report"
	"github.com/Guliveer/overwatch-agents/internal/telemetry"
	"github.com/Guliveer/overwatch-agents/internal/webcheck"
)

// WebAgent probes web targets and posts one report per target.
type WebAgent struct {
	*base
	cfg     *config.WebAgentConfig
	checker *webcheck.Checker
}

// NewWebAgent creates the web agent.
func NewWebAgent(cfg *config.WebAgentConfig, opts Options) *WebAgent {
	opts = opts.withDefaults()
	rt := newBase(KindWeb, &cfg.Common, opts)
	checker := webcheck.New(webcheck.Options{
		Client:    opts.Client,
		Logger:    rt.logger,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout.Duration,
		Now:       opts.Now,
	})
	return &WebAgent{base: rt, cfg: cfg, checker: checker}
}

// Check probes one target and builds its report.
func (a *WebAgent) Check(ctx context.Context, t config.Target) *report.Report {
	ctx, span := a.telemetry.StartSpan(ctx, "overwatch.web.check",
		attribute.String("url", t.URL))
	defer telemetry.EndSpan(span, nil)

	draft := a.builder.Start(t.Label())
	draft.Report.State = a.checker.CheckTarget(ctx, t)
	if v, ok := draft.State().Value("error"); ok && v.State() == report.Red {
		a.telemetry.RecordProbeError(ctx, a.kind, "web_target")
	}
	return draft.Finish("")
}

// Iterate checks the targets one after another, posting each report as soon
// as it is ready.
func (a *WebAgent) Iterate(ctx context.Context) {
	for i, t := range a.cfg.Watch {
		if ctx.Err() != nil {
			return
		}
		a.logger.Info("Processing target",
			zap.Int("n", i+1),
			zap.Int("total", len(a.cfg.Watch)),
			zap.String("url", t.URL))
		a.post(ctx, a.Check(ctx, t))
	}
}

// Run loops until ctx is cancelled.
func (a *WebAgent) Run(ctx context.Context) error {
	return a.run(ctx, a.Iterate)
}
