// Package agent implements the loops of the system, log and web agents:
// gather state, build a report, post it to the hub, sleep, repeat.
package agent

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/report"
	"github.com/Guliveer/overwatch-agents/internal/scheduler"
	"github.com/Guliveer/overwatch-agents/internal/sender"
	"github.com/Guliveer/overwatch-agents/internal/telemetry"
)

// Agent kinds used in report labels.
const (
	KindSystem = "system"
	KindLog    = "log"
	KindWeb    = "web"
)

// Options holds the dependencies shared by the agent runtimes.
type Options struct {
	Logger    *zap.Logger
	Telemetry *telemetry.Telemetry
	// Client is reused for report posts and probes across iterations.
	Client  *http.Client
	Host    string
	Version string
	Now     func() time.Time
	Sleep   scheduler.SleepFunc

	// MaxIterations stops Run after that many iterations when positive.
	MaxIterations int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Telemetry == nil {
		o.Telemetry = telemetry.Noop()
	}
	if o.Client == nil {
		o.Client = &http.Client{}
	}
	if o.Host == "" {
		o.Host = Hostname()
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// base is the part of an agent common to all kinds.
type base struct {
	kind      string
	common    *config.Common
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
	builder   *Builder
	sender    *sender.Sender
	scheduler *scheduler.Scheduler
	now       func() time.Time
}

func newBase(kind string, common *config.Common, opts Options) *base {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.String("agent", kind))
	return &base{
		kind:      kind,
		common:    common,
		logger:    logger,
		telemetry: opts.Telemetry,
		builder:   NewBuilder(kind, opts.Host, common.Watchdog(), opts.Now),
		sender: sender.New(sender.Config{
			URL:     common.ReportURL,
			Token:   common.ReportToken,
			Timeout: common.ReportTimeout.Duration,
			Client:  opts.Client,
			Logger:  logger,
		}),
		scheduler: scheduler.New(scheduler.Config{
			Interval:      common.SleepInterval.Duration,
			Logger:        logger,
			Now:           opts.Now,
			Sleep:         opts.Sleep,
			MaxIterations: opts.MaxIterations,
		}),
		now: opts.Now,
	}
}

// run drives iterate with the scheduler, recording every iteration.
func (r *base) run(ctx context.Context, iterate func(ctx context.Context)) error {
	r.logger.Info("Agent starting",
		zap.String("report_url", r.common.ReportURL),
		zap.Duration("sleep_interval", r.common.SleepInterval.Duration),
		zap.Duration("watchdog_interval", r.common.Watchdog()))

	err := r.scheduler.Run(ctx, func(ctx context.Context) {
		start := r.now()
		ctx, span := r.telemetry.StartSpan(ctx, "overwatch.iteration",
			attribute.String("agent", r.kind))
		iterate(ctx)
		telemetry.EndSpan(span, nil)
		r.telemetry.RecordIteration(ctx, r.kind, r.now().Sub(start))
	})

	r.logger.Info("Agent stopped", zap.Error(err))
	return err
}

// post sends one report. Failures are logged by the sender and never stop the loop.
func (r *base) post(ctx context.Context, rep *report.Report) {
	ctx, span := r.telemetry.StartSpan(ctx, "overwatch.report.post",
		attribute.String("agent", r.kind))
	err := r.sender.Send(ctx, rep)
	telemetry.EndSpan(span, err)
	r.telemetry.RecordReport(ctx, r.kind, err)
}
