package agent

import (
	"context"
	"errors"

	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/logtail"
	"github.com/Guliveer/overwatch-agents/internal/report"
)

// LogAgent tails log files and reports recent error lines.
type LogAgent struct {
	*base
	cfg   *config.LogAgentConfig
	files []*logtail.WatchedFile
}

// NewLogAgent creates the log agent. Files are opened on the first iteration.
func NewLogAgent(cfg *config.LogAgentConfig, opts Options) *LogAgent {
	rt := newBase(KindLog, &cfg.Common, opts)
	files := make([]*logtail.WatchedFile, 0, len(cfg.LogFiles))
	for _, lf := range cfg.LogFiles {
		files = append(files, logtail.NewWatchedFile(lf, rt.logger))
	}
	return &LogAgent{base: rt, cfg: cfg, files: files}
}

// Collect polls every file and builds one report.
func (a *LogAgent) Collect(ctx context.Context) *report.Report {
	draft := a.builder.Start("")
	state := draft.State()
	state.Set("configuration_file", report.String(a.cfg.FilePath))

	files := report.NewMap()
	for _, wf := range a.files {
		now := a.now()
		wf.Poll(now)
		if wf.Err() != nil {
			a.telemetry.RecordProbeError(ctx, a.kind, "log_file")
		}
		files.Set(wf.Key(), wf.Report(now))
	}
	state.Set("log_files", files)

	return draft.Finish("iteration_duration_s")
}

// Iterate polls the files and posts one report.
func (a *LogAgent) Iterate(ctx context.Context) {
	a.post(ctx, a.Collect(ctx))
}

// Run loops until ctx is cancelled, then closes the files.
func (a *LogAgent) Run(ctx context.Context) error {
	defer a.Close()
	return a.run(ctx, a.Iterate)
}

// Close releases all open file handles.
func (a *LogAgent) Close() error {
	var errs []error
	for _, wf := range a.files {
		errs = append(errs, wf.Close())
	}
	return errors.Join(errs...)
}
