package agent

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// Builder assembles report envelopes for one agent kind.
type Builder struct {
	kind     string
	host     string
	watchdog time.Duration
	now      func() time.Time
}

// NewBuilder creates a builder labelling reports with kind and host.
// watchdog is added to the finish time to compute the deadline.
func NewBuilder(kind, host string, watchdog time.Duration, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{kind: kind, host: host, watchdog: watchdog, now: now}
}

// Draft is a report under construction.
type Draft struct {
	Report *report.Report
	start  time.Time
	b      *Builder
}

// Start begins a report dated now. A non-empty target is added to the label.
func (b *Builder) Start(target string) *Draft {
	label := report.NewMap().
		Set("agent", report.String(b.kind)).
		Set("host", report.String(b.host))
	if target != "" {
		label.Set("target", report.String(target))
	}
	start := b.now()
	return &Draft{Report: report.New(label, start), start: start, b: b}
}

// State returns the state map of the draft.
func (d *Draft) State() *report.Map { return d.Report.State }

// Finish records the elapsed time under durationKey (skipped when empty) and
// appends the watchdog block as the last state entry.
func (d *Draft) Finish(durationKey string) *report.Report {
	now := d.b.now()
	if durationKey != "" {
		d.Report.State.Set(durationKey, report.Float(now.Sub(d.start).Seconds()))
	}
	d.Report.State.Set("watchdog", report.NewWatchdog(now, d.b.watchdog))
	return d.Report
}

// Hostname returns the fully qualified name of this host when DNS knows it,
// else the kernel hostname.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	if cname, err := net.LookupCNAME(h); err == nil {
		if fqdn := strings.TrimSuffix(cname, "."); fqdn != "" {
			return fqdn
		}
	}
	return h
}
