// Package collector defines the Collector interface and provides
// implementations for the system agent's metric gatherers.
package collector

import (
	"context"
	"math"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// Collector is the interface that all metric collectors must implement.
// Each collector gathers one top-level section of the system state.
type Collector interface {
	// Name returns the state key this collector fills.
	Name() string

	// Collect gathers the metric data and returns it as a report node.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (report.Node, error)

	// IsAvailable checks if this collector can run on the current platform.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}

// Units used by the system collectors.
const (
	unitBytes    = "bytes"
	unitSeconds  = "seconds"
	unitPercents = "percents"
)

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func bytesValue(n uint64, opts ...report.Option) report.Value {
	return report.Encode(report.Uint(n), append([]report.Option{report.Unit(unitBytes)}, opts...)...)
}

func counter(n uint64) report.Value {
	return report.Encode(report.Uint(n), report.Counter())
}
