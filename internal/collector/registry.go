package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

// Registry manages all registered collectors and runs them in registration order.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// Register adds a collector if it's available on the current platform.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Debug("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Info("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// CollectAll runs the registered collectors one after another and stores each
// result under the collector name. A failed collector is logged and reported
// as null; it never prevents the others from running.
func (r *Registry) CollectAll(ctx context.Context, state *report.Map) {
	for _, c := range r.collectors {
		node, err := c.Collect(ctx)
		if err != nil {
			r.logger.Error("Collection failed",
				zap.String("collector", c.Name()),
				zap.Error(err))
			node = report.Null()
		}
		state.Set(c.Name(), node)
	}
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
