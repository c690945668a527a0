package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/Guliveer/overwatch-agents"

// Report outcomes recorded on the reports counter.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Metrics records the agent loop metrics.
type Metrics struct {
	enabled       bool
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter

	iterations        metric.Int64Counter
	iterationDuration metric.Float64Histogram
	reports           metric.Int64Counter
	probeErrors       metric.Int64Counter
}

// NewMetrics creates the meter provider for cfg.
func NewMetrics(ctx context.Context, cfg Config) (*Metrics, error) {
	if !enabled(cfg) {
		return newMetrics(sdkmetric.NewMeterProvider(), false)
	}

	exporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	return newMetrics(mp, true)
}

// NewMetricsWithReader creates metrics read by reader, e.g. a manual reader in tests.
func NewMetricsWithReader(reader sdkmetric.Reader) (*Metrics, error) {
	return newMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), true)
}

func newMetrics(mp *sdkmetric.MeterProvider, on bool) (*Metrics, error) {
	m := &Metrics{
		enabled:       on,
		meterProvider: mp,
		meter:         mp.Meter(meterName),
	}
	if err := m.registerInstruments(); err != nil {
		return nil, err
	}
	return m, nil
}

func newMetricExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdoutmetric.New()

	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)

	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Exporter)
	}
}

func (m *Metrics) registerInstruments() error {
	var err error

	m.iterations, err = m.meter.Int64Counter(
		"overwatch.agent.iterations",
		metric.WithDescription("Number of completed agent iterations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create iterations counter: %w", err)
	}

	m.iterationDuration, err = m.meter.Float64Histogram(
		"overwatch.agent.iteration.duration",
		metric.WithDescription("Wall-clock duration of agent iterations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create iteration duration histogram: %w", err)
	}

	m.reports, err = m.meter.Int64Counter(
		"overwatch.agent.reports",
		metric.WithDescription("Reports posted to the hub by outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reports counter: %w", err)
	}

	m.probeErrors, err = m.meter.Int64Counter(
		"overwatch.agent.probe.errors",
		metric.WithDescription("Failed probes by kind (collector, log file, web target)"),
	)
	if err != nil {
		return fmt.Errorf("failed to create probe errors counter: %w", err)
	}

	return nil
}

// RecordIteration records one finished iteration of agent.
func (m *Metrics) RecordIteration(ctx context.Context, agent string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("agent", agent))
	m.iterations.Add(ctx, 1, attrs)
	m.iterationDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordReport records the outcome of one report post.
func (m *Metrics) RecordReport(ctx context.Context, agent string, err error) {
	outcome := OutcomeSent
	if err != nil {
		outcome = OutcomeFailed
	}
	m.reports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("outcome", outcome),
	))
}

// RecordProbeError records a failed probe of the given kind.
func (m *Metrics) RecordProbeError(ctx context.Context, agent, kind string) {
	m.probeErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("kind", kind),
	))
}

// Enabled reports whether metrics are exported.
func (m *Metrics) Enabled() bool { return m.enabled }

// Shutdown flushes pending metrics and stops the provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.meterProvider.Shutdown(ctx)
}
