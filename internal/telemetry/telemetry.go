// Package telemetry provides OpenTelemetry self-instrumentation of the agents:
// loop metrics and spans around iterations, probes and report posts.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter selects where telemetry is sent.
type Exporter string

const (
	// ExporterNone disables telemetry export.
	ExporterNone Exporter = "none"
	// ExporterStdout writes telemetry to stdout, useful for debugging.
	ExporterStdout Exporter = "stdout"
	// ExporterOTLPHTTP exports via OTLP over HTTP.
	ExporterOTLPHTTP Exporter = "otlp_http"
	// ExporterOTLPGRPC exports via OTLP over gRPC.
	ExporterOTLPGRPC Exporter = "otlp_grpc"
)

// Config holds the telemetry settings of one agent process.
type Config struct {
	// ServiceName is the name of the service for attribution, e.g. overwatch-web-agent.
	ServiceName string

	// ServiceVersion is the version of the agent.
	ServiceVersion string

	Exporter Exporter

	// Endpoint is the collector address for OTLP exporters (e.g., "localhost:4318").
	Endpoint string

	// Insecure disables TLS for OTLP connections.
	Insecure bool

	// Attributes are added to the resource of all telemetry.
	Attributes map[string]string
}

// Telemetry bundles the metrics and tracing of an agent.
type Telemetry struct {
	*Metrics
	*Tracer
}

// New creates metrics and tracing for cfg. With ExporterNone both are no-ops.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	m, err := NewMetrics(ctx, cfg)
	if err != nil {
		return nil, err
	}
	t, err := NewTracer(ctx, cfg)
	if err != nil {
		m.Shutdown(ctx)
		return nil, err
	}
	return &Telemetry{Metrics: m, Tracer: t}, nil
}

// Noop returns telemetry that records nothing.
func Noop() *Telemetry {
	t, _ := New(context.Background(), Config{Exporter: ExporterNone})
	return t
}

// Enabled reports whether anything is exported.
func (t *Telemetry) Enabled() bool {
	return t.Metrics.Enabled() || t.Tracer.Enabled()
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Metrics.Shutdown(ctx), t.Tracer.Shutdown(ctx))
}

func enabled(cfg Config) bool {
	return cfg.Exporter != "" && cfg.Exporter != ExporterNone
}

func newResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	for k, v := range cfg.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry resource: %w", err)
	}
	return res, nil
}
