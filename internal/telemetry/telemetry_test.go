package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordsLoopActivity(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetricsWithReader(reader)
	if err != nil {
		t.Fatalf("NewMetricsWithReader: %v", err)
	}
	ctx := context.Background()

	m.RecordIteration(ctx, "system", 120*time.Millisecond)
	m.RecordIteration(ctx, "system", 80*time.Millisecond)
	m.RecordReport(ctx, "system", nil)
	m.RecordReport(ctx, "system", errors.New("hub down"))
	m.RecordReport(ctx, "system", errors.New("hub down"))
	m.RecordProbeError(ctx, "web", "web_target")

	got := collect(t, reader)

	if n := sumFor(t, got["overwatch.agent.iterations"], "agent", "system"); n != 2 {
		t.Errorf("iterations = %d, want 2", n)
	}
	reports := got["overwatch.agent.reports"]
	if n := sumFor(t, reports, "outcome", OutcomeSent); n != 1 {
		t.Errorf("sent reports = %d, want 1", n)
	}
	if n := sumFor(t, reports, "outcome", OutcomeFailed); n != 2 {
		t.Errorf("failed reports = %d, want 2", n)
	}
	if n := sumFor(t, got["overwatch.agent.probe.errors"], "kind", "web_target"); n != 1 {
		t.Errorf("probe errors = %d, want 1", n)
	}

	hist, ok := got["overwatch.agent.iteration.duration"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("iteration duration is %T", got["overwatch.agent.iteration.duration"].Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("histogram data points = %+v, want one point with count 2", hist.DataPoints)
	}
}

func TestNew_None(t *testing.T) {
	ctx := context.Background()
	tel, err := New(ctx, Config{ServiceName: "overwatch-system-agent", Exporter: ExporterNone})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tel.Shutdown(ctx)

	if tel.Enabled() {
		t.Error("expected telemetry to be disabled")
	}
	// Recording on disabled telemetry must be safe.
	tel.RecordIteration(ctx, "system", time.Second)
	spanCtx, span := tel.StartSpan(ctx, "iteration")
	EndSpan(span, nil)
	if spanCtx == nil {
		t.Error("expected non-nil context")
	}
}

func TestNew_Stdout(t *testing.T) {
	ctx := context.Background()
	tel, err := New(ctx, Config{ServiceName: "overwatch-web-agent", ServiceVersion: "test", Exporter: ExporterStdout})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !tel.Enabled() {
		t.Error("expected telemetry to be enabled")
	}
	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_UnknownExporter(t *testing.T) {
	if _, err := New(context.Background(), Config{Exporter: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown exporter")
	}
}

func TestTracer_EndSpanRecordsError(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	tr := NewTracerWithProvider(tp)
	ctx := context.Background()

	_, ok := tr.StartSpan(ctx, "post-report", attribute.String("agent", "log"))
	EndSpan(ok, nil)
	_, failed := tr.StartSpan(ctx, "post-report")
	EndSpan(failed, errors.New("hub returned 500"))

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Status.Code != codes.Unset {
		t.Errorf("first span status = %v, want unset", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("second span status = %v, want error", spans[1].Status.Code)
	}
	if err := tr.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
