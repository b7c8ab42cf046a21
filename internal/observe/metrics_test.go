package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"wayfarer.llm.duration", m.LLMDuration},
		{"wayfarer.tool_execution.duration", m.ToolExecutionDuration},
		{"wayfarer.turn.duration", m.TurnDuration},
	}

	for _, h := range histograms {
		h.h.Record(ctx, 0.42)
	}

	rm := collect(t, reader)
	for _, h := range histograms {
		got := findMetric(rm, h.name)
		if got == nil {
			t.Errorf("metric %q not recorded", h.name)
		}
	}
}

func TestRecordToolCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordToolCall(ctx, "query_weather", "ok")
	m.RecordToolCall(ctx, "query_weather", "error")

	rm := collect(t, reader)
	got := findMetric(rm, "wayfarer.tool.calls")
	if got == nil {
		t.Fatal("wayfarer.tool.calls not recorded")
	}
	sum, ok := got.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", got.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("expected 2 attribute sets, got %d", len(sum.DataPoints))
	}
}

func TestRecordTurnAndIntentMatch(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTurn(ctx, "intent", "ok")
	m.RecordIntentMatch(ctx, "weather")

	rm := collect(t, reader)
	if findMetric(rm, "wayfarer.turns") == nil {
		t.Error("wayfarer.turns not recorded")
	}
	if findMetric(rm, "wayfarer.intent.matches") == nil {
		t.Error("wayfarer.intent.matches not recorded")
	}
}
