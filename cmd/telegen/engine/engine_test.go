package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/homeobs/telegen"
	"github.com/homeobs/telegen/cmd/telegen/workload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// logRecorder is an in-memory sdklog.Processor for asserting emitted records.
type logRecorder struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (r *logRecorder) OnEmit(_ context.Context, rec *sdklog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())

	return nil
}

func (r *logRecorder) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }

func (r *logRecorder) Shutdown(context.Context) error   { return nil }
func (r *logRecorder) ForceFlush(context.Context) error { return nil }

func (r *logRecorder) bySeverity(sev otellog.Severity) []sdklog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []sdklog.Record
	for _, rec := range r.records {
		if rec.Severity() == sev {
			out = append(out, rec)
		}
	}

	return out
}

// testHarness holds an engine wired to in-memory recorders.
type testHarness struct {
	engine *Engine
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *logRecorder
}

func newTestHarness(t *testing.T, cfg Config, wl *workload.Workload) *testHarness {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	providers := &telegen.Providers{Tracer: tp, Meter: mp}

	var logs *logRecorder
	if cfg.EnableLogs {
		logs = &logRecorder{}
		providers.Logger = sdklog.NewLoggerProvider(sdklog.WithProcessor(logs))
	}

	eng, err := newEngine(providers, cfg, wl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	return &testHarness{engine: eng, spans: spans, reader: reader, logs: logs}
}

// fastDemo returns the demo workload with a sub-millisecond latency range so
// iteration sleeps stay negligible.
func fastDemo() *workload.Workload {
	wl := workload.Demo()
	wl.Latency = workload.LatencyRange{MinMs: 0.1, MaxMs: 0.2}

	return wl
}

func TestRunIteration_Demo_SpanTree(t *testing.T) {
	h := newTestHarness(t, Config{}, workload.Demo())

	res := h.engine.RunIteration(context.Background())
	assert.Equal(t, int64(1), res.Iteration)
	assert.False(t, res.Failed)
	assert.GreaterOrEqual(t, res.LatencyMs, 10.0)
	assert.Less(t, res.LatencyMs, 200.0)

	// Exactly one parent with exactly one nested child
	ended := h.spans.Ended()
	require.Len(t, ended, 2)

	child, root := ended[0], ended[1]
	assert.Equal(t, "process-data", child.Name())
	assert.Equal(t, "demo-operation", root.Name())
	assert.Equal(t, root.SpanContext().SpanID(), child.Parent().SpanID())
	assert.Equal(t, root.SpanContext().TraceID(), child.SpanContext().TraceID())

	assert.Contains(t, root.Attributes(), attribute.Int64("request.id", 1))
	assert.Contains(t, root.Attributes(), attribute.Float64("request.latency_ms", res.LatencyMs))
}

func TestRunIteration_CountIncrements(t *testing.T) {
	h := newTestHarness(t, Config{}, fastDemo())

	for i := int64(1); i <= 3; i++ {
		res := h.engine.RunIteration(context.Background())
		assert.Equal(t, i, res.Iteration)
	}
}

func TestRunIteration_Metrics(t *testing.T) {
	h := newTestHarness(t, Config{}, workload.Demo())

	res := h.engine.RunIteration(context.Background())

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	// Counter: +1 with status=success
	counter, ok := byName["demo.requests"]
	require.True(t, ok, "demo.requests should be exported")
	sum, ok := counter.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	status, ok := sum.DataPoints[0].Attributes.Value("status")
	require.True(t, ok)
	assert.Equal(t, "success", status.AsString())

	// Histogram: one sample, the iteration latency, in [10, 200)
	histogram, ok := byName["demo.latency"]
	require.True(t, ok, "demo.latency should be exported")
	assert.Equal(t, "ms", histogram.Unit)
	hist, ok := histogram.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, res.LatencyMs, hist.DataPoints[0].Sum)
	endpoint, ok := hist.DataPoints[0].Attributes.Value("endpoint")
	require.True(t, ok)
	assert.Equal(t, "/demo", endpoint.AsString())
}

func TestRunIteration_WarnLogAboveThreshold(t *testing.T) {
	wl := workload.Demo()
	wl.Latency = workload.LatencyRange{MinMs: 160, MaxMs: 161} // always above 150

	h := newTestHarness(t, Config{EnableLogs: true}, wl)
	h.engine.RunIteration(context.Background())

	infos := h.logs.bySeverity(otellog.SeverityInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, "iteration completed", infos[0].Body().AsString())

	warns := h.logs.bySeverity(otellog.SeverityWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "latency above threshold", warns[0].Body().AsString())
}

func TestRunIteration_NoWarnLogBelowThreshold(t *testing.T) {
	wl := workload.Demo()
	wl.Latency = workload.LatencyRange{MinMs: 10, MaxMs: 11} // always below 150

	h := newTestHarness(t, Config{EnableLogs: true}, wl)
	h.engine.RunIteration(context.Background())

	assert.Len(t, h.logs.bySeverity(otellog.SeverityInfo), 1)
	assert.Empty(t, h.logs.bySeverity(otellog.SeverityWarn))
}

func TestRunIteration_LogsDisabled(t *testing.T) {
	h := newTestHarness(t, Config{}, workload.Demo())
	h.engine.RunIteration(context.Background())
	assert.Nil(t, h.logs)
}

func TestRunIteration_ErrorRateMarksSpan(t *testing.T) {
	wl := fastDemo()
	wl.Root.Children[0].ErrorRate = 1.0 // always fail
	wl.Root.Children[0].ErrorStatus = "simulated failure"

	h := newTestHarness(t, Config{}, wl)
	res := h.engine.RunIteration(context.Background())
	assert.True(t, res.Failed)

	ended := h.spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "simulated failure", ended[0].Status().Description)

	// Failed iterations flip the counter status attribute
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "demo.requests" {
			continue
		}
		sum := m.Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1)
		status, ok := sum.DataPoints[0].Attributes.Value("status")
		require.True(t, ok)
		assert.Equal(t, "error", status.AsString())
	}
}

func TestRunIteration_NonBaggageWorkloadName(t *testing.T) {
	wl := fastDemo()
	wl.Name = "demo\x80" // not valid UTF-8, unusable as a baggage value

	h := newTestHarness(t, Config{}, wl)

	assert.NotPanics(t, func() { h.engine.RunIteration(context.Background()) })
	assert.Len(t, h.spans.Ended(), 2)
}

func TestRunIteration_MessageHopContinuesTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	wl := &workload.Workload{
		Name:    "events",
		Latency: workload.LatencyRange{MinMs: 0.1, MaxMs: 0.2},
		Root: workload.SpanTemplate{
			Name: "publish events",
			Kind: workload.SpanKindProducer,
			Children: []workload.SpanTemplate{
				{Name: "process events", Kind: workload.SpanKindConsumer},
			},
		},
	}

	h := newTestHarness(t, Config{}, wl)
	h.engine.RunIteration(context.Background())

	ended := h.spans.Ended()
	require.Len(t, ended, 2)

	consumer, producer := ended[0], ended[1]
	assert.Equal(t, trace.SpanKindConsumer, consumer.SpanKind())
	assert.Equal(t, trace.SpanKindProducer, producer.SpanKind())

	// The consumer stays on the producer's trace, but via headers: its parent
	// is the producer's span context marked remote
	assert.Equal(t, producer.SpanContext().TraceID(), consumer.SpanContext().TraceID())
	assert.Equal(t, producer.SpanContext().SpanID(), consumer.Parent().SpanID())
	assert.True(t, consumer.Parent().IsRemote())
}

func TestRunIteration_MessageHopWithoutPropagator(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	wl := &workload.Workload{
		Name:    "events",
		Latency: workload.LatencyRange{MinMs: 0.1, MaxMs: 0.2},
		Root: workload.SpanTemplate{
			Name: "publish events",
			Kind: workload.SpanKindProducer,
			Children: []workload.SpanTemplate{
				{Name: "process events", Kind: workload.SpanKindConsumer},
			},
		},
	}

	h := newTestHarness(t, Config{}, wl)
	h.engine.RunIteration(context.Background())

	// Headers carry nothing, so the hop falls back to the in-process context
	ended := h.spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().TraceID(), ended[0].SpanContext().TraceID())
	assert.False(t, ended[0].Parent().IsRemote())
}

func TestRun_BoundedIterations(t *testing.T) {
	h := newTestHarness(t, Config{}, fastDemo())

	var results []Result
	completed, err := h.engine.Run(context.Background(), RunOptions{
		Iterations:  3,
		Interval:    time.Millisecond,
		OnIteration: func(r Result) { results = append(results, r) },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), completed)
	require.Len(t, results, 3)
	assert.Equal(t, int64(1), results[0].Iteration)
	assert.Equal(t, int64(3), results[2].Iteration)
}

func TestRun_CanceledContext(t *testing.T) {
	h := newTestHarness(t, Config{}, fastDemo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completed, err := h.engine.Run(ctx, RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), completed)
}

func TestNew_ShutdownIdempotent(t *testing.T) {
	cfg := Config{
		ServiceName:    "test-service",
		TraceExporter:  "none",
		MetricExporter: "none",
	}

	eng, err := New(context.Background(), cfg, fastDemo())
	require.NoError(t, err)

	require.NoError(t, eng.Shutdown(context.Background()))
	require.NoError(t, eng.Shutdown(context.Background()))
}

func TestNew_InvalidWorkload(t *testing.T) {
	cfg := Config{TraceExporter: "none", MetricExporter: "none"}
	_, err := New(context.Background(), cfg, &workload.Workload{})
	assert.Error(t, err)
}

func TestSampleLatency_Range(t *testing.T) {
	h := newTestHarness(t, Config{}, workload.Demo())

	for range 100 {
		latency := h.engine.sampleLatency()
		assert.GreaterOrEqual(t, latency, 10.0)
		assert.Less(t, latency, 200.0)
	}
}

func TestApplyJitter(t *testing.T) {
	e := &Engine{jitterPct: 0}
	assert.Equal(t, 100*time.Millisecond, e.applyJitter(100*time.Millisecond))

	e = &Engine{jitterPct: 20}
	for range 100 {
		d := e.applyJitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

func TestToTraceSpanKind(t *testing.T) {
	tests := []struct {
		input    workload.SpanKind
		expected trace.SpanKind
	}{
		{workload.SpanKindServer, trace.SpanKindServer},
		{workload.SpanKindClient, trace.SpanKindClient},
		{workload.SpanKindProducer, trace.SpanKindProducer},
		{workload.SpanKindConsumer, trace.SpanKindConsumer},
		{workload.SpanKindInternal, trace.SpanKindInternal},
		{"UNKNOWN", trace.SpanKindInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, toTraceSpanKind(tt.input))
		})
	}
}

func TestToLogSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected otellog.Severity
	}{
		{"DEBUG", otellog.SeverityDebug},
		{"INFO", otellog.SeverityInfo},
		{"WARN", otellog.SeverityWarn},
		{"ERROR", otellog.SeverityError},
		{"", otellog.SeverityInfo},
		{"UNKNOWN", otellog.SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, toLogSeverity(tt.input))
		})
	}
}

func TestParseAttributes(t *testing.T) {
	attrs := parseAttributes(map[string]string{
		"int":    "42",
		"float":  "99.99",
		"bool":   "true",
		"string": "hello",
	})

	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.Int64("int", 42),
		attribute.Float64("float", 99.99),
		attribute.Bool("bool", true),
		attribute.String("string", "hello"),
	}, attrs)
}

func TestOverrideStatus(t *testing.T) {
	orig := map[string]string{"status": "success", "endpoint": "/demo"}
	out := overrideStatus(orig, "error")
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "/demo", out["endpoint"])
	assert.Equal(t, "success", orig["status"], "input map must not be mutated")

	noStatus := map[string]string{"endpoint": "/demo"}
	assert.Equal(t, noStatus, overrideStatus(noStatus, "error"))
}
