// Package engine drives workload execution for the telegen generator: it owns
// the telemetry providers, binds the workload's instruments, and produces one
// span tree plus metric and log records per iteration.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/homeobs/telegen"
	"github.com/homeobs/telegen/cmd/telegen/workload"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

// instrumentationName is the scope name for tracer, meter, and logger.
const instrumentationName = "github.com/homeobs/telegen"

// Config holds engine configuration.
type Config struct {
	Endpoint       string
	Protocol       string // "http/protobuf" (default) or "grpc"
	Insecure       bool
	ServiceName    string
	EnableLogs     bool
	MetricInterval time.Duration
	JitterPct      int

	// Exporter overrides, mainly for tests ("none", "console").
	// Empty means OTLP.
	TraceExporter  string
	MetricExporter string
	LogExporter    string
}

// Engine generates telemetry from one workload.
type Engine struct {
	providers *telegen.Providers
	tracer    trace.Tracer
	logger    otellog.Logger
	wl        *workload.Workload

	counters   []boundCounter
	histograms []boundHistogram

	count      atomic.Int64
	jitterPct  int
	enableLogs bool
	probeURL   string
}

type boundCounter struct {
	counter      metric.Int64Counter
	successAttrs []attribute.KeyValue
	errorAttrs   []attribute.KeyValue
}

type boundHistogram struct {
	histogram metric.Float64Histogram
	attrs     []attribute.KeyValue
}

// Result describes one completed iteration.
type Result struct {
	Iteration int64
	LatencyMs float64
	Failed    bool // a template error rate triggered this iteration
}

// New creates an Engine: it initializes the telemetry providers from cfg and
// binds the workload's instruments.
func New(ctx context.Context, cfg Config, wl *workload.Workload) (*Engine, error) {
	if err := wl.Validate(); err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "telegen"
	}

	telCfg := &telegen.TelemetryConfig{
		ServiceName: serviceName,
		OTLP: &telegen.OTLPConfig{
			Endpoint: cfg.Endpoint,
			Protocol: cfg.Protocol,
			Insecure: &cfg.Insecure,
		},
		Traces:  &telegen.TracesConfig{Exporter: cfg.TraceExporter},
		Metrics: &telegen.MetricsConfig{Exporter: cfg.MetricExporter, Interval: cfg.MetricInterval},
	}
	if cfg.EnableLogs {
		enabled := true
		telCfg.Logs = &telegen.LogsConfig{Enabled: &enabled, Exporter: cfg.LogExporter}
	}

	providers, err := telegen.Setup(ctx, telCfg)
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	e, err := newEngine(providers, cfg, wl)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}

	return e, nil
}

// newEngine wires an Engine from already-built providers. Split out so tests
// can inject providers with in-memory readers and recorders.
func newEngine(providers *telegen.Providers, cfg Config, wl *workload.Workload) (*Engine, error) {
	if providers.Tracer == nil {
		return nil, fmt.Errorf("engine requires a tracer provider")
	}
	if providers.Meter == nil {
		return nil, fmt.Errorf("engine requires a meter provider")
	}

	tracer := providers.Tracer.Tracer(instrumentationName)
	telegen.InitTracing(tracer, telegen.DefaultNamer{})

	e := &Engine{
		providers:  providers,
		tracer:     tracer,
		wl:         wl,
		jitterPct:  cfg.JitterPct,
		enableLogs: cfg.EnableLogs,
		probeURL:   probeURL(cfg),
	}

	if cfg.EnableLogs {
		if providers.Logger != nil {
			e.logger = providers.Logger.Logger(instrumentationName)
		} else {
			e.logger = global.GetLoggerProvider().Logger(instrumentationName)
		}
	}

	meter := providers.Meter.Meter(instrumentationName)
	for _, c := range wl.Counters {
		counter, err := meter.Int64Counter(c.Name,
			metric.WithDescription(c.Description),
			metric.WithUnit(c.Unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create counter %q: %w", c.Name, err)
		}
		e.counters = append(e.counters, boundCounter{
			counter:      counter,
			successAttrs: parseAttributes(c.Attributes),
			errorAttrs:   parseAttributes(overrideStatus(c.Attributes, "error")),
		})
	}
	for _, h := range wl.Histograms {
		histogram, err := meter.Float64Histogram(h.Name,
			metric.WithDescription(h.Description),
			metric.WithUnit(h.Unit),
		)
		if err != nil {
			return nil, fmt.Errorf("create histogram %q: %w", h.Name, err)
		}
		e.histograms = append(e.histograms, boundHistogram{
			histogram: histogram,
			attrs:     parseAttributes(h.Attributes),
		})
	}

	return e, nil
}

// Workload returns the workload this engine runs.
func (e *Engine) Workload() *workload.Workload {
	return e.wl
}

// Shutdown flushes and closes the providers (logs, traces, metrics in order).
func (e *Engine) Shutdown(ctx context.Context) error {
	return e.providers.Shutdown(ctx)
}

// RunOptions bounds a Run loop.
type RunOptions struct {
	// Iterations stops the loop after N iterations. Zero means unbounded.
	Iterations int

	// Duration stops the loop after the elapsed time. Zero means unbounded.
	Duration time.Duration

	// Interval overrides the workload's pause between iterations.
	Interval time.Duration

	// OnIteration, if set, is called after each completed iteration.
	OnIteration func(Result)
}

// Run executes workload iterations until the context is canceled or a bound
// from opts is reached. It returns the number of completed iterations; on
// interrupt the context error is returned alongside it.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (int64, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = e.wl.EffectiveInterval()
	}

	var deadline time.Time
	if opts.Duration > 0 {
		deadline = time.Now().Add(opts.Duration)
	}

	var completed int64
	for {
		select {
		case <-ctx.Done():
			return completed, ctx.Err()
		default:
		}

		res := e.RunIteration(ctx)
		completed++
		if opts.OnIteration != nil {
			opts.OnIteration(res)
		}

		if opts.Iterations > 0 && completed >= int64(opts.Iterations) {
			return completed, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return completed, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return completed, ctx.Err()
		case <-timer.C:
		}
	}
}

// RunIteration produces one iteration of the workload: the span tree, one
// increment per counter, one latency sample per histogram, and the
// iteration's log records.
func (e *Engine) RunIteration(ctx context.Context) Result {
	count := e.count.Add(1)
	latency := e.sampleLatency()

	// Workload identity rides baggage; names that are not valid baggage
	// values (custom YAML workloads) just skip it.
	if bagCtx, err := telegen.SetBaggage(ctx, "workload.name", e.wl.Name); err == nil {
		ctx = bagCtx
	}

	rootCtx, rootSpan := e.tracer.Start(ctx, e.wl.Root.Name,
		trace.WithSpanKind(toTraceSpanKind(e.wl.Root.Kind)),
		trace.WithAttributes(parseAttributes(e.wl.Root.Attributes)...),
	)
	rootSpan.SetAttributes(
		attribute.Int64("request.id", count),
		attribute.Float64("request.latency_ms", latency),
	)

	failed := e.runTemplate(rootCtx, rootSpan, e.wl.Root, latency)

	status := "success"
	if failed {
		status = "error"
	}
	for _, c := range e.counters {
		attrs := c.successAttrs
		if failed {
			attrs = c.errorAttrs
		}
		c.counter.Add(rootCtx, 1, metric.WithAttributes(attrs...))
	}
	for _, h := range e.histograms {
		h.histogram.Record(rootCtx, latency, metric.WithAttributes(h.attrs...))
	}

	e.emitIterationLogs(rootCtx, count, latency, status)

	rootSpan.End()

	return Result{Iteration: count, LatencyMs: latency, Failed: failed}
}

// runTemplate handles the body of an already-started span: its logs, error
// simulation, children, and sleep. Returns true if any error rate triggered.
func (e *Engine) runTemplate(ctx context.Context, span trace.Span, tmpl workload.SpanTemplate, latency float64) bool {
	failed := false

	for _, l := range tmpl.Logs {
		e.emitTemplateLog(ctx, l)
	}

	if tmpl.ErrorRate > 0 && rand.Float64() < tmpl.ErrorRate { //nolint:gosec // weak rand is fine for simulation
		span.SetStatus(codes.Error, tmpl.ErrorStatus)
		span.RecordError(fmt.Errorf("%s", tmpl.ErrorStatus))
		failed = true
	}

	for _, child := range tmpl.Children {
		parentCtx := ctx
		if tmpl.Kind == workload.SpanKindProducer && child.Kind == workload.SpanKindConsumer {
			parentCtx = messageHop(parentCtx)
		}
		childCtx, childSpan := e.tracer.Start(parentCtx, child.Name,
			trace.WithSpanKind(toTraceSpanKind(child.Kind)),
			trace.WithAttributes(parseAttributes(child.Attributes)...),
		)
		if e.runTemplate(childCtx, childSpan, child, latency) {
			failed = true
		}
		childSpan.End()
	}

	time.Sleep(e.templateSleep(tmpl, latency))

	return failed
}

// messageHop carries the current span context across a simulated message
// boundary the way an instrumented subscriber would receive it: injected into
// message headers on publish, extracted again on consume. The consumer span
// then hangs off a remote parent. With no propagator configured the hop is
// skipped and the in-process context is used.
func messageHop(ctx context.Context) context.Context {
	headers := metadata.MD{}
	telegen.InjectGRPC(ctx, headers)
	hopped := telegen.ExtractGRPC(context.Background(), headers)
	if !trace.SpanContextFromContext(hopped).IsValid() {
		return ctx
	}

	return hopped
}

// templateSleep resolves how long a span lasts: the sampled latency when
// SleepLatency is set, otherwise the jittered fixed duration.
func (e *Engine) templateSleep(tmpl workload.SpanTemplate, latency float64) time.Duration {
	if tmpl.SleepLatency {
		return time.Duration(latency * float64(time.Millisecond))
	}

	return e.applyJitter(tmpl.Duration.AsDuration())
}

// sampleLatency draws a latency uniformly from the workload range [min, max).
func (e *Engine) sampleLatency() float64 {
	r := e.wl.Latency
	if r.MaxMs <= r.MinMs {
		return r.MinMs
	}

	return r.MinMs + rand.Float64()*(r.MaxMs-r.MinMs) //nolint:gosec // weak rand is fine for simulation
}

// applyJitter adds random timing variation to a duration.
func (e *Engine) applyJitter(d time.Duration) time.Duration {
	if e.jitterPct <= 0 || d <= 0 {
		return d
	}
	jitter := float64(d) * float64(e.jitterPct) / 100.0
	offset := (rand.Float64() * 2 * jitter) - jitter //nolint:gosec // weak rand is fine for jitter

	return d + time.Duration(offset)
}

// emitIterationLogs emits the per-iteration records: an info summary, plus a
// warning when the sampled latency exceeds the workload threshold.
func (e *Engine) emitIterationLogs(ctx context.Context, count int64, latency float64, status string) {
	if !e.enableLogs || e.logger == nil {
		return
	}

	attrs := []otellog.KeyValue{
		otellog.Int64("iteration", count),
		otellog.Float64("latency_ms", latency),
		otellog.String("status", status),
		otellog.String("workload", e.wl.Name),
	}

	var rec otellog.Record
	rec.SetBody(otellog.StringValue("iteration completed"))
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetTimestamp(time.Now())
	rec.AddAttributes(attrs...)
	e.logger.Emit(ctx, rec)

	if e.wl.WarnAboveMs > 0 && latency > e.wl.WarnAboveMs {
		var warn otellog.Record
		warn.SetBody(otellog.StringValue("latency above threshold"))
		warn.SetSeverity(otellog.SeverityWarn)
		warn.SetTimestamp(time.Now())
		warn.AddAttributes(attrs...)
		warn.AddAttributes(otellog.Float64("threshold_ms", e.wl.WarnAboveMs))
		e.logger.Emit(ctx, warn)
	}
}

// emitTemplateLog emits one span-scoped log record from a template.
func (e *Engine) emitTemplateLog(ctx context.Context, l workload.LogTemplate) {
	if !e.enableLogs || e.logger == nil {
		return
	}

	var rec otellog.Record
	rec.SetBody(otellog.StringValue(l.Message))
	rec.SetSeverity(toLogSeverity(l.Level))
	rec.SetTimestamp(time.Now())

	attrs := make([]otellog.KeyValue, 0, len(l.Attributes))
	for k, v := range l.Attributes {
		attrs = append(attrs, otellog.String(k, v))
	}
	rec.AddAttributes(attrs...)

	e.logger.Emit(ctx, rec)
}

func toTraceSpanKind(k workload.SpanKind) trace.SpanKind {
	switch k {
	case workload.SpanKindServer:
		return trace.SpanKindServer
	case workload.SpanKindClient:
		return trace.SpanKindClient
	case workload.SpanKindProducer:
		return trace.SpanKindProducer
	case workload.SpanKindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}

func toLogSeverity(level string) otellog.Severity {
	switch level {
	case "DEBUG":
		return otellog.SeverityDebug
	case "INFO":
		return otellog.SeverityInfo
	case "WARN":
		return otellog.SeverityWarn
	case "ERROR":
		return otellog.SeverityError
	default:
		return otellog.SeverityInfo
	}
}

// parseAttributes converts a string map to OTel attributes with type inference.
func parseAttributes(attrs map[string]string) []attribute.KeyValue {
	result := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			result = append(result, attribute.Int64(k, i))
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			result = append(result, attribute.Float64(k, f))
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			result = append(result, attribute.Bool(k, b))
			continue
		}
		result = append(result, attribute.String(k, v))
	}

	return result
}

// overrideStatus returns a copy of attrs with the "status" key replaced.
// Maps without a status key are returned unchanged.
func overrideStatus(attrs map[string]string, status string) map[string]string {
	if _, ok := attrs["status"]; !ok {
		return attrs
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	out["status"] = status

	return out
}
