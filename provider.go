package telegen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ErrDisabled is returned when telemetry is disabled.
var ErrDisabled = errors.New("telegen: telemetry is disabled")

// ErrTracesDisabled is returned when span export is disabled.
var ErrTracesDisabled = errors.New("telegen: traces export is disabled")

// ErrMetricsDisabled is returned when metric export is disabled.
var ErrMetricsDisabled = errors.New("telegen: metrics export is disabled")

// ErrLogsDisabled is returned when log export is disabled.
var ErrLogsDisabled = errors.New("telegen: logs export is disabled")

// ErrServiceNameRequired is returned when ServiceName is empty but telemetry is enabled.
var ErrServiceNameRequired = errors.New("telegen: service name is required")

// NewTracerProvider initializes the OpenTelemetry TracerProvider and
// registers it, along with the configured propagator, as the global one.
// Spans flow through a batch processor to the configured exporter.
// Returns ErrDisabled or ErrTracesDisabled when the subsystem is off.
func NewTracerProvider(ctx context.Context, cfg *TelemetryConfig) (*sdktrace.TracerProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if cfg.Traces != nil && !cfg.Traces.IsEnabled() {
		return nil, ErrTracesDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var sampling *SamplingConfig
	if cfg.Traces != nil {
		sampling = cfg.Traces.Sampling
	}

	exporter, err := buildTraceExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(buildSampler(sampling)),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(buildPropagator(cfg.Propagation))

	return tp, nil
}

// NewMeterProvider initializes the OpenTelemetry MeterProvider with a
// periodic reader and registers it as the global one.
// Returns ErrDisabled or ErrMetricsDisabled when the subsystem is off.
func NewMeterProvider(ctx context.Context, cfg *TelemetryConfig) (*sdkmetric.MeterProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if cfg.Metrics != nil && !cfg.Metrics.IsEnabled() {
		return nil, ErrMetricsDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := buildMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build metric exporter: %w", err)
	}

	interval := 5 * time.Second
	if cfg.Metrics != nil {
		interval = normalizeMetricInterval(cfg.Metrics.Interval, interval)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(interval),
		)),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewLoggerProvider initializes the OpenTelemetry LoggerProvider with a batch
// processor and registers it as the global one.
// Returns ErrDisabled or ErrLogsDisabled when the subsystem is off; log
// export is opt-in.
func NewLoggerProvider(ctx context.Context, cfg *TelemetryConfig) (*sdklog.LoggerProvider, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}
	if cfg.Logs == nil || !cfg.Logs.IsEnabled() {
		return nil, ErrLogsDisabled
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := buildLogExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build log exporter: %w", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	global.SetLoggerProvider(lp)

	return lp, nil
}

// Providers bundles every provider built by Setup and tears them down in a
// fixed order. Zero-value fields are skipped, so a bundle with logs disabled
// behaves the same as one that never had them.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
	Logger *sdklog.LoggerProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// Setup initializes every enabled provider from cfg.
// Traces and metrics are on by default; logs are opt-in. On any error the
// already-built providers are shut down before returning.
func Setup(ctx context.Context, cfg *TelemetryConfig) (*Providers, error) {
	if !cfg.IsEnabled() {
		return nil, ErrDisabled
	}

	p := &Providers{}

	tp, err := NewTracerProvider(ctx, cfg)
	switch {
	case err == nil:
		p.Tracer = tp
	case !errors.Is(err, ErrTracesDisabled):
		return nil, err
	}

	mp, err := NewMeterProvider(ctx, cfg)
	switch {
	case err == nil:
		p.Meter = mp
	case !errors.Is(err, ErrMetricsDisabled):
		_ = p.Shutdown(ctx)
		return nil, err
	}

	lp, err := NewLoggerProvider(ctx, cfg)
	switch {
	case err == nil:
		p.Logger = lp
	case !errors.Is(err, ErrLogsDisabled):
		_ = p.Shutdown(ctx)
		return nil, err
	}

	return p, nil
}

// ForceFlush flushes all buffered telemetry without shutting anything down.
func (p *Providers) ForceFlush(ctx context.Context) error {
	var errs []error
	if p.Logger != nil {
		if err := p.Logger.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush logs: %w", err))
		}
	}
	if p.Tracer != nil {
		if err := p.Tracer.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	if p.Meter != nil {
		if err := p.Meter.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Shutdown flushes and closes all providers in order: logs, traces, metrics.
// Safe to call more than once; only the first call does the work and later
// calls return its result.
func (p *Providers) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		var errs []error
		if p.Logger != nil {
			if err := p.Logger.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown logger provider: %w", err))
			}
		}
		if p.Tracer != nil {
			if err := p.Tracer.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
			}
		}
		if p.Meter != nil {
			if err := p.Meter.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
			}
		}
		p.shutdownErr = errors.Join(errs...)
	})

	return p.shutdownErr
}

// buildResource creates the resource descriptor shared by all providers.
func buildResource(ctx context.Context, cfg *TelemetryConfig) (*resource.Resource, error) {
	if cfg.ServiceName == "" {
		return nil, ErrServiceNameRequired
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
	}
	if cfg.ServiceNamespace != "" {
		attrs = append(attrs, semconv.ServiceNamespace(cfg.ServiceNamespace))
	}
	if cfg.Version != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	for key, value := range cfg.ResourceAttributes {
		if key == "" {
			continue
		}
		attrs = append(attrs, attribute.String(key, value))
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	return res, nil
}

// buildSampler maps OTel standard sampler names to SDK samplers.
func buildSampler(cfg *SamplingConfig) sdktrace.Sampler {
	if cfg == nil {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}

	switch cfg.Sampler {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(cfg.SamplerArg)
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerArg))
	default:
		// parentbased_always_on, the OTel default
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// normalizeMetricInterval treats sub-millisecond values as milliseconds, per
// the OTel spec's handling of numeric environment values.
func normalizeMetricInterval(value, defaultValue time.Duration) time.Duration {
	if value <= 0 {
		return defaultValue
	}
	if value < time.Millisecond {
		return time.Duration(int64(value)) * time.Millisecond
	}

	return value
}
