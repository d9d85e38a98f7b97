package telegen

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exporterParams holds the resolved settings for building one exporter.
type exporterParams struct {
	Type        string            // "otlp", "console", "none"
	Protocol    string            // "http/protobuf" or "grpc"
	Endpoint    string            // host:port or URL
	Headers     map[string]string // custom headers
	Timeout     time.Duration     // request timeout
	Compression string            // "gzip", "none"
	Insecure    bool              // disable TLS
}

// baseExporterParams resolves the shared OTLP settings with local-collector
// defaults: OTLP over HTTP to localhost:4318, no TLS.
func baseExporterParams(cfg *TelemetryConfig) exporterParams {
	params := exporterParams{
		Type:     "otlp",
		Protocol: "http/protobuf",
		Endpoint: "localhost:4318",
		Timeout:  10 * time.Second,
		Insecure: true,
	}

	if cfg == nil {
		return params
	}

	otlp := cfg.EffectiveOTLP()
	if otlp.Endpoint != "" {
		params.Endpoint = otlp.Endpoint
	}
	if otlp.Protocol != "" {
		params.Protocol = otlp.Protocol
	}
	if otlp.Timeout > 0 {
		params.Timeout = normalizeDuration(otlp.Timeout)
	}
	if otlp.Headers != nil {
		params.Headers = otlp.Headers
	}
	params.Compression = otlp.Compression
	params.Insecure = otlp.IsInsecure()

	return params
}

func (p exporterParams) isHTTP() bool {
	return p.Protocol == "http/protobuf" || p.Protocol == "http"
}

// buildTraceExporter creates a span exporter based on the configuration.
func buildTraceExporter(ctx context.Context, cfg *TelemetryConfig) (sdktrace.SpanExporter, error) {
	params := baseExporterParams(cfg)
	if cfg != nil && cfg.Traces != nil {
		if cfg.Traces.Exporter != "" {
			params.Type = cfg.Traces.Exporter
		}
		if cfg.Traces.Endpoint != "" {
			params.Endpoint = cfg.Traces.Endpoint
		}
	}

	switch normalizeExporterType(params.Type) {
	case "console":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none":
		return nopSpanExporter{}, nil
	default:
		return buildOTLPTraceExporter(ctx, params)
	}
}

func buildOTLPTraceExporter(ctx context.Context, params exporterParams) (sdktrace.SpanExporter, error) {
	if params.isHTTP() {
		opts := buildHTTPOptions(
			params,
			otlptracehttp.WithEndpoint,
			otlptracehttp.WithEndpointURL,
			otlptracehttp.WithHeaders,
			otlptracehttp.WithTimeout,
			otlptracehttp.WithInsecure,
			func() otlptracehttp.Option { return otlptracehttp.WithCompression(otlptracehttp.GzipCompression) },
		)

		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	}

	opts := buildGRPCOptions(
		params,
		otlptracegrpc.WithEndpoint,
		otlptracegrpc.WithHeaders,
		otlptracegrpc.WithTimeout,
		otlptracegrpc.WithInsecure,
		func() otlptracegrpc.Option { return otlptracegrpc.WithCompressor("gzip") },
	)

	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

// buildMetricExporter creates a metric exporter based on the configuration.
func buildMetricExporter(ctx context.Context, cfg *TelemetryConfig) (sdkmetric.Exporter, error) {
	params := baseExporterParams(cfg)
	if cfg != nil && cfg.Metrics != nil {
		if cfg.Metrics.Exporter != "" {
			params.Type = cfg.Metrics.Exporter
		}
		if cfg.Metrics.Endpoint != "" {
			params.Endpoint = cfg.Metrics.Endpoint
		}
	}

	switch normalizeExporterType(params.Type) {
	case "console":
		return stdoutmetric.New(stdoutmetric.WithPrettyPrint())
	case "none":
		return nopMetricExporter{}, nil
	default:
		return buildOTLPMetricExporter(ctx, params)
	}
}

func buildOTLPMetricExporter(ctx context.Context, params exporterParams) (sdkmetric.Exporter, error) {
	if params.isHTTP() {
		opts := buildHTTPOptions(
			params,
			otlpmetrichttp.WithEndpoint,
			otlpmetrichttp.WithEndpointURL,
			otlpmetrichttp.WithHeaders,
			otlpmetrichttp.WithTimeout,
			otlpmetrichttp.WithInsecure,
			func() otlpmetrichttp.Option { return otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression) },
		)

		return otlpmetrichttp.New(ctx, opts...)
	}

	opts := buildGRPCOptions(
		params,
		otlpmetricgrpc.WithEndpoint,
		otlpmetricgrpc.WithHeaders,
		otlpmetricgrpc.WithTimeout,
		otlpmetricgrpc.WithInsecure,
		func() otlpmetricgrpc.Option { return otlpmetricgrpc.WithCompressor("gzip") },
	)

	return otlpmetricgrpc.New(ctx, opts...)
}

// buildLogExporter creates a log exporter based on the configuration.
func buildLogExporter(ctx context.Context, cfg *TelemetryConfig) (sdklog.Exporter, error) {
	params := baseExporterParams(cfg)
	if cfg != nil && cfg.Logs != nil {
		if cfg.Logs.Exporter != "" {
			params.Type = cfg.Logs.Exporter
		}
		if cfg.Logs.Endpoint != "" {
			params.Endpoint = cfg.Logs.Endpoint
		}
	}

	switch normalizeExporterType(params.Type) {
	case "console":
		return stdoutlog.New(stdoutlog.WithPrettyPrint())
	case "none":
		return nopLogExporter{}, nil
	default:
		return buildOTLPLogExporter(ctx, params)
	}
}

func buildOTLPLogExporter(ctx context.Context, params exporterParams) (sdklog.Exporter, error) {
	if params.isHTTP() {
		opts := buildHTTPOptions(
			params,
			otlploghttp.WithEndpoint,
			otlploghttp.WithEndpointURL,
			otlploghttp.WithHeaders,
			otlploghttp.WithTimeout,
			otlploghttp.WithInsecure,
			func() otlploghttp.Option { return otlploghttp.WithCompression(otlploghttp.GzipCompression) },
		)

		return otlploghttp.New(ctx, opts...)
	}

	opts := buildGRPCOptions(
		params,
		otlploggrpc.WithEndpoint,
		otlploggrpc.WithHeaders,
		otlploggrpc.WithTimeout,
		otlploggrpc.WithInsecure,
		func() otlploggrpc.Option { return otlploggrpc.WithCompressor("gzip") },
	)

	return otlploggrpc.New(ctx, opts...)
}

// buildHTTPOptions assembles HTTP exporter options from resolved params.
// The per-signal option types share no interface, so the constructors are
// passed in explicitly.
func buildHTTPOptions[T any](
	params exporterParams,
	withEndpoint func(string) T,
	withEndpointURL func(string) T,
	withHeaders func(map[string]string) T,
	withTimeout func(time.Duration) T,
	withInsecure func() T,
	withCompression func() T,
) []T {
	var opts []T
	if parsed, err := url.Parse(params.Endpoint); err == nil && isHTTPScheme(parsed.Scheme) {
		opts = append(opts, withEndpointURL(params.Endpoint))
	} else {
		opts = append(opts, withEndpoint(params.Endpoint))
	}
	if len(params.Headers) > 0 {
		opts = append(opts, withHeaders(params.Headers))
	}
	if params.Timeout > 0 {
		opts = append(opts, withTimeout(params.Timeout))
	}
	if params.Insecure {
		opts = append(opts, withInsecure())
	}
	if params.Compression == "gzip" {
		opts = append(opts, withCompression())
	}

	return opts
}

// buildGRPCOptions assembles gRPC exporter options from resolved params.
func buildGRPCOptions[T any](
	params exporterParams,
	withEndpoint func(string) T,
	withHeaders func(map[string]string) T,
	withTimeout func(time.Duration) T,
	withInsecure func() T,
	withCompression func() T,
) []T {
	opts := []T{withEndpoint(params.Endpoint)}
	if len(params.Headers) > 0 {
		opts = append(opts, withHeaders(params.Headers))
	}
	if params.Timeout > 0 {
		opts = append(opts, withTimeout(params.Timeout))
	}
	if params.Insecure {
		opts = append(opts, withInsecure())
	}
	if params.Compression == "gzip" {
		opts = append(opts, withCompression())
	}

	return opts
}

func normalizeExporterType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "console", "stdout":
		return "console"
	case "none", "nop", "noop":
		return "none"
	default:
		return "otlp"
	}
}

// normalizeDuration treats sub-millisecond values as milliseconds, matching
// the OTel spec's handling of numeric environment values.
func normalizeDuration(value time.Duration) time.Duration {
	if value > 0 && value < time.Millisecond {
		//nolint:durationcheck // numeric env values are interpreted as milliseconds
		return value * time.Millisecond
	}

	return value
}

func isHTTPScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

// nopSpanExporter discards spans; used by the "none" exporter type in tests.
type nopSpanExporter struct{}

func (nopSpanExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error { return nil }
func (nopSpanExporter) Shutdown(_ context.Context) error                               { return nil }

// nopLogExporter discards log records.
type nopLogExporter struct{}

func (nopLogExporter) Export(_ context.Context, _ []sdklog.Record) error { return nil }
func (nopLogExporter) Shutdown(_ context.Context) error                  { return nil }
func (nopLogExporter) ForceFlush(_ context.Context) error                { return nil }

// nopMetricExporter discards metrics.
type nopMetricExporter struct{}

func (nopMetricExporter) Export(_ context.Context, _ *metricdata.ResourceMetrics) error { return nil }
func (nopMetricExporter) Temporality(k sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(k)
}

func (nopMetricExporter) Aggregation(k sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(k)
}
func (nopMetricExporter) ForceFlush(_ context.Context) error { return nil }
func (nopMetricExporter) Shutdown(_ context.Context) error   { return nil }
