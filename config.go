package telegen

import (
	"slices"
	"strings"
	"time"
)

// TelemetryConfig configures the telemetry bootstrap.
// Environment variable names follow the OTel specification:
// https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/
type TelemetryConfig struct {
	// Enabled controls whether telemetry is active.
	// Defaults to true: emitting telemetry is this project's whole purpose.
	Enabled *bool `yaml:"enabled" default:"true" env:"TELEGEN_ENABLED"`

	// ServiceName identifies the emitting service.
	// Maps to OTEL_SERVICE_NAME.
	ServiceName string `yaml:"serviceName" default:"telegen" env:"OTEL_SERVICE_NAME"`

	// ServiceNamespace groups related services (service.namespace resource attribute).
	ServiceNamespace string `yaml:"serviceNamespace" default:"homelab" env:"OTEL_SERVICE_NAMESPACE"`

	// Version is the service version (service.version resource attribute).
	Version string `yaml:"version" env:"OTEL_SERVICE_VERSION"`

	// Environment is the deployment environment (deployment.environment resource attribute).
	Environment string `yaml:"environment" default:"local" env:"OTEL_DEPLOYMENT_ENVIRONMENT"`

	// ResourceAttributes contains additional resource attributes as key=value pairs.
	// Maps to OTEL_RESOURCE_ATTRIBUTES.
	ResourceAttributes map[string]string `yaml:"resourceAttributes,omitempty" env:"OTEL_RESOURCE_ATTRIBUTES"`

	// OTLP contains shared exporter settings used by all signals.
	// Signal-specific settings can override these.
	OTLP *OTLPConfig `yaml:"otlp,omitempty"`

	// Traces configures the tracing subsystem. Enabled by default.
	Traces *TracesConfig `yaml:"traces,omitempty"`

	// Metrics configures the metrics subsystem. Enabled by default.
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`

	// Logs configures OTel log export. Opt-in.
	Logs *LogsConfig `yaml:"logs,omitempty"`

	// Propagation configures context propagation (W3C TraceContext, Baggage).
	// Maps to OTEL_PROPAGATORS.
	Propagation *PropConfig `yaml:"propagation,omitempty"`
}

// IsEnabled returns true if telemetry is enabled. Defaults to true if unset.
func (c *TelemetryConfig) IsEnabled() bool {
	return c != nil && (c.Enabled == nil || *c.Enabled)
}

// EffectiveOTLP returns the shared OTLP settings, never nil.
func (c *TelemetryConfig) EffectiveOTLP() *OTLPConfig {
	if c == nil || c.OTLP == nil {
		return &OTLPConfig{}
	}

	return c.OTLP
}

// OTLPConfig contains shared OTLP exporter settings.
type OTLPConfig struct {
	// Endpoint is the OTLP collector endpoint.
	// Maps to OTEL_EXPORTER_OTLP_ENDPOINT.
	//
	// Format depends on protocol:
	//   - HTTP: "host:port" or a full URL (e.g. "http://localhost:4318").
	//   - gRPC: "host:port" without scheme (e.g. "localhost:4317").
	Endpoint string `yaml:"endpoint" default:"localhost:4318" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Protocol selects the OTLP transport.
	// Maps to OTEL_EXPORTER_OTLP_PROTOCOL.
	// Options: "http/protobuf", "http", "grpc".
	Protocol string `yaml:"protocol" default:"http/protobuf" env:"OTEL_EXPORTER_OTLP_PROTOCOL" validate:"omitempty,oneof=grpc http/protobuf http"`

	// Insecure disables TLS. Maps to OTEL_EXPORTER_OTLP_INSECURE.
	// Defaults to true; the target is a local collector.
	Insecure *bool `yaml:"insecure" default:"true" env:"OTEL_EXPORTER_OTLP_INSECURE"`

	// Headers adds custom headers to OTLP requests.
	// Maps to OTEL_EXPORTER_OTLP_HEADERS. May carry credentials; do not log.
	Headers map[string]string `yaml:"headers,omitempty" env:"OTEL_EXPORTER_OTLP_HEADERS"`

	// Timeout bounds each export call. Maps to OTEL_EXPORTER_OTLP_TIMEOUT.
	Timeout time.Duration `yaml:"timeout" default:"10s" env:"OTEL_EXPORTER_OTLP_TIMEOUT" validate:"gte=0"`

	// Compression sets the payload compression.
	// Maps to OTEL_EXPORTER_OTLP_COMPRESSION. Options: "gzip", "none".
	Compression string `yaml:"compression,omitempty" env:"OTEL_EXPORTER_OTLP_COMPRESSION" validate:"omitempty,oneof=gzip none"`
}

// IsInsecure returns true if TLS is disabled. Defaults to true if unset.
func (c *OTLPConfig) IsInsecure() bool {
	return c == nil || c.Insecure == nil || *c.Insecure
}

// TracesConfig configures the tracing subsystem.
type TracesConfig struct {
	// Enabled controls span export. Defaults to true.
	Enabled *bool `yaml:"enabled" default:"true"`

	// Exporter selects the span exporter.
	// Maps to OTEL_TRACES_EXPORTER. Options: "otlp", "console", "stdout", "none".
	Exporter string `yaml:"exporter" default:"otlp" env:"OTEL_TRACES_EXPORTER" validate:"omitempty,oneof=otlp console stdout none nop"`

	// Endpoint overrides OTLP.Endpoint for traces only.
	// Maps to OTEL_EXPORTER_OTLP_TRACES_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`

	// Sampling configures the trace sampling strategy.
	Sampling *SamplingConfig `yaml:"sampling,omitempty"`
}

// IsEnabled returns true if tracing is enabled. Defaults to true if unset.
func (c *TracesConfig) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	// Enabled controls metric export. Defaults to true.
	Enabled *bool `yaml:"enabled" default:"true"`

	// Exporter selects the metric exporter.
	// Maps to OTEL_METRICS_EXPORTER. Options: "otlp", "console", "stdout", "none".
	Exporter string `yaml:"exporter" default:"otlp" env:"OTEL_METRICS_EXPORTER" validate:"omitempty,oneof=otlp console stdout none nop"`

	// Endpoint overrides OTLP.Endpoint for metrics only.
	// Maps to OTEL_EXPORTER_OTLP_METRICS_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"`

	// Interval is the periodic reader's export interval.
	// Maps to OTEL_METRIC_EXPORT_INTERVAL (milliseconds if numeric).
	Interval time.Duration `yaml:"interval,omitempty" default:"5s" env:"OTEL_METRIC_EXPORT_INTERVAL" validate:"omitempty,gt=0"`
}

// IsEnabled returns true if metric export is enabled. Defaults to true if unset.
func (c *MetricsConfig) IsEnabled() bool {
	return c == nil || c.Enabled == nil || *c.Enabled
}

// LogsConfig configures OTel log export.
type LogsConfig struct {
	// Enabled controls log export. Defaults to false (opt-in).
	Enabled *bool `yaml:"enabled" default:"false"`

	// Exporter selects the log exporter.
	// Maps to OTEL_LOGS_EXPORTER. Options: "otlp", "console", "stdout", "none".
	Exporter string `yaml:"exporter" default:"otlp" env:"OTEL_LOGS_EXPORTER" validate:"omitempty,oneof=otlp console stdout none nop"`

	// Endpoint overrides OTLP.Endpoint for logs only.
	// Maps to OTEL_EXPORTER_OTLP_LOGS_ENDPOINT.
	Endpoint string `yaml:"endpoint,omitempty" env:"OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"`
}

// IsEnabled returns true if log export is enabled.
func (c *LogsConfig) IsEnabled() bool {
	return c != nil && c.Enabled != nil && *c.Enabled
}

// SamplingConfig configures the trace sampling strategy.
// Maps to OTEL_TRACES_SAMPLER and OTEL_TRACES_SAMPLER_ARG.
type SamplingConfig struct {
	// Sampler is the OTel standard sampler name.
	// Options: "always_on", "always_off", "traceidratio",
	// "parentbased_always_on", "parentbased_always_off", "parentbased_traceidratio".
	Sampler string `yaml:"sampler" default:"parentbased_always_on" env:"OTEL_TRACES_SAMPLER" validate:"omitempty,oneof=always_on always_off traceidratio parentbased_always_on parentbased_always_off parentbased_traceidratio"`

	// SamplerArg is the sampling probability for ratio-based samplers, 0.0 to 1.0.
	SamplerArg float64 `yaml:"samplerArg" default:"1.0" env:"OTEL_TRACES_SAMPLER_ARG" validate:"gte=0,lte=1"`
}

// PropConfig configures context propagation.
// Maps to OTEL_PROPAGATORS.
type PropConfig struct {
	// Propagators is a comma-separated propagator list.
	// Known values: "tracecontext", "baggage", "none".
	// Defaults to "tracecontext,baggage" (W3C standards).
	Propagators string `yaml:"propagators" default:"tracecontext,baggage" env:"OTEL_PROPAGATORS"`
}

// HasTraceContext returns true if the tracecontext propagator is enabled.
func (c *PropConfig) HasTraceContext() bool {
	if c == nil || c.Propagators == "" {
		return true
	}

	return slices.Contains(splitPropagators(c.Propagators), "tracecontext")
}

// HasBaggage returns true if the baggage propagator is enabled.
func (c *PropConfig) HasBaggage() bool {
	if c == nil || c.Propagators == "" {
		return true
	}

	return slices.Contains(splitPropagators(c.Propagators), "baggage")
}

// splitPropagators splits a comma-separated propagator list, trimming blanks.
func splitPropagators(propagators string) []string {
	var result []string
	for p := range strings.SplitSeq(propagators, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}

	return result
}

// boolPtr returns a pointer to the given boolean value.
func boolPtr(v bool) *bool { return &v }
