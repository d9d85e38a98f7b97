package telegen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExporterType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "otlp"},
		{"otlp", "otlp"},
		{"console", "console"},
		{"stdout", "console"},
		{"none", "none"},
		{"nop", "none"},
		{"noop", "none"},
		{" Console ", "console"},
		{"anything-else", "otlp"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeExporterType(tt.input))
		})
	}
}

func TestNormalizeDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), normalizeDuration(0))
	assert.Equal(t, 3*time.Second, normalizeDuration(3*time.Second))
	// Sub-millisecond values come from numeric env vars and mean milliseconds
	assert.Equal(t, 250*time.Millisecond, normalizeDuration(250))
}

func TestBaseExporterParams_Defaults(t *testing.T) {
	params := baseExporterParams(nil)

	assert.Equal(t, "otlp", params.Type)
	assert.Equal(t, "http/protobuf", params.Protocol)
	assert.Equal(t, "localhost:4318", params.Endpoint)
	assert.True(t, params.Insecure)
	assert.True(t, params.isHTTP())
}

func TestBaseExporterParams_Overrides(t *testing.T) {
	cfg := &TelemetryConfig{
		OTLP: &OTLPConfig{
			Endpoint:    "collector:4317",
			Protocol:    "grpc",
			Timeout:     3 * time.Second,
			Compression: "gzip",
			Insecure:    boolPtr(false),
		},
	}

	params := baseExporterParams(cfg)
	assert.Equal(t, "collector:4317", params.Endpoint)
	assert.Equal(t, "grpc", params.Protocol)
	assert.Equal(t, 3*time.Second, params.Timeout)
	assert.Equal(t, "gzip", params.Compression)
	assert.False(t, params.Insecure)
	assert.False(t, params.isHTTP())
}

func TestBuildTraceExporter_NonOTLPTypes(t *testing.T) {
	cfg := &TelemetryConfig{ServiceName: "t", Traces: &TracesConfig{Exporter: "none"}}
	exp, err := buildTraceExporter(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, nopSpanExporter{}, exp)

	cfg.Traces.Exporter = "console"
	exp, err = buildTraceExporter(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, exp)
}

func TestBuildMetricExporter_NonOTLPTypes(t *testing.T) {
	cfg := &TelemetryConfig{ServiceName: "t", Metrics: &MetricsConfig{Exporter: "none"}}
	exp, err := buildMetricExporter(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, nopMetricExporter{}, exp)
}

func TestBuildLogExporter_NonOTLPTypes(t *testing.T) {
	cfg := &TelemetryConfig{ServiceName: "t", Logs: &LogsConfig{Exporter: "none"}}
	exp, err := buildLogExporter(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, nopLogExporter{}, exp)
}

func TestIsHTTPScheme(t *testing.T) {
	assert.True(t, isHTTPScheme("http"))
	assert.True(t, isHTTPScheme("HTTPS"))
	assert.False(t, isHTTPScheme(""))
	assert.False(t, isHTTPScheme("grpc"))
}
