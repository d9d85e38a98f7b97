package telegen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("serviceName: unit-test\n"))
	require.NoError(t, err)

	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "unit-test", cfg.ServiceName)
	assert.Equal(t, "homelab", cfg.ServiceNamespace)
	assert.Equal(t, "local", cfg.Environment)
}

func TestParseConfig_FullDocument(t *testing.T) {
	data := []byte(`
serviceName: generator
serviceNamespace: lab
environment: staging
otlp:
  endpoint: collector:4318
  protocol: http/protobuf
  timeout: 3s
  compression: gzip
metrics:
  interval: 5s
logs:
  enabled: true
traces:
  sampling:
    sampler: traceidratio
    samplerArg: 0.25
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "generator", cfg.ServiceName)
	assert.Equal(t, "lab", cfg.ServiceNamespace)
	assert.Equal(t, "staging", cfg.Environment)

	require.NotNil(t, cfg.OTLP)
	assert.Equal(t, "collector:4318", cfg.OTLP.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.OTLP.Timeout)
	assert.Equal(t, "gzip", cfg.OTLP.Compression)

	require.NotNil(t, cfg.Metrics)
	assert.Equal(t, 5*time.Second, cfg.Metrics.Interval)

	require.NotNil(t, cfg.Logs)
	assert.True(t, cfg.Logs.IsEnabled())

	require.NotNil(t, cfg.Traces)
	require.NotNil(t, cfg.Traces.Sampling)
	assert.Equal(t, "traceidratio", cfg.Traces.Sampling.Sampler)
	assert.Equal(t, 0.25, cfg.Traces.Sampling.SamplerArg)
}

func TestParseConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "from-env")

	cfg, err := ParseConfig([]byte("serviceName: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ServiceName)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serviceName: file-test\nenvironment: dev\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-test", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Environment)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
