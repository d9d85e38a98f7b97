package main

import (
	"flag"
	"time"

	"github.com/arloliu/fuda"
)

// Config holds all CLI configuration.
// fuda struct tags supply defaults and OTel-standard env var bindings; the
// defaults target a local collector: OTLP over HTTP on port 4318, insecure,
// 5s metric export.
type Config struct {
	// Connection settings
	Endpoint    string `yaml:"endpoint" default:"localhost:4318" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Protocol    string `yaml:"protocol" default:"http/protobuf" env:"OTEL_EXPORTER_OTLP_PROTOCOL"`
	Insecure    *bool  `yaml:"insecure" default:"true" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName string `yaml:"serviceName" default:"telegen" env:"OTEL_SERVICE_NAME"`

	// Workload settings
	Workload     string `yaml:"workload" default:"demo"`
	WorkloadFile string `yaml:"workloadFile"`

	// Signals
	EnableLogs     bool          `yaml:"logs" default:"false"`
	MetricInterval time.Duration `yaml:"metricInterval" default:"5s" env:"OTEL_METRIC_EXPORT_INTERVAL"`

	// Startup
	Probe bool `yaml:"probe" default:"false"`

	// Once mode
	Iterations int `yaml:"iterations" default:"10"`

	// Run mode; zero duration means run until interrupted
	Duration time.Duration `yaml:"duration"`
	Interval time.Duration `yaml:"interval"`
	Jitter   int           `yaml:"jitter" default:"20"`
}

// IsInsecure returns the insecure value, defaulting to true if nil.
func (c *Config) IsInsecure() bool {
	if c.Insecure == nil {
		return true
	}

	return *c.Insecure
}

func newConfig() *Config {
	cfg := &Config{}
	// Defaults from struct tags (fuda handles time.Duration and *bool parsing)
	_ = fuda.SetDefaults(cfg)

	return cfg
}

func (c *Config) bindCommonFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "OTLP collector endpoint")
	fs.StringVar(&c.Protocol, "protocol", c.Protocol, "OTLP protocol: http/protobuf or grpc")
	fs.Func("insecure", "Disable TLS (default: true)", func(s string) error {
		val := s == "true" || s == "1"
		c.Insecure = &val

		return nil
	})
	fs.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Override service name")
	fs.StringVar(&c.Workload, "workload", c.Workload, "Workload name")
	fs.StringVar(&c.WorkloadFile, "workload-file", c.WorkloadFile, "Custom YAML workload file")
	fs.BoolVar(&c.EnableLogs, "logs", c.EnableLogs, "Enable log record generation")
	fs.DurationVar(&c.MetricInterval, "metric-interval", c.MetricInterval, "Metric export interval")
	fs.BoolVar(&c.Probe, "probe", c.Probe, "Check collector reachability before starting")
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Pause between iterations (default: workload setting)")
	fs.IntVar(&c.Jitter, "jitter", c.Jitter, "Timing variation percentage for fixed span durations")
}

func (c *Config) applyEnvOverrides() {
	// fuda.LoadEnv reads env vars based on struct tags; pointer fields let
	// env values override non-zero defaults
	_ = fuda.LoadEnv(c)
}
