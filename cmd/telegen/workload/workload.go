// Package workload defines the declarative telemetry workloads run by the
// telegen generator, plus a registry of built-in workloads and a YAML loader
// for custom ones.
package workload

import (
	"fmt"
	"time"
)

// Workload describes one iteration of synthetic telemetry: a span tree, the
// instruments fed per iteration, and the latency model driving both.
type Workload struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Interval is the pause between iterations.
	Interval Duration `yaml:"interval"`

	// Latency is the simulated latency range in milliseconds; one value is
	// sampled uniformly from [MinMs, MaxMs) per iteration.
	Latency LatencyRange `yaml:"latency"`

	// WarnAboveMs is the latency threshold above which a warning-level log
	// record is emitted. Zero disables the threshold.
	WarnAboveMs float64 `yaml:"warnAboveMs,omitempty"`

	// Root is the iteration's span tree.
	Root SpanTemplate `yaml:"root"`

	// Counters are incremented by one per iteration.
	Counters []CounterTemplate `yaml:"counters,omitempty"`

	// Histograms record the sampled latency per iteration.
	Histograms []HistogramTemplate `yaml:"histograms,omitempty"`
}

// LatencyRange is a uniform latency distribution in milliseconds.
type LatencyRange struct {
	MinMs float64 `yaml:"minMs"`
	MaxMs float64 `yaml:"maxMs"`
}

// SpanTemplate defines one span and its children.
type SpanTemplate struct {
	Name       string            `yaml:"name"`
	Kind       SpanKind          `yaml:"kind"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Children   []SpanTemplate    `yaml:"children,omitempty"`
	Logs       []LogTemplate     `yaml:"logs,omitempty"`

	// SleepLatency makes the span last the iteration's sampled latency.
	// When false, Duration (jittered) is slept instead.
	SleepLatency bool     `yaml:"sleepLatency,omitempty"`
	Duration     Duration `yaml:"duration,omitempty"`

	// Error simulation.
	ErrorRate   float64 `yaml:"errorRate,omitempty"`   // 0.0-1.0
	ErrorStatus string  `yaml:"errorStatus,omitempty"` // message when triggered
}

// CounterTemplate defines a counter incremented once per iteration.
type CounterTemplate struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Unit        string            `yaml:"unit,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty"`
}

// HistogramTemplate defines a histogram fed the sampled latency per iteration.
type HistogramTemplate struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Unit        string            `yaml:"unit,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty"`
}

// LogTemplate defines a log record emitted within a span.
type LogTemplate struct {
	Level      string            `yaml:"level"` // DEBUG, INFO, WARN, ERROR
	Message    string            `yaml:"message"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// SpanKind represents the type of span.
type SpanKind string

const (
	SpanKindServer   SpanKind = "SERVER"
	SpanKindClient   SpanKind = "CLIENT"
	SpanKindProducer SpanKind = "PRODUCER"
	SpanKindConsumer SpanKind = "CONSUMER"
	SpanKindInternal SpanKind = "INTERNAL"
)

// Duration is a time.Duration wrapper that parses YAML strings like "150ms".
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)

	return nil
}

// AsDuration converts Duration to time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// EffectiveInterval returns the iteration pause, defaulting to 2 seconds.
func (w *Workload) EffectiveInterval() time.Duration {
	if w.Interval <= 0 {
		return 2 * time.Second
	}

	return w.Interval.AsDuration()
}

// Validate checks that the workload is runnable.
func (w *Workload) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workload name is required")
	}
	if w.Root.Name == "" {
		return fmt.Errorf("workload %q: root span name is required", w.Name)
	}
	if w.Latency.MaxMs < w.Latency.MinMs {
		return fmt.Errorf("workload %q: latency maxMs %.1f below minMs %.1f", w.Name, w.Latency.MaxMs, w.Latency.MinMs)
	}

	return nil
}

// Registry holds all available workloads.
var Registry = map[string]*Workload{}

func init() {
	Register(Demo())
	Register(Checkout())
	Register(Heartbeat())
}

// Register adds a workload to the registry.
func Register(w *Workload) {
	Registry[w.Name] = w
}

// Get retrieves a workload by name.
func Get(name string) (*Workload, bool) {
	w, ok := Registry[name]
	return w, ok
}

// List returns all registered workload names.
func List() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}

	return names
}
