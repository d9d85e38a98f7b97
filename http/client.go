package http

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// clientConfig holds configuration for HTTP client creation.
type clientConfig struct {
	timeout       time.Duration
	dialTimeout   time.Duration
	baseTransport http.RoundTripper
}

// ClientOption configures an HTTP client.
type ClientOption func(*clientConfig)

// WithTimeout sets the request timeout for the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithDialTimeout sets the timeout for dialing TCP connections.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.dialTimeout = d
	}
}

// WithTransport sets a custom base transport to wrap.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		c.baseTransport = rt
	}
}

// NewClient creates an http.Client with OTel tracing enabled.
//
// The client uses the globally registered TracerProvider, MeterProvider, and
// TextMapPropagator; initialize the global providers first.
func NewClient(opts ...ClientOption) *http.Client {
	config := &clientConfig{
		baseTransport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(config)
	}

	return &http.Client{
		Transport: Transport(buildTransport(config)),
		Timeout:   config.timeout,
	}
}

// NewClientWithProviders creates an http.Client with OTel tracing enabled
// using explicitly provided providers. Nil providers fall back to the
// globals; useful for tests that record spans in memory.
func NewClientWithProviders(
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
	opts ...ClientOption,
) *http.Client {
	config := &clientConfig{
		baseTransport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(config)
	}

	return &http.Client{
		Transport: TransportWithProviders(buildTransport(config), tp, mp, prop),
		Timeout:   config.timeout,
	}
}

// buildTransport applies the configured timeouts to a cloned transport.
// Opaque round trippers are returned as-is; timeouts cannot be applied to
// them.
func buildTransport(c *clientConfig) http.RoundTripper {
	transport, ok := c.baseTransport.(*http.Transport)
	if !ok {
		return c.baseTransport
	}
	transport = transport.Clone()

	if c.dialTimeout > 0 {
		transport.DialContext = (&net.Dialer{
			Timeout:   c.dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}

	return transport
}

// Transport wraps an http.RoundTripper with OTel tracing for client calls,
// using the globally registered providers. A nil base defaults to
// http.DefaultTransport.
func Transport(base http.RoundTripper, opts ...otelhttp.Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return otelhttp.NewTransport(base, opts...)
}

// TransportWithProviders wraps an http.RoundTripper with OTel tracing using
// explicitly provided providers. Nil providers fall back to the globals.
func TransportWithProviders(
	base http.RoundTripper,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
	opts ...otelhttp.Option,
) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	allOpts := buildProviderOptions(tp, mp, prop)
	allOpts = append(allOpts, opts...)

	return otelhttp.NewTransport(base, allOpts...)
}

// buildProviderOptions creates otelhttp options from providers, falling back
// to the globals when a provider is nil.
func buildProviderOptions(
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	prop propagation.TextMapPropagator,
) []otelhttp.Option {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}

	return []otelhttp.Option{
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithMeterProvider(mp),
		otelhttp.WithPropagators(prop),
	}
}
