// Package telegen provides a config-driven OpenTelemetry bootstrap layer for
// the home observability stack, plus the building blocks used by the telegen
// synthetic telemetry generator (cmd/telegen).
//
// # Overview
//
// The telegen package wraps the official OTel SDKs, providing:
//   - One TelemetryConfig covering traces, metrics, and logs
//   - OTLP exporters over HTTP (default) or gRPC, plus console/none for tests
//   - A shared resource descriptor (service name, namespace, environment)
//   - W3C TraceContext and Baggage propagation (OTEL_PROPAGATORS)
//   - An ordered, idempotent shutdown bundle for all providers
//
// # Quick Start
//
// Initialize every configured provider at once:
//
//	cfg := &telegen.TelemetryConfig{ServiceName: "my-service"}
//	providers, err := telegen.Setup(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer providers.Shutdown(ctx)
//
// Or initialize a single signal:
//
//	tp, err := telegen.NewTracerProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tp.Shutdown(ctx)
//	telegen.InitTracing(tp.Tracer("my-service"), telegen.DefaultNamer{})
//
// Use span helpers in your code:
//
//	func Probe(ctx context.Context) error {
//	    ctx, span := telegen.StartClient(ctx, "collector.probe")
//	    defer span.End()
//
//	    if err := ping(ctx); err != nil {
//	        telegen.RecordError(ctx, err)
//	        return err
//	    }
//
//	    telegen.SetSuccess(ctx)
//	    return nil
//	}
//
// # Configuration
//
// Configure via YAML or environment variables (OTel standard names):
//
//	serviceName: "telegen"         # OTEL_SERVICE_NAME
//	serviceNamespace: "homelab"    # OTEL_SERVICE_NAMESPACE
//	environment: "local"           # OTEL_DEPLOYMENT_ENVIRONMENT
//	otlp:
//	  endpoint: "localhost:4318"   # OTEL_EXPORTER_OTLP_ENDPOINT
//	  protocol: "http/protobuf"    # OTEL_EXPORTER_OTLP_PROTOCOL
//	metrics:
//	  interval: 5s                 # OTEL_METRIC_EXPORT_INTERVAL
//	logs:
//	  enabled: true
//
// Defaults target a local collector speaking OTLP over HTTP on port 4318;
// the SDK owns the /v1/traces, /v1/metrics, and /v1/logs paths.
package telegen
