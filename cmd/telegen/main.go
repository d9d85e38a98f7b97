// Package main provides the telegen CLI, a synthetic telemetry generator for
// the home observability stack.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/homeobs/telegen/cmd/telegen/engine"
	"github.com/homeobs/telegen/cmd/telegen/workload"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	mode := os.Args[1]
	switch mode {
	case "run":
		runContinuousMode(os.Args[2:])
	case "once":
		runOnceMode(os.Args[2:])
	case "list":
		listWorkloads()
	case "-h", "--help", "help":
		printUsage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", mode)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`telegen - synthetic OpenTelemetry signal generator

Usage:
  telegen <mode> [flags]

Modes:
  run     Emit telemetry continuously until interrupted (or --duration)
  once    Emit a fixed number of iterations, then exit
  list    List available workloads

Common Flags:
  --endpoint        OTLP collector endpoint (default: localhost:4318)
  --protocol        http/protobuf or grpc (default: http/protobuf)
  --insecure        Disable TLS (default: true)
  --service-name    Override service name (default: telegen)
  --workload        Workload name (default: demo)
  --workload-file   Custom YAML workload file
  --logs            Enable log record generation
  --metric-interval Metric export interval (default: 5s)
  --interval        Pause between iterations (default: workload setting)
  --jitter          Timing variation percentage (default: 20)
  --probe           Check collector reachability before starting

Run Mode Flags:
  --duration        Total run time; zero runs until interrupted

Once Mode Flags:
  --iterations      Number of iterations to emit (default: 10)

Environment Variables:
  OTEL_EXPORTER_OTLP_ENDPOINT   OTLP endpoint
  OTEL_EXPORTER_OTLP_PROTOCOL   http/protobuf or grpc
  OTEL_EXPORTER_OTLP_INSECURE   Disable TLS
  OTEL_SERVICE_NAME             Service name
  OTEL_METRIC_EXPORT_INTERVAL   Metric export interval

Examples:
  telegen run
  telegen run --workload checkout --logs --duration 5m
  telegen once --iterations 5 --probe
  telegen list`)
}

func runContinuousMode(args []string) {
	cfg := newConfig()
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfg.bindCommonFlags(fs)
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Total run time; zero runs until interrupted")

	if err := fs.Parse(args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return
	}
	cfg.applyEnvOverrides()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, cfg, engine.RunOptions{Duration: cfg.Duration, Interval: cfg.Interval}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOnceMode(args []string) {
	cfg := newConfig()
	fs := flag.NewFlagSet("once", flag.ExitOnError)
	cfg.bindCommonFlags(fs)
	fs.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "Number of iterations to emit")

	if err := fs.Parse(args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return
	}
	cfg.applyEnvOverrides()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, cfg, engine.RunOptions{Iterations: cfg.Iterations, Interval: cfg.Interval}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listWorkloads() {
	names := workload.List()
	sort.Strings(names)

	fmt.Println("Available workloads:")
	fmt.Println()
	for _, name := range names {
		w, _ := workload.Get(name)
		fmt.Printf("  %-12s %s\n", name, w.Description)
	}
}

// execute builds the engine, optionally probes the collector, drives the run
// loop, and tears the providers down with a flush deadline.
func execute(ctx context.Context, cfg *Config, opts engine.RunOptions) error {
	wl, err := loadWorkload(cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(ctx, engine.Config{
		Endpoint:       cfg.Endpoint,
		Protocol:       cfg.Protocol,
		Insecure:       cfg.IsInsecure(),
		ServiceName:    cfg.ServiceName,
		EnableLogs:     cfg.EnableLogs,
		MetricInterval: cfg.MetricInterval,
		JitterPct:      cfg.Jitter,
	}, wl)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer shutdownEngine(eng)

	if cfg.Probe {
		if err := eng.Probe(ctx); err != nil {
			return err
		}
		fmt.Println("Collector reachable.")
	}

	fmt.Printf("Sending telemetry to %s (workload: %s)... (Ctrl+C to stop)\n", cfg.Endpoint, wl.Name)

	opts.OnIteration = func(res engine.Result) {
		status := ""
		if res.Failed {
			status = " [error]"
		}
		fmt.Printf("[%d] Sent trace and metrics (latency: %.1fms)%s\n", res.Iteration, res.LatencyMs, status)
	}

	completed, err := eng.Run(ctx, opts)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Printf("\nShutting down after %d iterations...\n", completed)
		return nil
	case err != nil:
		return err
	default:
		fmt.Printf("Completed: %d iterations\n", completed)
		return nil
	}
}

// shutdownEngine flushes and closes the providers with a fresh deadline; the
// run context is usually already canceled by the time we get here.
func shutdownEngine(eng *engine.Engine) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := eng.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: telemetry shutdown: %v\n", err)
	}
}

func loadWorkload(cfg *Config) (*workload.Workload, error) {
	if cfg.WorkloadFile != "" {
		return workload.LoadFromFile(cfg.WorkloadFile)
	}

	w, ok := workload.Get(cfg.Workload)
	if !ok {
		return nil, fmt.Errorf("unknown workload: %s (use 'telegen list' to see available workloads)", cfg.Workload)
	}

	return w, nil
}
