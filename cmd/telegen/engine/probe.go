package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/homeobs/telegen"
	telegenhttp "github.com/homeobs/telegen/http"
)

// Probe checks that the collector endpoint is reachable over HTTP before a
// run starts. Any HTTP response counts as reachable; collectors answer 404 on
// the root path. The request itself is traced through the instrumented client.
func (e *Engine) Probe(ctx context.Context) error {
	if e.probeURL == "" {
		return fmt.Errorf("probe requires an HTTP endpoint")
	}

	ctx, span := telegen.StartClient(ctx, "collector.probe")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.probeURL, nil)
	if err != nil {
		telegen.RecordError(ctx, err)
		return fmt.Errorf("build probe request: %w", err)
	}

	client := telegenhttp.NewClient(
		telegenhttp.WithTimeout(5 * time.Second),
		telegenhttp.WithDialTimeout(3 * time.Second),
	)

	resp, err := client.Do(req)
	if err != nil {
		telegen.RecordError(ctx, err)
		return fmt.Errorf("collector unreachable at %s: %w", e.probeURL, err)
	}
	_ = resp.Body.Close()

	telegen.SetSuccess(ctx)

	return nil
}

// probeURL derives the HTTP URL used by Probe from the engine config.
// gRPC endpoints have no HTTP surface to probe, so they yield "".
func probeURL(cfg Config) string {
	if cfg.Protocol == "grpc" {
		return ""
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	if strings.Contains(endpoint, "://") {
		return endpoint
	}

	scheme := "https"
	if cfg.Insecure {
		scheme = "http"
	}

	return scheme + "://" + endpoint
}
