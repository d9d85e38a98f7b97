// Package http provides an OpenTelemetry-instrumented HTTP client.
//
// The generator uses it to probe the collector endpoint before starting a
// workload, so even the reachability check shows up as a traced client call.
//
//	client := telegenhttp.NewClient(
//	    telegenhttp.WithTimeout(5 * time.Second),
//	)
//	resp, err := client.Get("http://localhost:4318")
package http
