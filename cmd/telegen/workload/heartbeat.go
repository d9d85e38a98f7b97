package workload

// Heartbeat returns a minimal connectivity workload: one short client span
// and a ping counter per iteration. Useful for verifying the OTLP pipeline
// end to end.
func Heartbeat() *Workload {
	return &Workload{
		Name:        "heartbeat",
		Description: "Single short client span per iteration, connectivity smoke test",
		Interval:    Duration(2_000_000_000), // 2s
		Latency:     LatencyRange{MinMs: 1, MaxMs: 5},
		Root: SpanTemplate{
			Name:         "collector.ping",
			Kind:         SpanKindClient,
			SleepLatency: true,
			Attributes: map[string]string{
				"peer.service": "otel-collector",
			},
		},
		Counters: []CounterTemplate{
			{
				Name:        "heartbeat.pings",
				Description: "Number of heartbeat pings",
			},
		},
	}
}
