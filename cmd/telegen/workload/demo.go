package workload

// Demo returns the default workload: one parent operation with one nested
// processing span per iteration, a request counter, and a latency histogram.
// The nested span lasts the sampled latency; latencies above 150 ms raise a
// warning-level log record.
func Demo() *Workload {
	return &Workload{
		Name:        "demo",
		Description: "Parent/child span pair with a request counter and latency histogram",
		Interval:    Duration(2_000_000_000), // 2s between iterations
		Latency:     LatencyRange{MinMs: 10, MaxMs: 200},
		WarnAboveMs: 150,
		Root: SpanTemplate{
			Name: "demo-operation",
			Kind: SpanKindInternal,
			Children: []SpanTemplate{
				{
					Name:         "process-data",
					Kind:         SpanKindInternal,
					SleepLatency: true,
				},
			},
		},
		Counters: []CounterTemplate{
			{
				Name:        "demo.requests",
				Description: "Number of demo requests",
				Attributes:  map[string]string{"status": "success"},
			},
		},
		Histograms: []HistogramTemplate{
			{
				Name:        "demo.latency",
				Description: "Request latency in ms",
				Unit:        "ms",
				Attributes:  map[string]string{"endpoint": "/demo"},
			},
		},
	}
}
