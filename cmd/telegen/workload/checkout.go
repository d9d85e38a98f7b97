package workload

// Checkout returns a multi-hop order-flow workload: an HTTP server span
// fanning out to payment processing with an order lookup, a fraud-check RPC,
// a card charge with a simulated failure rate, and an order-events publish
// with its consumption on the far side of the message hop.
func Checkout() *Workload {
	return &Workload{
		Name:        "checkout",
		Description: "Order checkout flow with fraud check, card charge, and notification",
		Interval:    Duration(2_000_000_000), // 2s
		Latency:     LatencyRange{MinMs: 40, MaxMs: 350},
		WarnAboveMs: 250,
		Root: SpanTemplate{
			Name: "POST /api/v1/checkout",
			Kind: SpanKindServer,
			Attributes: map[string]string{
				"http.request.method":       "POST",
				"http.route":                "/api/v1/checkout",
				"url.path":                  "/api/v1/checkout",
				"http.response.status_code": "200",
			},
			Children: []SpanTemplate{
				{
					Name:         "ProcessPayment",
					Kind:         SpanKindInternal,
					SleepLatency: true,
					Attributes: map[string]string{
						"payment.amount":   "99.99",
						"payment.currency": "USD",
					},
					Logs: []LogTemplate{
						{Level: "INFO", Message: "Processing payment request"},
					},
					Children: []SpanTemplate{
						{
							Name:     "SELECT orders",
							Kind:     SpanKindClient,
							Duration: Duration(12_000_000), // 12ms
							Attributes: map[string]string{
								"db.system":          "postgresql",
								"db.namespace":       "shop",
								"db.operation.name":  "SELECT",
								"db.collection.name": "orders",
							},
						},
						{
							Name:     "FraudDetection/AnalyzeTransaction",
							Kind:     SpanKindClient,
							Duration: Duration(45_000_000), // 45ms
							Attributes: map[string]string{
								"rpc.system":  "grpc",
								"rpc.service": "FraudDetection",
								"rpc.method":  "AnalyzeTransaction",
							},
						},
						{
							Name:        "ChargeCard",
							Kind:        SpanKindInternal,
							Duration:    Duration(80_000_000), // 80ms
							ErrorRate:   0.05,
							ErrorStatus: "payment declined",
							Attributes: map[string]string{
								"payment.processor": "stripe-mock",
							},
							Logs: []LogTemplate{
								{Level: "DEBUG", Message: "Charging card via processor"},
							},
						},
					},
				},
				{
					Name:     "publish order-events",
					Kind:     SpanKindProducer,
					Duration: Duration(8_000_000), // 8ms
					Attributes: map[string]string{
						"messaging.system":           "nats",
						"messaging.destination.name": "order-events",
						"messaging.operation.name":   "publish",
					},
					Children: []SpanTemplate{
						{
							Name:     "process order-events",
							Kind:     SpanKindConsumer,
							Duration: Duration(5_000_000), // 5ms
							Attributes: map[string]string{
								"messaging.system":           "nats",
								"messaging.destination.name": "order-events",
								"messaging.operation.name":   "process",
							},
						},
					},
				},
			},
		},
		Counters: []CounterTemplate{
			{
				Name:        "checkout.orders",
				Description: "Number of checkout orders",
				Attributes:  map[string]string{"status": "success"},
			},
		},
		Histograms: []HistogramTemplate{
			{
				Name:        "checkout.latency",
				Description: "Checkout latency in ms",
				Unit:        "ms",
				Attributes:  map[string]string{"endpoint": "/api/v1/checkout"},
			},
		},
	}
}
