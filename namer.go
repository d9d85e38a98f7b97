package telegen

// SpanNamer defines how operation names are transformed into span names.
type SpanNamer interface {
	Name(operation string) string
}

// DefaultNamer returns operation names unchanged, per OpenTelemetry semantic
// conventions which recommend the raw operation name without service prefixes.
type DefaultNamer struct{}

// Name returns the operation name as is.
func (DefaultNamer) Name(operation string) string {
	return operation
}

// NameHTTP returns a convention-compliant span name for an HTTP request:
// "METHOD /route", e.g. "POST /api/v1/checkout".
func NameHTTP(method, route string) string {
	return method + " " + route
}

// NameRPC returns a convention-compliant span name for an RPC call:
// "Service/Method", e.g. "FraudDetection/AnalyzeTransaction".
func NameRPC(service, method string) string {
	return service + "/" + method
}

// NameDB returns a convention-compliant span name for a database operation:
// "verb table", e.g. "SELECT orders".
func NameDB(verb, table string) string {
	return verb + " " + table
}

// NameMessaging returns a convention-compliant span name for a messaging
// operation: "verb destination", e.g. "publish orders".
func NameMessaging(verb, destination string) string {
	return verb + " " + destination
}
