package telemetry

// Config holds OpenTelemetry tracing configuration.
type Config struct {
	Enabled        bool    // turns tracing on
	ServiceName    string  // reported to the trace backend
	ServiceVersion string  // reported alongside the service name
	Endpoint       string  // OTLP gRPC endpoint, for example "localhost:4317"
	Insecure       bool    // disables TLS on the exporter connection
	SampleRate     float64 // fraction of traces to sample, 0.0 to 1.0
}

// DefaultConfig returns the tracing defaults: disabled, local collector,
// full sampling.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "kvfs",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
