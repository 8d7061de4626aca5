// Package health declares the wire shape of the server's health endpoint,
// shared by the kvfs and kvfsctl status commands.
package health

// Response is the body returned by GET /health.
type Response struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Data      Details `json:"data"`
	Error     string  `json:"error,omitempty"`
}

// Details is the liveness payload nested under the "data" key.
type Details struct {
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}
