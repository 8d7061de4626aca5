package apiclient

import "time"

// HealthResponse is the envelope the health endpoints answer with.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Health checks the liveness endpoint. It answers as long as the process is
// up, regardless of store health.
func (c *Client) Health() (*HealthResponse, error) {
	return getResource[HealthResponse](c, "/health")
}

// Ready checks the readiness endpoint. It fails when the backing store is
// not reachable.
func (c *Client) Ready() (*HealthResponse, error) {
	return getResource[HealthResponse](c, "/health/ready")
}

// StoreHealth reports the backing store's health including probe latency.
func (c *Client) StoreHealth() (*HealthResponse, error) {
	return getResource[HealthResponse](c, "/health/store")
}
