package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/kvfs/pkg/kv"
)

// healthCheckTimeout bounds each backing store probe.
const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the server ready to accept requests?
//   - Store health: Detailed health of the backing key-value store
type HealthHandler struct {
	store     kv.Store
	storeType string
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
//
// The store parameter may be nil, in which case readiness and store health
// checks will return unhealthy status. storeType labels the backend in the
// detailed store health response ("memory", "badger", "bolt", "s3").
func NewHealthHandler(store kv.Store, storeType string) *HealthHandler {
	return &HealthHandler{store: store, storeType: storeType, startedAt: time.Now()}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running, together with the start
// time and uptime. This endpoint is designed for Kubernetes liveness probes
// and should always succeed as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "kvfs",
		"started_at": h.startedAt.UTC().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK if the server is ready to accept requests, which means the
// backing store is configured and answers a health check probe.
//
// Returns 503 Service Unavailable if the server is not ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"store": h.storeType,
	}))
}

// StoreHealth represents the health status of the backing store.
type StoreHealth struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Store handles GET /health/store - detailed store health.
//
// Probes the backing key-value store and reports its status together with
// the probe latency. Returns 200 OK if the store is healthy, 503 Service
// Unavailable if not.
func (h *HealthHandler) Store(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.store.HealthCheck(ctx)
	latency := time.Since(start)

	health := StoreHealth{
		Type:    h.storeType,
		Latency: latency.String(),
	}

	if err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(health))
		return
	}

	health.Status = "healthy"
	WriteJSON(w, http.StatusOK, healthyResponse(health))
}
