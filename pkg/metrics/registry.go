// Package metrics manages the process-wide Prometheus registry and the
// constructors for per-subsystem metric sets.
//
// Metrics are opt-in. Nothing is collected until InitRegistry is called,
// and every constructor in this package returns nil while the registry is
// disabled. Consumers hold the returned interface and call it without nil
// checks; the implementations treat a nil receiver as a no-op, so a
// disabled registry costs nothing on the hot path.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide Prometheus registry and seeds it
// with the standard Go runtime and process collectors. Calling it again
// is a no-op.
//
// Example usage:
//
//	metrics.InitRegistry()
//	fsMetrics := prometheus.NewFilesystemMetrics()
//	fsys := fs.New(store, fs.WithMetrics(fsMetrics))
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry = reg
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide registry, or nil when metrics are
// disabled. Subsystem constructors use it with promauto.With.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Handler returns the HTTP handler serving the registry in the Prometheus
// exposition format. When metrics are disabled the handler answers 404,
// so it can be mounted unconditionally.
func Handler() http.Handler {
	mu.RLock()
	reg := registry
	mu.RUnlock()

	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
