package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/kvfs/pkg/kv/instrumented"
	"github.com/marmos91/kvfs/pkg/metrics"
)

// storeMetrics is the Prometheus implementation of instrumented.StoreMetrics.
type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	payloadBytes      *prometheus.CounterVec
}

// NewStoreMetrics creates a Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// instrumented.New treats a nil as "no metrics" and, with tracing also
// off, skips wrapping entirely.
func NewStoreMetrics() instrumented.StoreMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvfs_store_operations_total",
				Help: "Total number of key-value store operations by backend, operation and status",
			},
			[]string{"store", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "kvfs_store_operation_duration_milliseconds",
				Help: "Duration of key-value store operations in milliseconds",
				Buckets: []float64{
					0.1, // 100us - in-memory store
					1,   // 1ms
					5,   // 5ms - embedded stores
					10,  // 10ms
					50,  // 50ms - remote stores
					100, // 100ms
					500, // 500ms
					1000,
				},
			},
			[]string{"store", "operation"},
		),
		payloadBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvfs_store_payload_bytes_total",
				Help: "Total value bytes moved by store reads and writes",
			},
			[]string{"store", "operation"},
		),
	}
}

func (m *storeMetrics) ObserveOperation(store, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(store, operation, status).Inc()
	m.operationDuration.WithLabelValues(store, operation).Observe(duration.Seconds() * 1000)
}

func (m *storeMetrics) RecordPayload(store, operation string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.payloadBytes.WithLabelValues(store, operation).Add(float64(bytes))
}
