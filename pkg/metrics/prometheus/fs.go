// Package prometheus contains the Prometheus-backed implementations of
// the per-subsystem metric interfaces. Constructors return nil while the
// registry is disabled; all methods tolerate nil receivers.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/metrics"
)

// fsMetrics is the Prometheus implementation of fs.Metrics.
type fsMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// NewFilesystemMetrics creates a Prometheus-backed fs.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// A nil fs.Metrics disables collection in the filesystem with zero
// overhead.
func NewFilesystemMetrics() fs.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &fsMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvfs_fs_operations_total",
				Help: "Total number of filesystem operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "kvfs_fs_operation_duration_milliseconds",
				Help: "Duration of filesystem operations in milliseconds",
				Buckets: []float64{
					1,    // 1ms - memory-backed stores
					5,    // 5ms
					10,   // 10ms - local disk stores
					50,   // 50ms
					100,  // 100ms - remote stores
					500,  // 500ms
					1000, // 1s - multi-chunk writes over remote stores
					5000, // 5s
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kvfs_fs_bytes_transferred_total",
				Help: "Total bytes moved through range reads and writes",
			},
			[]string{"operation", "direction"},
		),
	}
}

func (m *fsMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *fsMetrics) RecordBytes(operation string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}

	direction := "write"
	if operation == "read" {
		direction = "read"
	}

	m.bytesTransferred.WithLabelValues(operation, direction).Add(float64(bytes))
}
