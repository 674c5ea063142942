package metrics

import (
	"time"

	"mercator-hq/flowc/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks the artifact store.
//
// Metrics:
//   - flowc_compiler_store_operations_total: Operations by kind and status
//   - flowc_compiler_store_operation_duration_seconds: Operation latency
//   - flowc_compiler_store_pruned_total: Artifacts removed by retention
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	prunedTotal       prometheus.Counter
}

// NewStoreMetrics creates and registers store metrics with the provided registry.
func NewStoreMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_operations_total",
				Help:      "Total number of artifact store operations",
			},
			[]string{"op", "status"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of artifact store operations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"op"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "store_pruned_total",
				Help:      "Total number of artifacts removed by retention",
			},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
		sm.prunedTotal,
	)

	return sm
}

// RecordOperation records one store operation.
func (sm *StoreMetrics) RecordOperation(op string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	sm.operationsTotal.WithLabelValues(op, status).Inc()
	sm.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordPruned adds n pruned artifacts.
func (sm *StoreMetrics) RecordPruned(n int64) {
	if n > 0 {
		sm.prunedTotal.Add(float64(n))
	}
}
