package metrics

import (
	"time"

	"mercator-hq/flowc/pkg/config"
	"mercator-hq/flowc/pkg/flow/graph"

	"github.com/prometheus/client_golang/prometheus"
)

// CompileMetrics tracks compilations.
//
// Metrics:
//   - flowc_compiler_compiles_total: Compilations by status
//   - flowc_compiler_compile_duration_seconds: End-to-end compile time
//   - flowc_compiler_phase_duration_seconds: Time per phase
//   - flowc_compiler_graph_nodes: Emitted node counts by kind
//   - flowc_compiler_graph_depth: Deepest sub-graph nesting
//   - flowc_compiler_agent_calls_total: Computed nodes per agent
type CompileMetrics struct {
	compilesTotal   *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	phaseDuration   *prometheus.HistogramVec
	graphNodes      *prometheus.HistogramVec
	graphDepth      prometheus.Histogram
	agentCalls      *prometheus.CounterVec
}

// NewCompileMetrics creates and registers compile metrics with the provided registry.
func NewCompileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		compilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compiles_total",
				Help:      "Total number of compilations",
			},
			[]string{"status"},
		),

		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compile_duration_seconds",
				Help:      "Duration of compilations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"status"},
		),

		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "phase_duration_seconds",
				Help:      "Duration of compilation phases in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"phase"},
		),

		graphNodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "graph_nodes",
				Help:      "Number of nodes in emitted graphs, nested ones included",
				Buckets:   cfg.NodeCountBuckets,
			},
			[]string{"kind"},
		),

		graphDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "graph_depth",
				Help:      "Deepest sub-graph nesting of emitted graphs",
				Buckets:   prometheus.LinearBuckets(0, 1, 8),
			},
		),

		agentCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "agent_calls_total",
				Help:      "Computed nodes emitted per agent",
			},
			[]string{"agent"},
		),
	}

	registry.MustRegister(
		cm.compilesTotal,
		cm.compileDuration,
		cm.phaseDuration,
		cm.graphNodes,
		cm.graphDepth,
		cm.agentCalls,
	)

	return cm
}

// RecordCompile records a finished compilation.
func (cm *CompileMetrics) RecordCompile(status string, duration time.Duration) {
	cm.compilesTotal.WithLabelValues(status).Inc()
	cm.compileDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordPhase records the duration of one phase.
func (cm *CompileMetrics) RecordPhase(phase string, duration time.Duration) {
	cm.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordGraph records the node counts and depth of an emitted graph.
func (cm *CompileMetrics) RecordGraph(stats graph.Stats) {
	cm.graphNodes.WithLabelValues("total").Observe(float64(stats.Nodes))
	cm.graphNodes.WithLabelValues("static").Observe(float64(stats.Static))
	cm.graphNodes.WithLabelValues("computed").Observe(float64(stats.Computed))
	cm.graphNodes.WithLabelValues("nested").Observe(float64(stats.Nested))
	cm.graphDepth.Observe(float64(stats.MaxDepth))
}

// RecordAgent adds n calls of agent.
func (cm *CompileMetrics) RecordAgent(agent string, n int) {
	if n > 0 {
		cm.agentCalls.WithLabelValues(agent).Add(float64(n))
	}
}
