// Package metrics provides Prometheus metrics collection for flowc.
//
// # Metrics Categories
//
//   - Compile Metrics: compilations by status, end-to-end and per-phase
//     durations, emitted node counts and depth, agent usage
//   - Cache Metrics: hits and misses of the import resolver's module cache
//   - Store Metrics: artifact store operations and retention pruning
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	compiler := flow.NewCompiler(flow.WithObserver(collector))
//
// The Collector's Observe methods are the compiler's observer hooks, so no
// adapter is needed. When MetricsConfig.Enabled is false every method is a
// no-op.
//
// # Prometheus Endpoint
//
// `flowc watch` serves the registry on MetricsConfig.Path:
//
//	# HELP flowc_compiler_compiles_total Total number of compilations
//	# TYPE flowc_compiler_compiles_total counter
//	flowc_compiler_compiles_total{status="success"} 12
//
// # Cardinality Management
//
// Agent names come from user code, so the agent label is capped; names past
// the limit are aggregated into "other".
package metrics
