// Package telemetry groups the observability packages used by flowc.
//
// # Components
//
//   - logging: structured logging on log/slog with run and file context
//   - metrics: Prometheus metrics for compilation phases, graphs, imports and the artifact store
//   - tracing: OpenTelemetry spans for each compilation phase
//   - health: liveness, readiness and version endpoints for watch mode
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, _ := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	c := flow.New(
//		flow.WithLogger(logger),
//		flow.WithObserver(collector),
//		flow.WithTracer(tracer.Tracer()),
//	)
//
// Metrics are served from collector.Handler(); the compiler and the store only
// see the Observer interfaces they declare, so telemetry stays optional.
package telemetry
