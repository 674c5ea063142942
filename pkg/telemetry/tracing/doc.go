// Package tracing provides OpenTelemetry tracing for flowc.
//
// A compilation is one trace: a flowc.compile span with children for the
// parse, lower and validate phases. Spans carry the file, the run ID, the
// emitted graph's shape and import cache counts, and on failure the error
// kind and number of diagnostics.
//
// # Export
//
// Spans are exported over OTLP/gRPC to TracingConfig.Endpoint. The connection
// is lazy, so an unreachable collector never fails a compile; spans are
// batched and flushed by Shutdown.
//
// # Sampling Strategies
//
//   - always: trace every compilation
//   - never: trace nothing
//   - ratio: trace a fraction of compilations, by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	compiler := flow.NewCompiler(flow.WithTracer(tracer.Tracer()))
package tracing
