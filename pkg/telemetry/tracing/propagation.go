package tracing

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

// Environment variables carrying W3C trace context into a flowc run, so a
// compile started by a traced CI job or build tool joins its trace.
//
//	TRACEPARENT=00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01 flowc compile main.flow
const (
	EnvTraceParent = "TRACEPARENT"
	EnvTraceState  = "TRACESTATE"
	EnvBaggage     = "BAGGAGE"
)

// Propagator returns the W3C trace context and baggage propagator.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// FromEnvironment returns ctx carrying the remote parent described by
// TRACEPARENT and TRACESTATE. ctx is returned unchanged when TRACEPARENT is
// unset or malformed.
func FromEnvironment(ctx context.Context) context.Context {
	return ExtractFromMap(ctx, map[string]string{
		"traceparent": os.Getenv(EnvTraceParent),
		"tracestate":  os.Getenv(EnvTraceState),
		"baggage":     os.Getenv(EnvBaggage),
	})
}

// ExtractFromMap extracts trace context from a string map.
func ExtractFromMap(ctx context.Context, carrier map[string]string) context.Context {
	if !ValidateTraceParent(carrier["traceparent"]) {
		return ctx
	}
	return Propagator().Extract(ctx, propagation.MapCarrier(carrier))
}

// InjectToMap writes the trace context of ctx into carrier.
func InjectToMap(ctx context.Context, carrier map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(carrier))
}

// ValidateTraceParent reports whether s is a well-formed traceparent value:
// version-trace_id-parent_id-trace_flags in hex, with
// non-zero trace and parent IDs.
func ValidateTraceParent(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 4 {
		return false
	}
	for i, n := range []int{2, 32, 16, 2} {
		if len(parts[i]) != n || !isHexString(parts[i]) {
			return false
		}
	}
	return strings.Trim(parts[1], "0") != "" && strings.Trim(parts[2], "0") != ""
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
