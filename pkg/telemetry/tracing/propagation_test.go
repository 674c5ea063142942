package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

const validTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid", validTraceParent, true},
		{"empty", "", false},
		{"missing part", "00-4bf92f3577b34da6a3ce929d0e0e4736-01", false},
		{"short trace id", "00-4bf92f35-00f067aa0ba902b7-01", false},
		{"non hex", "00-4bf92f3577b34da6a3ce929d0e0e473z-00f067aa0ba902b7-01", false},
		{"zero trace id", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", false},
		{"zero parent id", "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.value); got != tt.want {
				t.Errorf("ValidateTraceParent(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv(EnvTraceParent, validTraceParent)
	t.Setenv(EnvTraceState, "")
	t.Setenv(EnvBaggage, "")

	sc := trace.SpanContextFromContext(FromEnvironment(context.Background()))
	if !sc.IsValid() || !sc.IsRemote() {
		t.Fatalf("expected a remote span context, got %+v", sc)
	}
	if got := sc.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID = %s", got)
	}
	if !sc.IsSampled() {
		t.Error("expected sampled flag from traceparent")
	}
}

func TestFromEnvironment_Unset(t *testing.T) {
	t.Setenv(EnvTraceParent, "not-a-traceparent")

	ctx := context.Background()
	if got := FromEnvironment(ctx); got != ctx {
		t.Error("FromEnvironment() should return ctx unchanged for a malformed traceparent")
	}
}

func TestInjectToMap(t *testing.T) {
	ctx := ExtractFromMap(context.Background(), map[string]string{"traceparent": validTraceParent})

	carrier := map[string]string{}
	InjectToMap(ctx, carrier)
	if carrier["traceparent"] != validTraceParent {
		t.Errorf("traceparent = %q, want %q", carrier["traceparent"], validTraceParent)
	}
}
