package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mercator-hq/flowc/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func enabledConfig() *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     true,
		Sampler:     SamplerAlways,
		Endpoint:    "localhost:4317",
		ServiceName: "flowc-test",
	}
}

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(enabledConfig(), WithExporter(exporter), WithServiceVersion("1.2.3"))
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	t.Cleanup(func() { tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func attrValue(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "disabled tracing", config: &config.TracingConfig{ServiceName: "flowc-test"}},
		{name: "enabled with always sampler", config: enabledConfig()},
		{
			name: "enabled with ratio sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerRatio,
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "flowc-test",
			},
		},
		{
			name: "unknown sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestTracer_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{ServiceName: "flowc-test"})
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}

	ctx, span := tracer.Start(context.Background(), SpanCompile)
	defer span.End()

	if span.IsRecording() {
		t.Error("expected a non-recording span when disabled")
	}
	if TraceID(ctx) != "" {
		t.Error("expected no trace ID when disabled")
	}
}

func TestTracer_NestedSpans(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	ctx, parent := tracer.Start(context.Background(), SpanCompile)
	SetFileAttributes(parent, "main.flow", "run-1")
	_, child := tracer.Tracer().Start(ctx, SpanParse)
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	// Children end first.
	if spans[0].Name != SpanParse || spans[1].Name != SpanCompile {
		t.Errorf("unexpected span order %q, %q", spans[0].Name, spans[1].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("parse span is not a child of the compile span")
	}
	if v, ok := attrValue(spans[1], AttrFile); !ok || v.AsString() != "main.flow" {
		t.Errorf("expected %s=main.flow, got %v", AttrFile, v)
	}
	if v, ok := attrValue(spans[1], AttrRunID); !ok || v.AsString() != "run-1" {
		t.Errorf("expected %s=run-1, got %v", AttrRunID, v)
	}
}

func TestTracer_Resource(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), SpanCompile)
	span.End()

	res := exporter.GetSpans()[0].Resource
	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["service.name"] != "flowc-test" {
		t.Errorf("service.name = %q", found["service.name"])
	}
	if found["service.version"] != "1.2.3" {
		t.Errorf("service.version = %q", found["service.version"])
	}
}

func TestTraceID(t *testing.T) {
	tracer, _ := newRecordingTracer(t)

	if TraceID(context.Background()) != "" {
		t.Error("expected empty trace ID without a span")
	}

	ctx, span := tracer.Start(context.Background(), SpanCompile)
	defer span.End()
	if id := TraceID(ctx); len(id) != 32 {
		t.Errorf("expected a 32-character trace ID, got %q", id)
	}
}

func TestSetErrorAttributes(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), SpanLower)
	SetErrorAttributes(span, errors.New("Identifier not found: x"), "compile", 2)
	SetErrorAttributes(span, nil, "ignored", 0)
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("expected Error status, got %v", got.Status.Code)
	}
	if v, _ := attrValue(got, AttrErrorKind); v.AsString() != "compile" {
		t.Errorf("expected error kind compile, got %q", v.AsString())
	}
	if v, _ := attrValue(got, AttrErrorItems); v.AsInt64() != 2 {
		t.Errorf("expected 2 items, got %d", v.AsInt64())
	}
	if len(got.Events) != 1 || got.Events[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", got.Events)
	}
}

func TestSetGraphAndImportAttributes(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), SpanLower)
	SetGraphAttributes(span, 7, 2, 5, 1)
	SetImportAttributes(span, 3, 2, 1)
	span.End()

	got := exporter.GetSpans()[0]
	want := map[string]int64{
		AttrNodes: 7, AttrStatic: 2, AttrComputed: 5, AttrDepth: 1,
		AttrImportsResolved: 3, AttrImportsParsed: 2, AttrImportsCacheHits: 1,
	}
	for key, n := range want {
		if v, ok := attrValue(got, key); !ok || v.AsInt64() != n {
			t.Errorf("%s = %v, want %d", key, v, n)
		}
	}
}

func TestSetStatus(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, ok := tracer.Start(context.Background(), "ok")
	SetStatus(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	SetError(failed, context.DeadlineExceeded)
	SetStatus(failed, context.DeadlineExceeded)
	failed.End()

	spans := exporter.GetSpans()
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected Ok, got %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected Error, got %v", spans[1].Status.Code)
	}
}

func TestWithExporter_NeverSampler(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	cfg := enabledConfig()
	cfg.Sampler = SamplerNever
	tracer, err := New(cfg, WithExporter(exporter))
	if err != nil {
		t.Fatal(err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), SpanCompile)
	span.End()

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no exported spans, got %d", n)
	}
	var _ sdktrace.SpanExporter = exporter
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{"always", SamplerAlways, 0, false},
		{"never", SamplerNever, 0, false},
		{"ratio zero", SamplerRatio, 0, false},
		{"ratio half", SamplerRatio, 0.5, false},
		{"ratio one", SamplerRatio, 1, false},
		{"ratio negative", SamplerRatio, -0.1, true},
		{"ratio above one", SamplerRatio, 1.5, true},
		{"ratio ignored for always", SamplerAlways, 7, false},
		{"unknown strategy", "sometimes", 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := newSampler(&config.TracingConfig{Sampler: tt.strategy, SampleRatio: tt.ratio})
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("newSampler() returned nil sampler without error")
			}
		})
	}
}

func TestTracer_Sampler(t *testing.T) {
	tracer, _ := newRecordingTracer(t)
	if got := tracer.Sampler(); !strings.HasPrefix(got, "ParentBased") || !strings.Contains(got, "AlwaysOnSampler") {
		t.Errorf("Sampler() = %q, want a parent-based always-on sampler", got)
	}

	disabled, err := New(&config.TracingConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got := disabled.Sampler(); got != "disabled" {
		t.Errorf("Sampler() = %q, want disabled", got)
	}
}

// A compile joined to a sampled caller trace is recorded even when local
// roots are never sampled.
func TestNeverSampler_FollowsTraceParent(t *testing.T) {
	t.Setenv(EnvTraceParent, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	exporter := tracetest.NewInMemoryExporter()
	cfg := enabledConfig()
	cfg.Sampler = SamplerNever
	tracer, err := New(cfg, WithExporter(exporter))
	if err != nil {
		t.Fatal(err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(FromEnvironment(context.Background()), SpanCompile)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 exported span, got %d", len(spans))
	}
	if got := spans[0].SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace ID = %s, want the caller's", got)
	}
}
