package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanCompile  = "flowc.compile"
	SpanParse    = "flowc.parse"
	SpanLower    = "flowc.lower"
	SpanValidate = "flowc.validate"
)

// Attribute keys. Custom keys use the "flowc.*" namespace.
const (
	AttrFile    = "flowc.file"
	AttrRunID   = "flowc.run_id"
	AttrVersion = "flowc.graph.version"

	// Graph shape
	AttrNodes    = "flowc.graph.nodes"
	AttrStatic   = "flowc.graph.static"
	AttrComputed = "flowc.graph.computed"
	AttrDepth    = "flowc.graph.depth"

	// Imports
	AttrImportsResolved  = "flowc.imports.resolved"
	AttrImportsParsed    = "flowc.imports.parsed"
	AttrImportsCacheHits = "flowc.imports.cache_hits"

	// Errors
	AttrErrorKind    = "flowc.error.kind"
	AttrErrorItems   = "flowc.error.items"
	AttrErrorMessage = "error.message"
)

// SetFileAttributes records the compiled file and the run it belongs to.
func SetFileAttributes(span trace.Span, path, runID string) {
	attrs := []attribute.KeyValue{attribute.String(AttrFile, path)}
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	span.SetAttributes(attrs...)
}

// SetGraphAttributes records the shape of an emitted graph.
func SetGraphAttributes(span trace.Span, nodes, static, computed, depth int) {
	span.SetAttributes(
		attribute.Int(AttrNodes, nodes),
		attribute.Int(AttrStatic, static),
		attribute.Int(AttrComputed, computed),
		attribute.Int(AttrDepth, depth),
	)
}

// SetImportAttributes records import resolution counts.
func SetImportAttributes(span trace.Span, resolved, parsed, cacheHits int) {
	span.SetAttributes(
		attribute.Int(AttrImportsResolved, resolved),
		attribute.Int(AttrImportsParsed, parsed),
		attribute.Int(AttrImportsCacheHits, cacheHits),
	)
}

// SetErrorAttributes records a failed phase: the error kind, the number of
// diagnostics it carries, the error itself and an Error status.
func SetErrorAttributes(span trace.Span, err error, kind string, items int) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorKind, kind),
		attribute.Int(AttrErrorItems, items),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
