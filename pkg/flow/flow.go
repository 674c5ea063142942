package flow

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/compiler"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/flow/imports"
	"mercator-hq/flowc/pkg/flow/parser"
	"mercator-hq/flowc/pkg/flow/source"
	"mercator-hq/flowc/pkg/telemetry/logging"
	"mercator-hq/flowc/pkg/telemetry/tracing"
)

// Compile statuses reported to observers.
const (
	StatusSuccess      = "success"
	StatusParseError   = "parse_error"
	StatusCompileError = "compile_error"
	StatusSystemError  = "system_error"
	StatusInvalidGraph = "invalid_graph"
)

// Phases reported to observers.
const (
	PhaseParse    = "parse"
	PhaseCompile  = "compile"
	PhaseValidate = "validate"
)

// DefaultVersion is written to graphs when no version is configured.
const DefaultVersion = "1.0"

// ErrorTypeGraph marks diagnostics that come from graph validation.
const ErrorTypeGraph errors.ErrorType = "invalid_graph"

// Observer receives measurements of every compilation.
// *metrics.Collector satisfies it.
type Observer interface {
	ObservePhase(phase string, d time.Duration)
	ObserveCompile(status string, d time.Duration)
	ObserveGraph(stats graph.Stats, agents map[string]int)
	ObserveImports(resolved, parsed, cacheHits int)
}

type nopObserver struct{}

func (nopObserver) ObservePhase(string, time.Duration)       {}
func (nopObserver) ObserveCompile(string, time.Duration)     {}
func (nopObserver) ObserveGraph(graph.Stats, map[string]int) {}
func (nopObserver) ObserveImports(int, int, int)             {}

// Result describes one successful compilation.
type Result struct {
	RunID    string
	Path     string
	Graph    *graph.Graph
	Stats    graph.Stats
	Agents   map[string]int // Invocations per agent name
	Imports  imports.Stats
	Duration time.Duration
}

// Compiler compiles flow files into graphs.
// Every call uses its own parser and import cache, so a Compiler is safe for
// concurrent use.
type Compiler struct {
	version     string
	modulesDir  string
	maxFileSize int64
	registry    compiler.Registry
	validate    bool

	logger   *logging.Logger
	observer Observer
	tracer   trace.Tracer
}

// New creates a compiler. Without options it emits version "1.0" graphs,
// resolves bare imports from node_modules and validates its output.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		version:     DefaultVersion,
		modulesDir:  imports.DefaultModulesDir,
		maxFileSize: parser.DefaultMaxFileSize,
		registry:    compiler.DefaultAgents(),
		validate:    true,
		logger:      logging.Discard(),
		observer:    nopObserver{},
		tracer:      noop.NewTracerProvider().Tracer("flowc"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles the file at path.
func (c *Compiler) Compile(ctx context.Context, path string) (*graph.Graph, error) {
	res, err := c.Run(ctx, path)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// CompileBytes compiles source text held in memory. path names the source in
// diagnostics and anchors relative imports.
func (c *Compiler) CompileBytes(ctx context.Context, data []byte, path string) (*graph.Graph, error) {
	if int64(len(data)) > c.maxFileSize {
		return nil, errors.NewSystemError(path, source.Span{},
			fmt.Errorf("data size %d exceeds maximum %d bytes", len(data), c.maxFileSize))
	}
	res, err := c.RunSource(ctx, source.New(path, string(data)))
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// CompileSource compiles an already loaded source.
func (c *Compiler) CompileSource(ctx context.Context, src *source.Source) (*graph.Graph, error) {
	res, err := c.RunSource(ctx, src)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// Run compiles the file at path and reports run details alongside the graph.
func (c *Compiler) Run(ctx context.Context, path string) (*Result, error) {
	src, err := c.newParser().Load(path)
	if err != nil {
		ctx, _ = withRunID(ctx)
		c.logger.ErrorContext(logging.WithFile(ctx, path), "cannot read source", "error", err)
		c.observer.ObserveCompile(Status(err), 0)
		return nil, err
	}
	return c.RunSource(ctx, src)
}

// RunSource compiles src and reports run details alongside the graph.
func (c *Compiler) RunSource(ctx context.Context, src *source.Source) (res *Result, err error) {
	start := time.Now()
	ctx, runID := withRunID(ctx)
	ctx = logging.WithFile(ctx, src.Path)

	ctx, span := c.tracer.Start(ctx, tracing.SpanCompile)
	defer span.End()
	tracing.SetFileAttributes(span, src.Path, runID)
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}

	defer func() {
		elapsed := time.Since(start)
		status := Status(err)
		c.observer.ObserveCompile(status, elapsed)
		if err != nil {
			tracing.SetErrorAttributes(span, err, status, len(FormatErrors(err)))
			c.logger.WarnContext(ctx, "compilation failed", "status", status, "duration", elapsed)
			return
		}
		res.Duration = elapsed
		tracing.SetStatus(span, nil)
		c.logger.InfoContext(ctx, "compiled",
			"nodes", res.Stats.Nodes,
			"depth", res.Stats.MaxDepth,
			"duration", elapsed,
		)
	}()

	p := c.newParser()
	prog, err := c.parse(ctx, p, src)
	if err != nil {
		return nil, err
	}

	resolver := imports.NewResolver(p).
		WithModulesDir(c.modulesDir).
		WithLogger(c.logger.Slog())
	g, err := c.lower(ctx, prog, resolver)
	if err != nil {
		return nil, err
	}

	if c.validate {
		if err := c.check(ctx, g); err != nil {
			return nil, err
		}
	}

	stats := graph.Collect(g)
	agents := CountAgents(g)
	tracing.SetGraphAttributes(span, stats.Nodes, stats.Static, stats.Computed, stats.MaxDepth)
	c.observer.ObserveGraph(stats, agents)

	return &Result{
		RunID:   runID,
		Path:    src.Path,
		Graph:   g,
		Stats:   stats,
		Agents:  agents,
		Imports: resolver.Stats(),
	}, nil
}

func (c *Compiler) parse(ctx context.Context, p *parser.Parser, src *source.Source) (*ast.Graph, error) {
	_, span := c.tracer.Start(ctx, tracing.SpanParse)
	defer span.End()

	start := time.Now()
	prog, err := p.ParseSource(src)
	c.observer.ObservePhase(PhaseParse, time.Since(start))
	if err != nil {
		tracing.SetErrorAttributes(span, err, StatusParseError, 1)
	}
	return prog, err
}

func (c *Compiler) lower(ctx context.Context, prog *ast.Graph, resolver *imports.Resolver) (*graph.Graph, error) {
	_, span := c.tracer.Start(ctx, tracing.SpanLower)
	defer span.End()

	cc := compiler.NewCompiler().
		WithRegistry(c.registry).
		WithResolver(resolver).
		WithVersion(c.version).
		WithLogger(c.logger.Slog())

	start := time.Now()
	g, err := cc.Compile(prog)
	c.observer.ObservePhase(PhaseCompile, time.Since(start))

	st := resolver.Stats()
	c.observer.ObserveImports(st.Resolved, st.Parsed, st.CacheHits)
	tracing.SetImportAttributes(span, st.Resolved, st.Parsed, st.CacheHits)
	if err != nil {
		tracing.SetErrorAttributes(span, err, Status(err), len(FormatErrors(err)))
	}
	return g, err
}

func (c *Compiler) check(ctx context.Context, g *graph.Graph) error {
	_, span := c.tracer.Start(ctx, tracing.SpanValidate)
	defer span.End()

	start := time.Now()
	err := graph.Validate(g)
	c.observer.ObservePhase(PhaseValidate, time.Since(start))
	if err != nil {
		tracing.SetErrorAttributes(span, err, StatusInvalidGraph, len(FormatErrors(err)))
	}
	return err
}

func (c *Compiler) newParser() *parser.Parser {
	return parser.NewParser().WithMaxFileSize(c.maxFileSize)
}

// withRunID makes sure ctx carries a run ID.
func withRunID(ctx context.Context) (context.Context, string) {
	if id := logging.GetRunID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return logging.WithRunID(ctx, id), id
}

// Status classifies a compile result for metrics and logs.
func Status(err error) string {
	var verr *graph.ValidationError
	switch {
	case err == nil:
		return StatusSuccess
	case stderrors.Is(err, errors.ErrParse):
		return StatusParseError
	case stderrors.Is(err, errors.ErrCompile):
		return StatusCompileError
	case stderrors.As(err, &verr):
		return StatusInvalidGraph
	default:
		return StatusSystemError
	}
}

// FormatErrors converts a compile error into display-ready diagnostics.
// Graph validation issues become one diagnostic each, without location.
func FormatErrors(err error) []errors.FormattedError {
	var verr *graph.ValidationError
	if stderrors.As(err, &verr) {
		out := make([]errors.FormattedError, 0, len(verr.Issues))
		for _, issue := range verr.Issues {
			out = append(out, errors.FormattedError{Type: ErrorTypeGraph, Message: issue.String()})
		}
		return out
	}
	return errors.Format(err)
}

// CountAgents counts invocations per agent name, nested graphs included.
// For apply nodes the applied agent is counted when it is a literal name.
func CountAgents(g *graph.Graph) map[string]int {
	counts := make(map[string]int)
	countAgents(counts, g)
	return counts
}

func countAgents(counts map[string]int, g *graph.Graph) {
	g.Nodes.Each(func(_ string, n *graph.Node) bool {
		if n.Static {
			return true
		}
		counts[calledAgent(n)]++
		if n.Graph != nil {
			countAgents(counts, n.Graph)
		}
		return true
	})
}

func calledAgent(n *graph.Node) string {
	if n.Agent != compiler.AgentApply || n.Inputs == nil {
		return n.Agent
	}
	v, ok := n.Inputs.Get("agent")
	if !ok {
		return n.Agent
	}
	name, ok := v.(string)
	if !ok || name == "" {
		return n.Agent
	}
	if _, isRef := graph.RefName(name); isRef {
		return n.Agent
	}
	return name
}
