package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/flow/imports"
	"mercator-hq/flowc/pkg/flow/parser"
)

// Compiler turns a parsed file into a graph.
// A Compiler is not safe for concurrent use: its resolver keeps per-run state.
type Compiler struct {
	registry Registry
	resolver *imports.Resolver
	version  string
	logger   *slog.Logger
}

// NewCompiler creates a compiler with the default agent registry.
func NewCompiler() *Compiler {
	return &Compiler{
		registry: DefaultAgents(),
		resolver: imports.NewResolver(parser.NewParser()),
		logger:   slog.Default(),
	}
}

// WithRegistry sets the agent registry used to resolve bare agent names.
func (c *Compiler) WithRegistry(r Registry) *Compiler {
	if r != nil {
		c.registry = r
	}
	return c
}

// WithResolver sets the import resolver.
func (c *Compiler) WithResolver(r *imports.Resolver) *Compiler {
	if r != nil {
		c.resolver = r
	}
	return c
}

// WithVersion sets the version written to emitted graphs.
func (c *Compiler) WithVersion(version string) *Compiler {
	c.version = version
	return c
}

// WithLogger sets the logger.
func (c *Compiler) WithLogger(logger *slog.Logger) *Compiler {
	if logger != nil {
		c.logger = logger.With("component", "compiler")
	}
	return c
}

// Resolver returns the import resolver, whose Stats describe the last run.
func (c *Compiler) Resolver() *imports.Resolver {
	return c.resolver
}

// Compile compiles a parsed file. It returns a *errors.CompileError for
// semantic errors, and the parser or system error of an imported file that
// fails to load.
func (c *Compiler) Compile(g *ast.Graph) (*graph.Graph, error) {
	c.resolver.Reset()
	s := &state{
		registry: c.registry,
		resolver: c.resolver,
		logger:   c.logger,
		scopes:   newScopes(),
	}

	if path := g.Span().Path(); path != "" && !strings.Contains(path, "://") {
		if err := s.resolver.Enter(path, g.Span()); err != nil {
			return nil, err
		}
		defer s.resolver.Leave()
	}

	s.scopes.push(false, false)
	defer s.scopes.pop()
	if err := s.graphBody(g.Statements, true); err != nil {
		return nil, err
	}

	out := &graph.Graph{Version: c.version, Nodes: s.scopes.top().nodes}
	c.logger.Debug("compiled graph",
		"path", g.Span().Path(),
		"nodes", out.Nodes.Len(),
		"anonymous", s.anon,
	)
	return out, nil
}

// definition is a name whose statement is being compiled.
type definition struct {
	frame int
	name  string
}

// state is the compiler context for one run.
type state struct {
	registry Registry
	resolver *imports.Resolver
	logger   *slog.Logger

	scopes     *scopes
	anon       int                 // Last anonymous node number, monotonic for the run
	defining   []definition        // Statements being compiled, innermost last
	unresolved *errors.CompileError // Unresolved identifiers of the current statement
}

// fresh returns a new anonymous node name.
func (s *state) fresh() string {
	s.anon++
	return fmt.Sprintf("__anon%d__", s.anon)
}

// emit adds a node to the current frame's graph.
func (s *state) emit(name string, n *graph.Node) {
	s.scopes.top().nodes.Set(name, n)
}

// declare binds name in the current frame.
func (s *state) declare(name string, b binding) error {
	if _, ok := s.scopes.bind(name, b); !ok {
		return errors.NewCompileError(b.span, "Identifier '%s' is already defined", name)
	}
	return nil
}

// isDefining reports whether name in frame is the target of a statement that
// is still being compiled.
func (s *state) isDefining(frame int, name string) bool {
	for _, d := range s.defining {
		if d.frame == frame && d.name == name {
			return true
		}
	}
	return false
}

// graphBody compiles a statement list into the current frame. It first binds
// every name the statements define, so statements may refer to later ones,
// then compiles them in order. When result is set the last computed statement
// is marked as the graph's result.
func (s *state) graphBody(stmts []ast.Stmt, result bool) error {
	modules := make(map[*ast.Import]*imports.Module)
	for _, stmt := range stmts {
		if err := s.declareStmt(stmt, modules); err != nil {
			return err
		}
	}

	var resultName string
	for _, stmt := range stmts {
		name, err := s.statement(stmt, modules)
		if err != nil {
			return err
		}
		if _, ok := stmt.(*ast.ComputedNode); ok {
			resultName = name
		}
	}

	if result && resultName != "" {
		if n, ok := s.scopes.top().nodes.Get(resultName); ok {
			n.IsResult = true
		}
	}
	return nil
}

// declareStmt binds the names a statement introduces. Imports are loaded here
// because an unaliased import binds the module's public names.
func (s *state) declareStmt(stmt ast.Stmt, modules map[*ast.Import]*imports.Module) error {
	switch st := stmt.(type) {
	case *ast.Import:
		mod, err := s.resolver.Load(st)
		if err != nil {
			return err
		}
		modules[st] = mod
		if st.Alias != "" {
			return s.declare(st.Alias, binding{kind: bindNode, span: st.Span()})
		}
		for _, name := range mod.Exports() {
			if err := s.declare(name, binding{kind: bindNode, span: st.Span()}); err != nil {
				return err
			}
		}
		return nil

	case *ast.NativeImport:
		return s.declare(ast.StmtName(st), binding{kind: bindNative, agent: st.Name, span: st.Span()})
	}

	if name := ast.StmtName(stmt); name != "" {
		return s.declare(name, binding{kind: bindNode, span: stmt.Span()})
	}
	return nil
}

// statement compiles one statement and returns the name of the node it
// emitted, if any.
func (s *state) statement(stmt ast.Stmt, modules map[*ast.Import]*imports.Module) (string, error) {
	prev := s.unresolved
	s.unresolved = &errors.CompileError{}
	defer func() { s.unresolved = prev }()

	switch st := stmt.(type) {
	case *ast.StaticNode:
		return st.Name, s.staticNode(st)
	case *ast.ComputedNode:
		return s.computedNode(st)
	case *ast.Import:
		return "", s.importModule(st, modules[st])
	case *ast.NativeImport:
		// Bound by name only; nothing is emitted.
		return "", nil
	}
	return "", errors.NewCompileError(stmt.Span(), "Unsupported statement")
}

func (s *state) staticNode(st *ast.StaticNode) error {
	if !ast.IsConstant(st.Value) {
		return errors.NewCompileError(st.Value.Span(),
			"Static node '%s' must be a constant expression", st.Name)
	}
	n := graph.NewStatic(constant(st.Value))
	if err := annotate(n, st.Annotations); err != nil {
		return err
	}
	s.emit(st.Name, n)
	return nil
}

func (s *state) computedNode(st *ast.ComputedNode) (string, error) {
	if st.Name != "" {
		s.defining = append(s.defining, definition{frame: s.scopes.cur, name: st.Name})
		defer func() { s.defining = s.defining[:len(s.defining)-1] }()
	}

	n, err := s.node(st.Body)
	if err != nil {
		return "", err
	}
	if s.unresolved.HasErrors() {
		return "", s.unresolved
	}
	if err := annotate(n, st.Annotations); err != nil {
		return "", err
	}

	name := st.Name
	if name == "" {
		name = s.fresh()
	}
	s.emit(name, n)
	return name, nil
}

// importModule emits the module node. An aliased import binds the module's
// exports object; an unaliased one emits it anonymously and re-exports each
// public name as a member lookup.
func (s *state) importModule(imp *ast.Import, mod *imports.Module) error {
	n, err := s.module(mod, imp)
	if err != nil {
		return err
	}
	if imp.Alias != "" {
		s.emit(imp.Alias, n)
		return nil
	}

	anon := s.fresh()
	s.emit(anon, n)
	if err := s.declare(anon, binding{kind: bindNode, span: imp.Span()}); err != nil {
		return err
	}
	object := ident(anon, imp)
	for _, name := range mod.Exports() {
		member, err := s.node(&ast.ObjectMember{Base: ast.At(imp.Span()), Object: object, Key: name})
		if err != nil {
			return err
		}
		s.emit(name, member)
	}
	return s.unresolved.ToError()
}

// module compiles an imported file into a nestedAgent whose result is the
// object of its public names. Modules see nothing of the importing scope.
func (s *state) module(mod *imports.Module, imp *ast.Import) (*graph.Node, error) {
	if err := s.resolver.Enter(mod.Path, imp.Span()); err != nil {
		return nil, err
	}
	defer s.resolver.Leave()

	s.scopes.push(false, true)
	defer s.scopes.pop()
	if err := s.graphBody(mod.Graph.Statements, false); err != nil {
		return nil, err
	}

	exports := &ast.ObjectLiteral{Base: ast.At(mod.Graph.Span())}
	for _, name := range mod.Exports() {
		exports.Fields = append(exports.Fields, field(name, ident(name, mod.Graph)))
	}
	result, err := s.node(exports)
	if err != nil {
		return nil, err
	}
	result.IsResult = true
	s.emit(s.fresh(), result)

	s.logger.Debug("compiled module", "path", mod.Path, "exports", len(exports.Fields))
	n := graph.NewComputed(AgentNested, nil)
	n.Graph = &graph.Graph{Nodes: s.scopes.top().nodes}
	return n, nil
}

// annotate copies statement annotations onto the node.
func annotate(n *graph.Node, anns []*ast.Annotation) error {
	for _, a := range anns {
		if graph.ReservedKeys[a.Name] {
			return errors.NewCompileError(a.Span(),
				"Annotation '@%s' conflicts with the reserved node key '%s'", a.Name, a.Name)
		}
		if n.Annotations == nil {
			n.Annotations = graph.NewOrderedMap[any]()
		}
		if n.Annotations.Has(a.Name) {
			return errors.NewCompileError(a.Span(), "Duplicate annotation '@%s'", a.Name)
		}
		n.Annotations.Set(a.Name, a.Value.Value)
	}
	return nil
}

// constant converts a constant expression to its JSON value.
func constant(e ast.Expr) any {
	switch e := ast.Unparen(e).(type) {
	case *ast.Literal:
		return e.Value
	case *ast.ArrayLiteral:
		values := make([]any, 0, len(e.Elements))
		for _, el := range e.Elements {
			values = append(values, constant(el))
		}
		return values
	case *ast.ObjectLiteral:
		m := graph.NewOrderedMap[any]()
		for _, f := range e.Fields {
			m.Set(f.Key, constant(f.Value))
		}
		return m
	}
	return nil
}
