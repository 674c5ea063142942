package compiler

import (
	"fmt"
	"strings"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/flow/source"
)

// Input keys of the apply agent.
const (
	inputAgent = "agent"
	inputArgs  = "args"
)

// value compiles e for use inside another node's inputs. Literals, names,
// arrays and objects are inlined; anything else is hoisted into an anonymous
// node and referenced.
func (s *state) value(e ast.Expr) (any, error) {
	switch e := e.(type) {
	case *ast.Paren:
		return s.value(e.Expr)

	case *ast.Literal:
		if str, ok := e.Value.(string); ok && strings.HasPrefix(str, graph.RefPrefix) {
			// Keep the string from being read as a reference.
			name := s.fresh()
			s.emit(name, graph.NewStatic(str))
			return graph.Ref(name), nil
		}
		return e.Value, nil

	case *ast.Identifier:
		return s.identifier(e)

	case *ast.ArrayLiteral:
		values := make([]any, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := s.value(el)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil

	case *ast.ObjectLiteral:
		m := graph.NewOrderedMap[any]()
		for _, f := range e.Fields {
			v, err := s.value(f.Value)
			if err != nil {
				return nil, err
			}
			m.Set(f.Key, v)
		}
		return m, nil

	case *ast.ObjectMember:
		if agent, ok := s.memberAgent(e); ok {
			return agent, nil
		}
	}
	return s.hoist(e)
}

// hoist compiles e into an anonymous node of the current frame.
func (s *state) hoist(e ast.Expr) (any, error) {
	n, err := s.node(e)
	if err != nil {
		return nil, err
	}
	name := s.fresh()
	s.emit(name, n)
	return graph.Ref(name), nil
}

// share returns an identifier for the value of e, hoisting e into a bound
// anonymous node unless it already is a name.
func (s *state) share(e ast.Expr) (*ast.Identifier, error) {
	if id, ok := ast.Unparen(e).(*ast.Identifier); ok && !id.Builtin {
		return id, nil
	}
	n, err := s.node(e)
	if err != nil {
		return nil, err
	}
	name := s.fresh()
	s.emit(name, n)
	if err := s.declare(name, binding{kind: bindNode, span: e.Span()}); err != nil {
		return nil, err
	}
	return ident(name, e), nil
}

// identifier resolves a name against the scope chain, then the registry.
func (s *state) identifier(id *ast.Identifier) (any, error) {
	if id.Builtin {
		return id.Name, nil
	}

	b, owner, ok := s.scopes.lookup(id.Name)
	if !ok {
		if id.IsContext() {
			return nil, errors.NewCompileError(id.Span(), "@context can only be used inside a lambda")
		}
		if s.registry.Has(id.Name) {
			return id.Name, nil
		}
		s.notFound(id.Span(), id.Name)
		return nil, nil
	}

	if s.isDefining(owner, id.Name) {
		return nil, errors.NewCompileError(id.Span(),
			"Identifier '%s' cannot be referenced in its own definition", id.Name)
	}
	if b.kind == bindNative {
		return b.agent, nil
	}
	if owner != s.scopes.cur {
		s.scopes.capture(id.Name, owner)
	}
	return graph.Ref(id.Name), nil
}

// notFound records an unresolved identifier for the current statement.
func (s *state) notFound(span source.Span, name string) {
	known := s.scopes.visible()
	if n, ok := s.registry.(namer); ok {
		known = append(known, n.Names()...)
	}
	if s.unresolved == nil {
		s.unresolved = &errors.CompileError{}
	}
	s.unresolved.Add(&errors.Item{
		Message:    fmt.Sprintf("Identifier not found: %s", name),
		Span:       span,
		Suggestion: errors.SuggestIdentifier(name, known),
	})
}

// memberAgent resolves a dotted chain such as Array.reduce whose root is not
// in scope to a registered agent name.
func (s *state) memberAgent(m *ast.ObjectMember) (string, bool) {
	parts := []string{m.Key}
	cur := ast.Unparen(m.Object)
	for {
		inner, ok := cur.(*ast.ObjectMember)
		if !ok {
			break
		}
		parts = append([]string{inner.Key}, parts...)
		cur = ast.Unparen(inner.Object)
	}
	root, ok := cur.(*ast.Identifier)
	if !ok || root.Builtin || root.IsContext() {
		return "", false
	}
	if _, _, bound := s.scopes.lookup(root.Name); bound {
		return "", false
	}

	name := root.Name + "." + strings.Join(parts, ".")
	if s.registry.Has(name) {
		return name, true
	}
	if hasNamespace(s.registry, root.Name) {
		if s.unresolved == nil {
			s.unresolved = &errors.CompileError{}
		}
		s.unresolved.AddError(m.Span(), fmt.Sprintf("Agent not found: %s", name))
		return "", true
	}
	return "", false
}

// node compiles e into a node definition.
func (s *state) node(e ast.Expr) (*graph.Node, error) {
	switch e := e.(type) {
	case *ast.Paren:
		return s.node(e.Expr)

	case *ast.Literal, *ast.Identifier, *ast.ArrayLiteral, *ast.ObjectLiteral:
		v, err := s.value(e)
		if err != nil {
			return nil, err
		}
		return apply(AgentIdentity, v), nil

	case *ast.ObjectMember:
		if agent, ok := s.memberAgent(e); ok {
			return apply(AgentIdentity, agent), nil
		}
		return s.node(builtinCall(e, AgentGetObjectMember,
			field("object", e.Object),
			field("key", stringLit(e.Key, e)),
		))

	case *ast.ArrayAt:
		return s.node(builtinCall(e, AgentGetArrayElement,
			field("array", e.Array),
			field("index", e.Index),
		))

	case *ast.AgentCall:
		return s.call(e)
	case *ast.AgentDef:
		return s.lambda(e)
	case *ast.NestedGraph:
		return s.nested(e)
	case *ast.BinaryExpr:
		return s.node(desugarBinary(e))
	case *ast.IfThenElse:
		return s.node(desugarIf(e))
	case *ast.TryCatch:
		return s.node(desugarTry(e))
	case *ast.Match:
		return s.match(e)
	}
	return nil, errors.NewCompileError(e.Span(), "Unsupported expression")
}

// apply builds an apply node. A nil args is emitted as null; use call for the
// zero-argument form.
func apply(agent, args any) *graph.Node {
	inputs := graph.NewOrderedMap[any]()
	inputs.Set(inputAgent, agent)
	inputs.Set(inputArgs, args)
	return graph.NewComputed(AgentApply, inputs)
}

func (s *state) call(e *ast.AgentCall) (*graph.Node, error) {
	agent, err := s.callee(e.Agent)
	if err != nil {
		return nil, err
	}
	if e.Arg == nil {
		inputs := graph.NewOrderedMap[any]()
		inputs.Set(inputAgent, agent)
		return graph.NewComputed(AgentApply, inputs), nil
	}
	arg, err := s.value(e.Arg)
	if err != nil {
		return nil, err
	}
	return apply(agent, arg), nil
}

func (s *state) callee(e ast.Expr) (any, error) {
	switch c := ast.Unparen(e).(type) {
	case *ast.Literal:
		return nil, errors.NewCompileError(c.Span(), "Cannot call a %s literal", c.Kind)
	case *ast.ArrayLiteral:
		return nil, errors.NewCompileError(c.Span(), "Cannot call an array literal")
	case *ast.ObjectLiteral:
		return nil, errors.NewCompileError(c.Span(), "Cannot call an object literal")
	}
	return s.value(e)
}

// lambda compiles a single-parameter definition into a defAgent node. A
// destructuring parameter is replaced by an anonymous one plus binding nodes.
func (s *state) lambda(def *ast.AgentDef) (*graph.Node, error) {
	s.scopes.push(!def.Generated, false)
	defer s.scopes.pop()

	body := def.Body
	var param string
	switch p := def.Param.(type) {
	case nil:
	case *ast.IdentifierPattern:
		param = p.Name
		if err := s.declare(param, binding{kind: bindParam, span: p.Span()}); err != nil {
			return nil, err
		}
	default:
		param = s.fresh()
		if err := s.declare(param, binding{kind: bindParam, span: p.Span()}); err != nil {
			return nil, err
		}
		checks, err := s.destructure(p, ident(param, p))
		if err != nil {
			return nil, err
		}
		if len(checks) > 0 {
			body = guard(checks, body, ident(param, p))
		}
	}

	if err := s.body(body); err != nil {
		return nil, err
	}

	f := s.scopes.top()
	n := graph.NewComputed(AgentDef, captureInputs(f))
	if param != "" {
		n.Params = graph.NewOrderedMap[any]()
		n.Params.Set("arg", param)
	}
	n.Graph = &graph.Graph{Nodes: f.nodes}
	return n, nil
}

// body compiles a lambda body into the current frame. A block body is
// compiled in place; any other expression becomes the single result node.
func (s *state) body(e ast.Expr) error {
	if ng, ok := ast.Unparen(e).(*ast.NestedGraph); ok {
		if ng.Graph.Result() == nil {
			return errors.NewCompileError(ng.Span(), "Lambda body has no result")
		}
		return s.graphBody(ng.Graph.Statements, true)
	}

	n, err := s.node(e)
	if err != nil {
		return err
	}
	n.IsResult = true
	s.emit(s.fresh(), n)
	return nil
}

func (s *state) nested(ng *ast.NestedGraph) (*graph.Node, error) {
	if ng.Graph.Result() == nil {
		return nil, errors.NewCompileError(ng.Span(), "Nested graph has no result")
	}

	s.scopes.push(false, false)
	defer s.scopes.pop()
	if err := s.graphBody(ng.Graph.Statements, true); err != nil {
		return nil, err
	}

	f := s.scopes.top()
	n := graph.NewComputed(AgentNested, captureInputs(f))
	n.Graph = &graph.Graph{Nodes: f.nodes}
	return n, nil
}

// captureInputs wires each captured name as an input of the same name.
func captureInputs(f *frame) *graph.OrderedMap[any] {
	names := f.captures.list()
	if len(names) == 0 {
		return nil
	}
	inputs := graph.NewOrderedMap[any]()
	for _, name := range names {
		inputs.Set(name, graph.Ref(name))
	}
	return inputs
}
