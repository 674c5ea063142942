package compiler

import (
	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/graph"
)

// Messages thrown at runtime by desugared code.
const (
	msgPatternMismatch = "Pattern mismatch"
	msgNoMatch         = "No pattern matched value"
)

// builtinCall builds `agent({fields})` at n's span.
func builtinCall(n ast.Node, agent string, fields ...*ast.ObjectField) *ast.AgentCall {
	base := ast.At(n.Span())
	return &ast.AgentCall{
		Base:  base,
		Agent: &ast.Identifier{Base: base, Name: agent, Builtin: true},
		Arg:   &ast.ObjectLiteral{Base: base, Fields: fields},
	}
}

func field(key string, value ast.Expr) *ast.ObjectField {
	return &ast.ObjectField{Base: ast.At(value.Span()), Key: key, Value: value}
}

func ident(name string, at ast.Node) *ast.Identifier {
	return &ast.Identifier{Base: ast.At(at.Span()), Name: name}
}

func stringLit(value string, at ast.Node) *ast.Literal {
	return &ast.Literal{Base: ast.At(at.Span()), Kind: ast.LiteralString, Value: value}
}

func numberLit(value int, at ast.Node) *ast.Literal {
	return &ast.Literal{Base: ast.At(at.Span()), Kind: ast.LiteralNumber, Value: float64(value)}
}

func boolLit(value bool, at ast.Node) *ast.Literal {
	return &ast.Literal{Base: ast.At(at.Span()), Kind: ast.LiteralBoolean, Value: value}
}

// thunk wraps body in a zero-parameter lambda so it is evaluated on demand.
func thunk(body ast.Expr) *ast.AgentDef {
	return &ast.AgentDef{Base: ast.At(body.Span()), Body: body, Generated: true}
}

// desugarBinary rewrites `l op r` to `agent({left: l, right: r})`; power uses
// base and exponent.
func desugarBinary(e *ast.BinaryExpr) *ast.AgentCall {
	agent := operatorAgents[e.Op]
	if agent == AgentPow {
		return builtinCall(e, agent, field("base", e.Left), field("exponent", e.Right))
	}
	return builtinCall(e, agent, field("left", e.Left), field("right", e.Right))
}

// desugarIf rewrites the branches as thunks so only the taken one runs.
func desugarIf(e *ast.IfThenElse) *ast.AgentCall {
	return builtinCall(e, AgentIfThenElse,
		field("condition", e.Cond),
		field("then", thunk(e.Then)),
		field("else", thunk(e.Else)),
	)
}

func desugarTry(e *ast.TryCatch) *ast.AgentCall {
	return builtinCall(e, AgentTryCatch,
		field("try", thunk(e.Try)),
		field("catch", e.Catch),
	)
}

// throwError builds `throw({message, value})`.
func throwError(at ast.Node, message string, value ast.Expr) *ast.AgentCall {
	return builtinCall(at, AgentThrow,
		field("message", stringLit(message, at)),
		field("value", value),
	)
}

// destructure binds the names of p to parts of src in the current frame and
// returns the equality checks its literal sub-patterns require.
func (s *state) destructure(p ast.Pattern, src ast.Expr) ([]ast.Expr, error) {
	switch p := p.(type) {
	case *ast.IdentifierPattern:
		if err := s.declare(p.Name, binding{kind: bindNode, span: p.Span()}); err != nil {
			return nil, err
		}
		n, err := s.node(src)
		if err != nil {
			return nil, err
		}
		s.emit(p.Name, n)
		return nil, nil

	case *ast.LiteralPattern:
		check := builtinCall(p, AgentEq, field("left", src), field("right", p.Value))
		return []ast.Expr{check}, nil

	case *ast.ArrayPattern:
		id, err := s.share(src)
		if err != nil {
			return nil, err
		}
		var checks []ast.Expr
		for i, el := range p.Elements {
			at := &ast.ArrayAt{Base: ast.At(el.Span()), Array: id, Index: numberLit(i, el)}
			c, err := s.destructure(el, at)
			if err != nil {
				return nil, err
			}
			checks = append(checks, c...)
		}
		if p.Rest != nil {
			rest := builtinCall(p.Rest, AgentArraySlice,
				field("array", id),
				field("start", numberLit(len(p.Elements), p.Rest)),
			)
			if _, err := s.destructure(p.Rest, rest); err != nil {
				return nil, err
			}
		}
		return checks, nil

	case *ast.ObjectPattern:
		id, err := s.share(src)
		if err != nil {
			return nil, err
		}
		var checks []ast.Expr
		keys := &ast.ArrayLiteral{Base: ast.At(p.Span())}
		for _, f := range p.Fields {
			keys.Elements = append(keys.Elements, stringLit(f.Key, f))
			member := &ast.ObjectMember{Base: ast.At(f.Span()), Object: id, Key: f.Key}
			c, err := s.destructure(f.Value, member)
			if err != nil {
				return nil, err
			}
			checks = append(checks, c...)
		}
		if p.Rest != nil {
			rest := builtinCall(p.Rest, AgentObjectOmit,
				field("object", id),
				field("keys", keys),
			)
			if _, err := s.destructure(p.Rest, rest); err != nil {
				return nil, err
			}
		}
		return checks, nil
	}
	return nil, errors.NewCompileError(p.Span(), "Unsupported pattern")
}

// guard runs body only when every check holds and throws otherwise.
func guard(checks []ast.Expr, body ast.Expr, value ast.Expr) ast.Expr {
	cond := checks[0]
	for _, c := range checks[1:] {
		cond = &ast.BinaryExpr{Base: ast.At(c.Span()), Kind: ast.Logical, Op: "&&", Left: cond, Right: c}
	}
	return &ast.IfThenElse{
		Base: ast.At(body.Span()),
		Cond: cond,
		Then: body,
		Else: throwError(body, msgPatternMismatch, value),
	}
}

// match compiles `match v { p1 -> b1, ... }`. The value is evaluated once;
// each case is a lambda over its pattern returning {matched: true, result}
// with the body deferred in result, called under try/catch so a failed
// pattern yields {matched: false} and falls through to the next case.
func (s *state) match(e *ast.Match) (*graph.Node, error) {
	if len(e.Cases) == 0 {
		return nil, errors.NewCompileError(e.Span(), "match requires at least one case")
	}
	subject, err := s.share(e.Value)
	if err != nil {
		return nil, err
	}
	return s.node(s.cascade(e, subject, 0))
}

// cascade tries case i and falls through to the next one. The attempt
// yields {matched, result} where result is the body wrapped in a thunk: only
// the pattern runs under tryCatch, so a throw from a matched body propagates
// instead of being read as a mismatch.
func (s *state) cascade(e *ast.Match, subject *ast.Identifier, i int) ast.Expr {
	if i == len(e.Cases) {
		return throwError(e, msgNoMatch, subject)
	}

	c := e.Cases[i]
	at := ast.At(c.Span())
	attemptName := s.fresh()
	errName := s.fresh()

	matched := &ast.ObjectLiteral{Base: at, Fields: []*ast.ObjectField{
		field("matched", boolLit(true, c)),
		field("result", thunk(c.Body)),
	}}
	failed := &ast.ObjectLiteral{Base: at, Fields: []*ast.ObjectField{
		field("matched", boolLit(false, c)),
	}}
	attempt := &ast.TryCatch{
		Base: at,
		Try: &ast.AgentCall{
			Base:  at,
			Agent: &ast.AgentDef{Base: at, Param: c.Pattern, Body: matched, Generated: true},
			Arg:   subject,
		},
		Catch: &ast.AgentDef{
			Base:      at,
			Param:     &ast.IdentifierPattern{Base: at, Name: errName},
			Body:      failed,
			Generated: true,
		},
	}

	result := ident(attemptName, c)
	return &ast.NestedGraph{Base: at, Graph: &ast.Graph{
		Base: at,
		Statements: []ast.Stmt{
			&ast.ComputedNode{Base: at, Modifier: ast.Private, Name: attemptName, Body: attempt},
			&ast.ComputedNode{Base: at, Modifier: ast.Private, Body: &ast.IfThenElse{
				Base: at,
				Cond: &ast.ObjectMember{Base: at, Object: result, Key: "matched"},
				Then: &ast.AgentCall{
					Base:  at,
					Agent: &ast.ObjectMember{Base: at, Object: result, Key: "result"},
				},
				Else: s.cascade(e, subject, i+1),
			}},
		},
	}}
}
