package parser

import (
	"fmt"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/parsec"
	"mercator-hq/flowc/pkg/flow/source"
)

// Operators per precedence level, longest first where one is a prefix of another.
var (
	pipelineOps = []opDef{
		{op: "|>"}, {op: "-->"}, {op: ">>="}, {op: ">>-"}, {op: "->>"}, {op: ">>"}, {op: ":>"},
	}
	logicalOps    = []opDef{{op: "&&"}, {op: "||"}}
	equalityOps   = []opDef{{op: "=="}, {op: "!="}}
	relationalOps = []opDef{{op: "<="}, {op: ">="}, {op: "<"}, {op: ">", notFollowed: []string{">"}}}
	plusMinusOps  = []opDef{{op: "+"}, {op: "-", notFollowed: []string{"->", ">"}}}
	mulDivModOps  = []opDef{{op: "*"}, {op: "/", notFollowed: []string{"/", "*"}}, {op: "%"}}
	powerOps      = []opDef{{op: "^"}}
)

// arrow is "->" but not the pipeline operator "->>".
var arrow = token(parsec.Skip(parsec.String("->"), parsec.NotFollowedBy(parsec.Char('>'), "'->>'")))

var powerOp = operator(powerOps...)

// grammar holds the parsers of one parse run. Parsers built with Lazy cache their
// target, so a grammar is not shared between goroutines.
type grammar struct {
	expr      parsec.Parser[ast.Expr]
	pipeline  parsec.Parser[ast.Expr]
	logical   parsec.Parser[ast.Expr]
	equality  parsec.Parser[ast.Expr]
	relation  parsec.Parser[ast.Expr]
	plusMinus parsec.Parser[ast.Expr]
	mulDivMod parsec.Parser[ast.Expr]
	atom      parsec.Parser[ast.Expr]
	literal   parsec.Parser[ast.Expr]
	pattern   parsec.Parser[ast.Pattern]
	statement parsec.Parser[ast.Stmt]
	program   parsec.Parser[*ast.Graph]
}

func newGrammar() *grammar {
	g := &grammar{}
	g.expr = parsec.Lazy(func() parsec.Parser[ast.Expr] { return g.pipeline })
	g.literal = literal(g.expr)

	// Precedence ladder, tightest last
	g.mulDivMod = g.binary(ast.MulDivMod, mulDivModOps, g.power)
	g.plusMinus = g.binary(ast.PlusMinus, plusMinusOps, g.mulDivMod)
	g.relation = g.binary(ast.Relational, relationalOps, g.plusMinus)
	g.equality = g.binary(ast.Equality, equalityOps, g.relation)
	g.logical = g.binary(ast.Logical, logicalOps, g.equality)
	g.pipeline = g.binary(ast.Pipeline, pipelineOps, g.logical)

	g.atom = token(parsec.Label(parsec.Or[ast.Expr](
		g.lambda,
		g.ifThenElse,
		g.tryCatch,
		g.match,
		g.literal,
		g.array,
		g.object,
		g.paren,
		g.nestedGraph,
		identifier,
	), "expression"))

	g.pattern = token(parsec.Label(parsec.Or[ast.Pattern](
		parsec.Map(constant, func(l *ast.Literal) ast.Pattern {
			return &ast.LiteralPattern{Base: l.Base, Value: l}
		}),
		parsec.Map[*ast.IdentifierPattern, ast.Pattern](g.identifierPattern, func(p *ast.IdentifierPattern) ast.Pattern { return p }),
		g.arrayPattern,
		g.objectPattern,
	), "pattern"))

	g.statement = token(parsec.Label[ast.Stmt](g.stmt, "statement"))
	g.program = parsec.Skip(parsec.Lazy(func() parsec.Parser[*ast.Graph] { return g.graph }), token(parsec.EOF()))
	return g
}

// begin skips leading whitespace and returns the stream where the construct starts.
func begin(s *parsec.State) (source.Stream, *errors.ParserError) {
	_, err := ws(s)
	return s.Stream, err
}

// attempt runs p and restores the stream if it fails without committing.
// ok reports whether p succeeded; err is set only for committed failures.
func attempt[A any](s *parsec.State, p parsec.Parser[A]) (a A, ok bool, err *errors.ParserError) {
	mark := s.Stream
	a, err = p(s)
	if err != nil {
		if err.Committed {
			return a, false, err
		}
		s.Stream = mark
		return a, false, nil
	}
	return a, true, nil
}

// commit marks err committed.
func commit(err *errors.ParserError) *errors.ParserError {
	if err == nil || err.Committed {
		return err
	}
	cp := *err
	cp.Committed = true
	return &cp
}

// binary builds a left-associative precedence level. Once an operator is
// consumed the right operand is committed, and both operands are checked
// against the literal types the level accepts.
func (g *grammar) binary(kind ast.BinaryKind, ops []opDef, operand parsec.Parser[ast.Expr]) parsec.Parser[ast.Expr] {
	opParser := operator(ops...)
	return func(s *parsec.State) (ast.Expr, *errors.ParserError) {
		start, err := begin(s)
		if err != nil {
			return nil, err
		}
		left, err := operand(s)
		if err != nil {
			return nil, err
		}
		for {
			op, ok, err := attempt(s, opParser)
			if err != nil {
				return nil, err
			}
			if !ok {
				return left, nil
			}
			right, err := parsec.Cut(operand)(s)
			if err != nil {
				return nil, err
			}
			if err := guardOperands(kind, op.Value, left, right); err != nil {
				return nil, s.Record(err)
			}
			left = &ast.BinaryExpr{
				Base:  ast.At(s.SpanFrom(start)),
				Kind:  kind,
				Op:    op.Value,
				Left:  left,
				Right: right,
			}
		}
	}
}

// power is right-associative: 2 ^ 3 ^ 2 == 2 ^ (3 ^ 2).
func (g *grammar) power(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	base, err := g.postfix(s)
	if err != nil {
		return nil, err
	}
	op, ok, err := attempt(s, powerOp)
	if err != nil || !ok {
		return base, err
	}
	exponent, err := parsec.Cut[ast.Expr](g.power)(s)
	if err != nil {
		return nil, err
	}
	if err := guardOperands(ast.Power, op.Value, base, exponent); err != nil {
		return nil, s.Record(err)
	}
	return &ast.BinaryExpr{
		Base:  ast.At(s.SpanFrom(start)),
		Kind:  ast.Power,
		Op:    op.Value,
		Left:  base,
		Right: exponent,
	}, nil
}

// postfix parses an atom followed by any chain of [index], .member and (args).
func (g *grammar) postfix(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	e, err := g.atom(s)
	if err != nil {
		return nil, err
	}
	for {
		if _, ok, err := attempt(s, symbol("[")); err != nil {
			return nil, err
		} else if ok {
			index, err := parsec.Cut(parsec.Skip(g.expr, symbol("]")))(s)
			if err != nil {
				return nil, err
			}
			e = &ast.ArrayAt{Base: ast.At(s.SpanFrom(start)), Array: e, Index: index}
			continue
		}

		if _, ok, err := attempt(s, symbol(".")); err != nil {
			return nil, err
		} else if ok {
			k, err := parsec.Cut(token(rawName))(s)
			if err != nil {
				return nil, err
			}
			e = &ast.ObjectMember{Base: ast.At(s.SpanFrom(start)), Object: e, Key: k}
			continue
		}

		if _, ok, err := attempt(s, symbol("(")); err != nil {
			return nil, err
		} else if ok {
			calls, err := parsec.Cut(g.callArgs(e, start))(s)
			if err != nil {
				return nil, err
			}
			e = calls
			continue
		}

		return e, nil
	}
}

// callArgs parses the rest of an argument list after "(" and curries the call:
// f(a, b) becomes f(a)(b).
func (g *grammar) callArgs(callee ast.Expr, start source.Stream) parsec.Parser[ast.Expr] {
	return func(s *parsec.State) (ast.Expr, *errors.ParserError) {
		if _, ok, err := attempt(s, symbol(")")); err != nil {
			return nil, err
		} else if ok {
			return &ast.AgentCall{Base: ast.At(s.SpanFrom(start)), Agent: callee}, nil
		}
		args, err := parsec.Skip(parsec.SepBy1(g.expr, symbol(",")), parsec.Optional(symbol(",")))(s)
		if err != nil {
			return nil, err
		}
		if _, err := symbol(")")(s); err != nil {
			return nil, err
		}
		span := s.SpanFrom(start)
		e := callee
		for _, arg := range args {
			e = &ast.AgentCall{Base: ast.At(span), Agent: e, Arg: arg}
		}
		return e, nil
	}
}

// lambda parses (p1, p2) -> body into nested single-parameter definitions.
func (g *grammar) lambda(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("(")(s); err != nil {
		return nil, err
	}
	params, err := parsec.Skip(parsec.SepBy(g.pattern, symbol(",")), parsec.Optional(symbol(",")))(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol(")")(s); err != nil {
		return nil, err
	}
	if _, err := arrow(s); err != nil {
		return nil, err
	}
	body, err := parsec.Cut(g.expr)(s)
	if err != nil {
		return nil, err
	}

	span := s.SpanFrom(start)
	if len(params) == 0 {
		return &ast.AgentDef{Base: ast.At(span), Body: body}, nil
	}
	def := body
	for i := len(params) - 1; i >= 0; i-- {
		inner := span
		if i > 0 {
			inner.Start = params[i].Span().Start
		}
		def = &ast.AgentDef{Base: ast.At(inner), Param: params[i], Body: def}
	}
	return def, nil
}

func (g *grammar) ifThenElse(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := keyword("if")(s); err != nil {
		return nil, err
	}
	var cond, then, els ast.Expr
	rest := func(s *parsec.State) (struct{}, *errors.ParserError) {
		var err *errors.ParserError
		if cond, err = g.expr(s); err != nil {
			return struct{}{}, err
		}
		if _, err = keyword("then")(s); err != nil {
			return struct{}{}, err
		}
		if then, err = g.expr(s); err != nil {
			return struct{}{}, err
		}
		if _, err = keyword("else")(s); err != nil {
			return struct{}{}, err
		}
		els, err = g.expr(s)
		return struct{}{}, err
	}
	if _, err := parsec.Cut[struct{}](rest)(s); err != nil {
		return nil, err
	}
	return &ast.IfThenElse{Base: ast.At(s.SpanFrom(start)), Cond: cond, Then: then, Else: els}, nil
}

// tryCatch parses try expr catch handler. "try" is not reserved, so the parser
// only commits once "catch" is seen.
func (g *grammar) tryCatch(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := keyword("try")(s); err != nil {
		return nil, err
	}
	body, err := g.expr(s)
	if err != nil {
		return nil, err
	}
	if _, err := keyword("catch")(s); err != nil {
		return nil, err
	}
	handler, err := parsec.Cut(g.expr)(s)
	if err != nil {
		return nil, err
	}
	return &ast.TryCatch{Base: ast.At(s.SpanFrom(start)), Try: body, Catch: handler}, nil
}

// match parses match value { pattern -> body, ... }, committing at "{".
func (g *grammar) match(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := keyword("match")(s); err != nil {
		return nil, err
	}
	value, err := g.expr(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("{")(s); err != nil {
		return nil, err
	}
	matchCase := func(s *parsec.State) (*ast.MatchCase, *errors.ParserError) {
		caseStart, err := begin(s)
		if err != nil {
			return nil, err
		}
		pat, err := g.pattern(s)
		if err != nil {
			return nil, err
		}
		if _, err := arrow(s); err != nil {
			return nil, err
		}
		body, err := g.expr(s)
		if err != nil {
			return nil, err
		}
		return &ast.MatchCase{Base: ast.At(s.SpanFrom(caseStart)), Pattern: pat, Body: body}, nil
	}
	cases, err := parsec.Cut(parsec.Skip(
		parsec.SepBy1(parsec.Parser[*ast.MatchCase](matchCase), symbol(",")),
		parsec.Then(parsec.Optional(symbol(",")), symbol("}")),
	))(s)
	if err != nil {
		return nil, err
	}
	return &ast.Match{Base: ast.At(s.SpanFrom(start)), Value: value, Cases: cases}, nil
}

func (g *grammar) array(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("[")(s); err != nil {
		return nil, err
	}
	elements, err := parsec.Cut(parsec.Skip(
		parsec.SepBy(g.expr, symbol(",")),
		parsec.Then(parsec.Optional(symbol(",")), symbol("]")),
	))(s)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Base: ast.At(s.SpanFrom(start)), Elements: elements}, nil
}

// object parses {k: v, ...}. It is tried before nested graphs and commits after
// the first "key:".
func (g *grammar) object(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("{")(s); err != nil {
		return nil, err
	}
	if _, ok, err := attempt(s, symbol("}")); err != nil {
		return nil, err
	} else if ok {
		return &ast.ObjectLiteral{Base: ast.At(s.SpanFrom(start))}, nil
	}

	colon := token(parsec.Skip(parsec.String(":"), parsec.NotFollowedBy(parsec.Char('>'), "':>'")))
	fieldKey := parsec.Skip(key, colon)
	field := func(k parsec.Ranged[string]) parsec.Parser[*ast.ObjectField] {
		return parsec.Map(g.expr, func(v ast.Expr) *ast.ObjectField {
			span := k.Span
			span.End = v.Span().End
			return &ast.ObjectField{Base: ast.At(span), Key: k.Value, Value: v}
		})
	}

	firstKey, err := fieldKey(s)
	if err != nil {
		return nil, err
	}
	rest := func(s *parsec.State) ([]*ast.ObjectField, *errors.ParserError) {
		first, err := field(firstKey)(s)
		if err != nil {
			return nil, err
		}
		more, err := parsec.Many(parsec.Then(symbol(","), parsec.FlatMap(fieldKey, field)))(s)
		if err != nil {
			return nil, err
		}
		if _, err := parsec.Then(parsec.Optional(symbol(",")), symbol("}"))(s); err != nil {
			return nil, err
		}
		return append([]*ast.ObjectField{first}, more...), nil
	}
	fields, err := parsec.Cut[[]*ast.ObjectField](rest)(s)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Key] {
			return nil, errors.NewInvalidSyntax(f.Span(), fmt.Sprintf("Duplicate key '%s' in object literal", f.Key))
		}
		seen[f.Key] = true
	}
	return &ast.ObjectLiteral{Base: ast.At(s.SpanFrom(start)), Fields: fields}, nil
}

func (g *grammar) paren(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("(")(s); err != nil {
		return nil, err
	}
	inner, err := parsec.Cut(parsec.Skip(g.expr, symbol(")")))(s)
	if err != nil {
		return nil, err
	}
	return &ast.Paren{Base: ast.At(s.SpanFrom(start)), Expr: inner}, nil
}

func (g *grammar) nestedGraph(s *parsec.State) (ast.Expr, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("{")(s); err != nil {
		return nil, err
	}
	body, err := parsec.Cut(parsec.Skip(g.graph, symbol("}")))(s)
	if err != nil {
		return nil, err
	}
	return &ast.NestedGraph{Base: ast.At(s.SpanFrom(start)), Graph: body}, nil
}

// graph parses a non-empty list of statements separated by ";". The ";" after
// the final statement is optional.
func (g *grammar) graph(s *parsec.State) (*ast.Graph, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	first, err := g.statement(s)
	if err != nil {
		return nil, err
	}
	stmts := []ast.Stmt{first}
	end := s.Stream
	for {
		if _, ok, err := attempt(s, symbol(";")); err != nil {
			return nil, err
		} else if !ok {
			break
		}
		end = s.Stream
		stmt, ok, err := attempt(s, g.statement)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		stmts = append(stmts, stmt)
		end = s.Stream
	}
	return &ast.Graph{Base: ast.At(start.SpanTo(end)), Statements: stmts}, nil
}

// stmt parses one statement with its annotations.
func (g *grammar) stmt(s *parsec.State) (ast.Stmt, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	anns, err := parsec.Many[*ast.Annotation](g.annotation)(s)
	if err != nil {
		return nil, err
	}

	if imp, ok, err := attempt[ast.Stmt](s, g.importStmt); err != nil {
		return nil, err
	} else if ok {
		if len(anns) > 0 {
			return nil, errors.NewInvalidSyntax(anns[0].Span(), "Annotations are not allowed on imports")
		}
		return imp, nil
	}

	// public/private are not reserved: retry without a modifier if the
	// statement does not parse with one.
	withModifier := parsec.FlatMap(
		parsec.Or(
			parsec.Map(keyword("public"), func(source.Span) ast.Modifier { return ast.Public }),
			parsec.Map(keyword("private"), func(source.Span) ast.Modifier { return ast.Private }),
		),
		func(m ast.Modifier) parsec.Parser[ast.Stmt] { return g.definition(start, m, anns) },
	)
	return parsec.OrElse(withModifier, g.definition(start, ast.Private, anns))(s)
}

// definition parses `static NAME = expr` or `[NAME =] expr`.
func (g *grammar) definition(start source.Stream, mod ast.Modifier, anns []*ast.Annotation) parsec.Parser[ast.Stmt] {
	return func(s *parsec.State) (ast.Stmt, *errors.ParserError) {
		if _, ok, err := attempt(s, keyword("static")); err != nil {
			return nil, err
		} else if ok {
			var n parsec.Ranged[string]
			var value ast.Expr
			rest := func(s *parsec.State) (struct{}, *errors.ParserError) {
				var err *errors.ParserError
				if n, err = name(s); err != nil {
					return struct{}{}, err
				}
				if _, err = symbol("=")(s); err != nil {
					return struct{}{}, err
				}
				value, err = g.expr(s)
				return struct{}{}, err
			}
			if _, err := parsec.Cut[struct{}](rest)(s); err != nil {
				return nil, err
			}
			return &ast.StaticNode{
				Base:        ast.At(s.SpanFrom(start)),
				Modifier:    mod,
				Name:        n.Value,
				Value:       value,
				Annotations: anns,
			}, nil
		}

		assign := parsec.Skip(name, token(parsec.Skip(parsec.String("="), parsec.NotFollowedBy(parsec.Char('='), "'=='"))))
		n, _, err := attempt(s, assign)
		if err != nil {
			return nil, err
		}
		body, err := g.expr(s)
		if err != nil {
			return nil, err
		}
		return &ast.ComputedNode{
			Base:        ast.At(s.SpanFrom(start)),
			Modifier:    mod,
			Name:        n.Value,
			Body:        body,
			Annotations: anns,
		}, nil
	}
}

// annotation parses @name(literal). @context is an identifier, not an annotation.
func (g *grammar) annotation(s *parsec.State) (*ast.Annotation, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if s.Stream.HasPrefix(ast.ContextName) {
		return nil, s.Fail("annotation")
	}
	if _, err := parsec.String("@")(s); err != nil {
		return nil, err
	}
	var n string
	var value *ast.Literal
	rest := func(s *parsec.State) (struct{}, *errors.ParserError) {
		var err *errors.ParserError
		if n, err = rawName(s); err != nil {
			return struct{}{}, err
		}
		if _, err = symbol("(")(s); err != nil {
			return struct{}{}, err
		}
		if value, err = constant(s); err != nil {
			return struct{}{}, err
		}
		_, err = symbol(")")(s)
		return struct{}{}, err
	}
	if _, err := parsec.Cut[struct{}](rest)(s); err != nil {
		return nil, err
	}
	return &ast.Annotation{Base: ast.At(s.SpanFrom(start)), Name: n, Value: value}, nil
}

// importStmt parses import "path" [as NAME] and import native "name" [as NAME].
func (g *grammar) importStmt(s *parsec.State) (ast.Stmt, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := keyword("import")(s); err != nil {
		return nil, err
	}
	native, err := parsec.Optional(keyword("native"))(s)
	if err != nil {
		return nil, err
	}
	path, err := plainString(s)
	if err != nil {
		return nil, err
	}
	alias, err := parsec.Cut(parsec.Optional(parsec.Then(keyword("as"), name)))(s)
	if err != nil {
		return nil, err
	}

	span := s.SpanFrom(start)
	p := path.Value.(string)
	if p == "" {
		return nil, errors.NewInvalidSyntax(path.Span(), "Import path cannot be empty")
	}
	if native.Ok {
		return &ast.NativeImport{Base: ast.At(span), Name: p, Alias: alias.Value.Value}, nil
	}
	return &ast.Import{Base: ast.At(span), Path: p, Alias: alias.Value.Value}, nil
}

func (g *grammar) identifierPattern(s *parsec.State) (*ast.IdentifierPattern, *errors.ParserError) {
	n, err := name(s)
	if err != nil {
		return nil, err
	}
	return &ast.IdentifierPattern{Base: ast.At(n.Span), Name: n.Value}, nil
}

// rest parses ...NAME inside array and object patterns.
func (g *grammar) rest(s *parsec.State) (*ast.IdentifierPattern, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := parsec.String("...")(s); err != nil {
		return nil, err
	}
	n, err := name(s)
	if err != nil {
		return nil, err
	}
	return &ast.IdentifierPattern{Base: ast.At(s.SpanFrom(start)), Name: n.Value}, nil
}

// arrayPattern parses [p1, p2, ...rest]. Patterns never commit, so a lambda
// parameter list can fall back to a parenthesized expression.
func (g *grammar) arrayPattern(s *parsec.State) (ast.Pattern, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("[")(s); err != nil {
		return nil, err
	}
	p := &ast.ArrayPattern{}
	for {
		if _, ok, err := attempt(s, symbol("]")); err != nil {
			return nil, err
		} else if ok {
			break
		}
		if r, ok, err := attempt[*ast.IdentifierPattern](s, g.rest); err != nil {
			return nil, err
		} else if ok {
			p.Rest = r
			if _, err := parsec.Then(parsec.Optional(symbol(",")), symbol("]"))(s); err != nil {
				return nil, err
			}
			break
		}
		el, err := g.pattern(s)
		if err != nil {
			return nil, err
		}
		p.Elements = append(p.Elements, el)
		if _, ok, err := attempt(s, symbol(",")); err != nil {
			return nil, err
		} else if !ok {
			if _, err := symbol("]")(s); err != nil {
				return nil, err
			}
			break
		}
	}
	p.Base = ast.At(s.SpanFrom(start))
	return p, nil
}

// objectPattern parses {a, b: pattern, ...rest}.
func (g *grammar) objectPattern(s *parsec.State) (ast.Pattern, *errors.ParserError) {
	start, err := begin(s)
	if err != nil {
		return nil, err
	}
	if _, err := symbol("{")(s); err != nil {
		return nil, err
	}
	p := &ast.ObjectPattern{}
	for {
		if _, ok, err := attempt(s, symbol("}")); err != nil {
			return nil, err
		} else if ok {
			break
		}
		if r, ok, err := attempt[*ast.IdentifierPattern](s, g.rest); err != nil {
			return nil, err
		} else if ok {
			p.Rest = r
			if _, err := parsec.Then(parsec.Optional(symbol(",")), symbol("}"))(s); err != nil {
				return nil, err
			}
			break
		}
		k, err := key(s)
		if err != nil {
			return nil, err
		}
		field := &ast.PatternField{Base: ast.At(k.Span), Key: k.Value}
		if _, ok, err := attempt(s, symbol(":")); err != nil {
			return nil, err
		} else if ok {
			if field.Value, err = g.pattern(s); err != nil {
				return nil, err
			}
			field.Context.End = field.Value.Span().End
		} else {
			if ReservedWords[k.Value] {
				return nil, s.Record(errors.NewUnexpected(s.Stream, "':'"))
			}
			field.Value = &ast.IdentifierPattern{Base: ast.At(k.Span), Name: k.Value}
		}
		p.Fields = append(p.Fields, field)
		if _, ok, err := attempt(s, symbol(",")); err != nil {
			return nil, err
		} else if !ok {
			if _, err := symbol("}")(s); err != nil {
				return nil, err
			}
			break
		}
	}
	p.Base = ast.At(s.SpanFrom(start))
	return p, nil
}

// guardOperands rejects literal operands that cannot appear at a precedence
// level, such as `true * 2` or `1 |> f`.
func guardOperands(kind ast.BinaryKind, op string, left, right ast.Expr) *errors.ParserError {
	if kind != ast.Pipeline {
		if err := guardOperand(kind, op, left); err != nil {
			return err
		}
	}
	return guardOperand(kind, op, right)
}

func guardOperand(kind ast.BinaryKind, op string, e ast.Expr) *errors.ParserError {
	var what string
	allowed := false
	switch n := ast.Unparen(e).(type) {
	case *ast.Literal:
		what = string(n.Kind) + " literal"
		switch kind {
		case ast.Logical:
			allowed = n.Kind == ast.LiteralBoolean
		case ast.Equality:
			allowed = true
		case ast.Relational:
			allowed = n.Kind == ast.LiteralNumber || n.Kind == ast.LiteralString
		case ast.PlusMinus:
			allowed = n.Kind == ast.LiteralNumber || (op == "+" && n.Kind == ast.LiteralString)
		case ast.MulDivMod, ast.Power:
			allowed = n.Kind == ast.LiteralNumber
		}
	case *ast.ArrayLiteral:
		what = "array literal"
		allowed = kind == ast.Equality
	case *ast.ObjectLiteral:
		what = "object literal"
		allowed = kind == ast.Equality
	case *ast.AgentDef:
		what = "lambda"
		allowed = kind == ast.Pipeline
	default:
		return nil
	}
	if allowed {
		return nil
	}
	return errors.NewInvalidSyntax(e.Span(), fmt.Sprintf("Invalid operand for '%s': %s", op, what))
}
