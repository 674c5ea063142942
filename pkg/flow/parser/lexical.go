package parser

import (
	"strconv"
	"strings"
	"unicode"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/parsec"
	"mercator-hq/flowc/pkg/flow/source"
)

// ReservedWords cannot be used as identifiers.
var ReservedWords = map[string]bool{
	"static": true,
	"if":     true,
	"then":   true,
	"else":   true,
	"true":   true,
	"false":  true,
	"null":   true,
}

// ConcatAgent is the built-in agent interpolated strings desugar to.
const ConcatAgent = "concatString"

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ws skips whitespace, `// line` comments and `/* block */` comments.
var ws parsec.Parser[struct{}] = func(s *parsec.State) (struct{}, *errors.ParserError) {
	for {
		r, ok := s.Stream.Peek()
		if !ok {
			return struct{}{}, nil
		}
		switch {
		case unicode.IsSpace(r):
			_, s.Stream, _ = s.Stream.Next()
		case s.Stream.HasPrefix("//"):
			for {
				r, next, ok := s.Stream.Next()
				if !ok || r == '\n' {
					s.Stream = next
					break
				}
				s.Stream = next
			}
		case s.Stream.HasPrefix("/*"):
			start := s.Stream
			advance(s, 2)
			for !s.Stream.HasPrefix("*/") {
				_, next, ok := s.Stream.Next()
				if !ok {
					return struct{}{}, errors.NewInvalidSyntax(start.SpanTo(s.Stream), "Unterminated block comment")
				}
				s.Stream = next
			}
			advance(s, 2)
		default:
			return struct{}{}, nil
		}
	}
}

func advance(s *parsec.State, n int) {
	for i := 0; i < n; i++ {
		_, s.Stream, _ = s.Stream.Next()
	}
}

// token skips leading whitespace before p, so spans never include it.
func token[A any](p parsec.Parser[A]) parsec.Parser[A] {
	return parsec.Then(ws, p)
}

// symbol matches literal punctuation and returns its span.
func symbol(text string) parsec.Parser[source.Span] {
	return token(parsec.Map(parsec.Range(parsec.String(text)), func(r parsec.Ranged[string]) source.Span {
		return r.Span
	}))
}

// keyword matches a word that is not immediately followed by an identifier
// character.
func keyword(word string) parsec.Parser[source.Span] {
	p := parsec.Skip(parsec.String(word), parsec.NotFollowedBy(parsec.Satisfy(isIdentChar, "identifier character"), "identifier character after '"+word+"'"))
	return token(parsec.Map(parsec.Range(p), func(r parsec.Ranged[string]) source.Span {
		return r.Span
	}))
}

// opDef is an operator and the texts that must not directly follow it.
type opDef struct {
	op          string
	notFollowed []string
}

// operator matches one of the operators, longest listed first.
func operator(defs ...opDef) parsec.Parser[parsec.Ranged[string]] {
	alts := make([]parsec.Parser[string], 0, len(defs))
	for _, d := range defs {
		p := parsec.String(d.op)
		for _, nf := range d.notFollowed {
			p = parsec.Skip(p, parsec.NotFollowedBy(parsec.String(nf), "'"+d.op+nf+"'"))
		}
		alts = append(alts, p)
	}
	return token(parsec.Range(parsec.Or(alts...)))
}

// rawName reads [A-Za-z_][A-Za-z0-9_]* without checking reserved words.
var rawName parsec.Parser[string] = func(s *parsec.State) (string, *errors.ParserError) {
	start := s.Stream
	r, next, ok := s.Stream.Next()
	if !ok || !isIdentStart(r) {
		return "", s.Fail("identifier")
	}
	s.Stream = next
	for {
		r, next, ok := s.Stream.Next()
		if !ok || !isIdentChar(r) {
			break
		}
		s.Stream = next
	}
	return start.SpanTo(s.Stream).Text(), nil
}

// name reads an identifier that is not a reserved word.
var name parsec.Parser[parsec.Ranged[string]] = func(s *parsec.State) (parsec.Ranged[string], *errors.ParserError) {
	if _, err := ws(s); err != nil {
		return parsec.Ranged[string]{}, err
	}
	start := s.Stream
	n, err := rawName(s)
	if err != nil {
		return parsec.Ranged[string]{}, err
	}
	if ReservedWords[n] {
		s.Stream = start
		e := errors.NewUnexpected(start, "identifier")
		e.Actual = "reserved word '" + n + "'"
		return parsec.Ranged[string]{}, s.Record(e)
	}
	return parsec.Ranged[string]{Value: n, Span: s.SpanFrom(start)}, nil
}

// key reads an object key: any identifier-like word or a plain string.
var key parsec.Parser[parsec.Ranged[string]] = func(s *parsec.State) (parsec.Ranged[string], *errors.ParserError) {
	if _, err := ws(s); err != nil {
		return parsec.Ranged[string]{}, err
	}
	start := s.Stream
	if n, err := rawName(s); err == nil {
		return parsec.Ranged[string]{Value: n, Span: s.SpanFrom(start)}, nil
	}
	s.Stream = start
	lit, err := plainString(s)
	if err != nil {
		if err.Committed {
			return parsec.Ranged[string]{}, err
		}
		return parsec.Ranged[string]{}, s.Record(errors.NewUnexpected(start, "key"))
	}
	return parsec.Ranged[string]{Value: lit.Value.(string), Span: lit.Span()}, nil
}

// identifier parses a name reference, including the special @context.
var identifier parsec.Parser[ast.Expr] = func(s *parsec.State) (ast.Expr, *errors.ParserError) {
	if _, err := ws(s); err != nil {
		return nil, err
	}
	start := s.Stream
	if s.Stream.HasPrefix(ast.ContextName) {
		advance(s, len(ast.ContextName))
		if r, ok := s.Stream.Peek(); !ok || !isIdentChar(r) {
			return &ast.Identifier{Base: ast.At(s.SpanFrom(start)), Name: ast.ContextName}, nil
		}
		s.Stream = start
	}
	n, err := name(s)
	if err != nil {
		return nil, err
	}
	return &ast.Identifier{Base: ast.At(n.Span), Name: n.Value}, nil
}

// number parses -?digits(.digits)?([eE][+-]?digits)?
var number parsec.Parser[*ast.Literal] = func(s *parsec.State) (*ast.Literal, *errors.ParserError) {
	if _, err := ws(s); err != nil {
		return nil, err
	}
	start := s.Stream
	st := s.Stream
	if st.HasPrefix("-") {
		_, st, _ = st.Next()
	}
	st, n := digits(st)
	if n == 0 {
		return nil, s.Fail("number")
	}
	if st.HasPrefix(".") {
		_, frac, _ := st.Next()
		if frac, n := digits(frac); n > 0 {
			st = frac
		}
	}
	if r, ok := st.Peek(); ok && (r == 'e' || r == 'E') {
		_, exp, _ := st.Next()
		if exp.HasPrefix("+") || exp.HasPrefix("-") {
			_, exp, _ = exp.Next()
		}
		if exp, n := digits(exp); n > 0 {
			st = exp
		}
	}
	s.Stream = st
	span := s.SpanFrom(start)
	v, err := strconv.ParseFloat(span.Text(), 64)
	if err != nil {
		return nil, errors.NewInvalidSyntax(span, "Invalid number "+span.Text())
	}
	return &ast.Literal{Base: ast.At(span), Kind: ast.LiteralNumber, Value: v}, nil
}

func digits(st source.Stream) (source.Stream, int) {
	n := 0
	for {
		r, next, ok := st.Next()
		if !ok || !isDigit(r) {
			return st, n
		}
		st = next
		n++
	}
}

// stringLiteral returns a parser for "..." and '...' strings with escapes and
// ${expr} interpolation. A string with at most one literal segment is a plain
// Literal; anything else desugars to concatString([segments...]). A nil expr
// disallows interpolation with an uncommitted error, so callers can backtrack.
func stringLiteral(expr parsec.Parser[ast.Expr]) parsec.Parser[ast.Expr] {
	return func(s *parsec.State) (ast.Expr, *errors.ParserError) {
		if _, err := ws(s); err != nil {
			return nil, err
		}
		start := s.Stream
		quote, next, ok := s.Stream.Next()
		if !ok || (quote != '"' && quote != '\'') {
			return nil, s.Fail("string")
		}
		s.Stream = next

		var segments []ast.Expr
		var buf strings.Builder
		bufStart := s.Stream
		write := func(r rune) {
			if buf.Len() == 0 {
				bufStart = s.Stream
			}
			buf.WriteRune(r)
		}
		flush := func(end source.Stream) {
			if buf.Len() > 0 {
				segments = append(segments, &ast.Literal{
					Base:  ast.At(bufStart.SpanTo(end)),
					Kind:  ast.LiteralString,
					Value: buf.String(),
				})
				buf.Reset()
			}
		}
		unterminated := func() *errors.ParserError {
			return errors.NewInvalidSyntax(start.SpanTo(s.Stream), "Unterminated string literal")
		}

		for {
			r, next, ok := s.Stream.Next()
			if !ok {
				return nil, unterminated()
			}
			switch {
			case r == quote:
				flush(s.Stream)
				s.Stream = next
				return collapse(segments, s.SpanFrom(start)), nil
			case r == '\\':
				esc, after, ok := next.Next()
				if !ok {
					s.Stream = next
					return nil, unterminated()
				}
				write(unescape(esc))
				s.Stream = after
			case r == '$' && next.HasPrefix("{"):
				if expr == nil {
					return nil, s.Record(&errors.ParserError{
						Type:     errors.ErrorTypeInvalidSyntax,
						Message:  "String interpolation is not allowed here",
						Source:   s.Stream.Source,
						Position: s.Stream.Pos,
						End:      s.Stream.Pos,
					})
				}
				flush(s.Stream)
				s.Stream = next
				advance(s, 1)
				e, err := parsec.Cut(expr)(s)
				if err != nil {
					return nil, err
				}
				if _, err := parsec.Cut(symbol("}"))(s); err != nil {
					return nil, err
				}
				segments = append(segments, e)
			default:
				write(r)
				s.Stream = next
			}
		}
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	// \\ \" \' \$ and unknown escapes stand for the character itself
	return r
}

func collapse(segments []ast.Expr, span source.Span) ast.Expr {
	switch len(segments) {
	case 0:
		return &ast.Literal{Base: ast.At(span), Kind: ast.LiteralString, Value: ""}
	case 1:
		if lit, ok := segments[0].(*ast.Literal); ok {
			return &ast.Literal{Base: ast.At(span), Kind: ast.LiteralString, Value: lit.Value}
		}
	}
	return &ast.AgentCall{
		Base:  ast.At(span),
		Agent: &ast.Identifier{Base: ast.At(span), Name: ConcatAgent, Builtin: true},
		Arg:   &ast.ArrayLiteral{Base: ast.At(span), Elements: segments},
	}
}

// plainString parses a string literal without interpolation.
var plainString parsec.Parser[*ast.Literal] = func(s *parsec.State) (*ast.Literal, *errors.ParserError) {
	e, err := stringLiteral(nil)(s)
	if err != nil {
		return nil, err
	}
	return e.(*ast.Literal), nil
}

// literal parses number, string, boolean and null literals. Strings may
// interpolate expressions parsed by expr.
func literal(expr parsec.Parser[ast.Expr]) parsec.Parser[ast.Expr] {
	keywordLiteral := func(word string, kind ast.LiteralKind, value any) parsec.Parser[ast.Expr] {
		return parsec.Map(keyword(word), func(span source.Span) ast.Expr {
			return &ast.Literal{Base: ast.At(span), Kind: kind, Value: value}
		})
	}
	return parsec.Or(
		parsec.Map(number, func(l *ast.Literal) ast.Expr { return l }),
		stringLiteral(expr),
		keywordLiteral("true", ast.LiteralBoolean, true),
		keywordLiteral("false", ast.LiteralBoolean, false),
		keywordLiteral("null", ast.LiteralNull, nil),
	)
}

// constant parses a literal without interpolation, as used by patterns and
// annotations.
var constant parsec.Parser[*ast.Literal] = parsec.Map(literal(nil), func(e ast.Expr) *ast.Literal {
	return e.(*ast.Literal)
})
