package parsec

import (
	"strings"

	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/source"
)

// Parser reads a value of type A from the state.
type Parser[A any] func(*State) (A, *errors.ParserError)

// Option is the result of Optional.
type Option[A any] struct {
	Value A
	Ok    bool
}

// Ranged pairs a parsed value with the span it was parsed from.
type Ranged[A any] struct {
	Value A
	Span  source.Span
}

// Run parses src with p. On failure it reports the furthest error seen during
// the whole parse, merged with the final failure.
func Run[A any](p Parser[A], src *source.Source) (A, *errors.ParserError) {
	st := NewState(src)
	v, err := p(st)
	if err != nil {
		if err.Committed {
			return v, err
		}
		return v, errors.Merge(err, st.Best())
	}
	return v, nil
}

// Of succeeds with a without consuming input.
func Of[A any](a A) Parser[A] {
	return func(*State) (A, *errors.ParserError) {
		return a, nil
	}
}

// Fail always fails, expecting the given descriptions.
func Fail[A any](expect ...string) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		var zero A
		return zero, s.Fail(expect...)
	}
}

// FailWith fails with the error built from the current stream.
func FailWith[A any](build func(source.Stream) *errors.ParserError) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		var zero A
		return zero, s.Record(build(s.Stream))
	}
}

// Satisfy consumes one rune matching pred.
func Satisfy(pred func(rune) bool, expect string) Parser[rune] {
	return func(s *State) (rune, *errors.ParserError) {
		r, next, ok := s.Stream.Next()
		if !ok || !pred(r) {
			return 0, s.Fail(expect)
		}
		s.Stream = next
		return r, nil
	}
}

// Char consumes the rune c.
func Char(c rune) Parser[rune] {
	return Satisfy(func(r rune) bool { return r == c }, "'"+string(c)+"'")
}

// AnyChar consumes any rune.
func AnyChar() Parser[rune] {
	return Satisfy(func(rune) bool { return true }, "any character")
}

// String consumes the literal text lit.
func String(lit string) Parser[string] {
	expect := "'" + lit + "'"
	return func(s *State) (string, *errors.ParserError) {
		if !s.Stream.HasPrefix(lit) {
			return "", s.Fail(expect)
		}
		for range lit {
			_, s.Stream, _ = s.Stream.Next()
		}
		return lit, nil
	}
}

// EOF succeeds only at the end of input.
func EOF() Parser[struct{}] {
	return func(s *State) (struct{}, *errors.ParserError) {
		if !s.Stream.AtEnd() {
			return struct{}{}, s.Fail("end of input")
		}
		return struct{}{}, nil
	}
}

// Lazy defers construction of a parser, for recursive grammars.
func Lazy[A any](f func() Parser[A]) Parser[A] {
	var p Parser[A]
	return func(s *State) (A, *errors.ParserError) {
		if p == nil {
			p = f()
		}
		return p(s)
	}
}

// Runes collects runes into a string.
func Runes(p Parser[[]rune]) Parser[string] {
	return Map(p, func(rs []rune) string {
		var sb strings.Builder
		for _, r := range rs {
			sb.WriteRune(r)
		}
		return sb.String()
	})
}
