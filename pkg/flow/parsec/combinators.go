package parsec

import (
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/source"
)

// FlatMap runs p and then the parser chosen by f from p's result.
func FlatMap[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(s *State) (B, *errors.ParserError) {
		a, err := p(s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a)(s)
	}
}

// Map transforms the result of p.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(s *State) (B, *errors.ParserError) {
		a, err := p(s)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	}
}

// Then runs p then q, keeping q's result.
func Then[A, B any](p Parser[A], q Parser[B]) Parser[B] {
	return func(s *State) (B, *errors.ParserError) {
		if _, err := p(s); err != nil {
			var zero B
			return zero, err
		}
		return q(s)
	}
}

// Skip runs p then q, keeping p's result.
func Skip[A, B any](p Parser[A], q Parser[B]) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		a, err := p(s)
		if err != nil {
			return a, err
		}
		if _, err := q(s); err != nil {
			var zero A
			return zero, err
		}
		return a, nil
	}
}

// Between runs open, p and close, keeping p's result.
func Between[O, A, C any](open Parser[O], p Parser[A], close Parser[C]) Parser[A] {
	return Then(open, Skip(p, close))
}

// OrElse tries p and, if it fails without committing, q from the same position.
// When both fail the errors are merged.
func OrElse[A any](p, q Parser[A]) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		mark := s.Stream
		a, errA := p(s)
		if errA == nil || errA.Committed {
			return a, errA
		}
		s.Stream = mark
		b, errB := q(s)
		if errB == nil || errB.Committed {
			return b, errB
		}
		s.Stream = mark
		return b, errors.Merge(errA, errB)
	}
}

// Or tries each parser in order and returns the first success.
func Or[A any](ps ...Parser[A]) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		mark := s.Stream
		var merged *errors.ParserError
		for _, p := range ps {
			a, err := p(s)
			if err == nil || err.Committed {
				return a, err
			}
			merged = errors.Merge(merged, err)
			s.Stream = mark
		}
		var zero A
		return zero, merged
	}
}

// Optional runs p, succeeding with Ok=false if p fails without committing.
func Optional[A any](p Parser[A]) Parser[Option[A]] {
	return func(s *State) (Option[A], *errors.ParserError) {
		mark := s.Stream
		a, err := p(s)
		if err != nil {
			if err.Committed {
				return Option[A]{}, err
			}
			s.Stream = mark
			return Option[A]{}, nil
		}
		return Option[A]{Value: a, Ok: true}, nil
	}
}

// Many runs p zero or more times.
func Many[A any](p Parser[A]) Parser[[]A] {
	return func(s *State) ([]A, *errors.ParserError) {
		var out []A
		for {
			mark := s.Stream
			a, err := p(s)
			if err != nil {
				if err.Committed {
					return nil, err
				}
				s.Stream = mark
				return out, nil
			}
			out = append(out, a)
			if s.Stream.Pos.Index == mark.Pos.Index {
				// p succeeded without consuming input; stop instead of looping forever
				return out, nil
			}
		}
	}
}

// Many1 runs p one or more times.
func Many1[A any](p Parser[A]) Parser[[]A] {
	return FlatMap(p, func(first A) Parser[[]A] {
		return Map(Many(p), func(rest []A) []A {
			return append([]A{first}, rest...)
		})
	})
}

// Repeat runs a rune parser zero or more times and returns the runes as a string.
func Repeat(p Parser[rune]) Parser[string] {
	return Runes(Many(p))
}

// Repeat1 runs a rune parser one or more times and returns the runes as a string.
func Repeat1(p Parser[rune]) Parser[string] {
	return Runes(Many1(p))
}

// SepBy parses zero or more p separated by sep.
func SepBy[A, S any](p Parser[A], sep Parser[S]) Parser[[]A] {
	return func(s *State) ([]A, *errors.ParserError) {
		res, err := Optional(SepBy1(p, sep))(s)
		if err != nil {
			return nil, err
		}
		return res.Value, nil
	}
}

// SepBy1 parses one or more p separated by sep.
func SepBy1[A, S any](p Parser[A], sep Parser[S]) Parser[[]A] {
	return FlatMap(p, func(first A) Parser[[]A] {
		return Map(Many(Then(sep, p)), func(rest []A) []A {
			return append([]A{first}, rest...)
		})
	})
}

// StartBy parses zero or more p, each preceded by sep.
func StartBy[A, S any](p Parser[A], sep Parser[S]) Parser[[]A] {
	return Many(Then(sep, p))
}

// Range captures the span consumed by p.
func Range[A any](p Parser[A]) Parser[Ranged[A]] {
	return func(s *State) (Ranged[A], *errors.ParserError) {
		start := s.Stream
		a, err := p(s)
		if err != nil {
			return Ranged[A]{}, err
		}
		return Ranged[A]{Value: a, Span: s.SpanFrom(start)}, nil
	}
}

// MapWithRange transforms the result of p together with the span it consumed.
func MapWithRange[A, B any](p Parser[A], f func(A, source.Span) B) Parser[B] {
	return Map(Range(p), func(r Ranged[A]) B {
		return f(r.Value, r.Span)
	})
}

// NotFollowedBy succeeds without consuming input when p fails at the current
// position, and fails when p would succeed.
func NotFollowedBy[A any](p Parser[A], what string) Parser[struct{}] {
	return func(s *State) (struct{}, *errors.ParserError) {
		mark := s.Stream
		_, err := p(s)
		s.Stream = mark
		if err == nil {
			return struct{}{}, s.Record(&errors.ParserError{
				Type:     errors.ErrorTypeSyntax,
				Message:  "Unexpected " + what,
				Source:   mark.Source,
				Position: mark.Pos,
				End:      mark.Pos,
			})
		}
		return struct{}{}, nil
	}
}

// Tap runs f on p's result for side effects.
func Tap[A any](p Parser[A], f func(A)) Parser[A] {
	return Map(p, func(a A) A {
		f(a)
		return a
	})
}

// Cut commits p: any failure of p becomes committed.
func Cut[A any](p Parser[A]) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		a, err := p(s)
		if err != nil && !err.Committed {
			// Report the deepest failure inside p, not just the outermost one
			merged := errors.Merge(err, s.Best())
			cp := *merged
			cp.Committed = true
			return a, &cp
		}
		return a, err
	}
}

// Label replaces the expectations of p when p fails without consuming input.
func Label[A any](p Parser[A], expect string) Parser[A] {
	return func(s *State) (A, *errors.ParserError) {
		start := s.Stream
		prior := s.best
		a, err := p(s)
		if err != nil && !err.Committed && err.Position.Index == start.Pos.Index && err.Type == errors.ErrorTypeSyntax {
			if s.best == nil || s.best.Position.Index <= start.Pos.Index {
				s.best = prior
			}
			return a, s.Record(errors.NewUnexpected(start, expect))
		}
		return a, err
	}
}
