// Package parsec is a small generic parser-combinator library.
//
// A Parser[A] reads from a *State and either produces a value of type A or fails
// with a *errors.ParserError. Parsers are plain functions; the combinators in this
// package sequence, alternate, repeat and annotate them.
//
// # Backtracking
//
// A failing parser may leave the stream anywhere. Every combinator that can
// recover from a failure (OrElse, Optional, Many, NotFollowedBy, ...) saves the
// stream before trying and restores it afterwards, so a grammar never needs to
// rewind by hand.
//
// # Diagnostics
//
// The State remembers the furthest failure seen, even when an alternative later
// succeeds. Run merges that failure with the final one so the reported error
// points at the deepest point the input could be understood.
//
// # Cut
//
// Cut marks the failures of a parser committed. Committed failures are never
// recovered by alternation, optional or repetition, which stops the parser from
// retrying alternatives once a disambiguating token was seen and keeps the error
// message precise.
//
// Repetition is implemented with loops, so deeply repeated input does not grow
// the Go stack.
package parsec
