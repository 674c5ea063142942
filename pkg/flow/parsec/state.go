package parsec

import (
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/source"
)

// State is the mutable parsing state: the current stream and the furthest error
// seen so far.
type State struct {
	Stream source.Stream

	best *errors.ParserError
}

// NewState creates a state positioned at the start of src.
func NewState(src *source.Source) *State {
	return &State{Stream: source.NewStream(src)}
}

// Best returns the furthest failure recorded so far, or nil.
func (s *State) Best() *errors.ParserError {
	return s.best
}

// Record remembers err if it is at least as far as the best error seen. It returns
// err for convenient tail calls.
func (s *State) Record(err *errors.ParserError) *errors.ParserError {
	if err != nil {
		s.best = errors.Merge(s.best, uncommitted(err))
	}
	return err
}

// Fail records and returns an unexpected-input error at the current position.
func (s *State) Fail(expect ...string) *errors.ParserError {
	return s.Record(errors.NewUnexpected(s.Stream, expect...))
}

// SpanFrom returns the span from start to the current position.
func (s *State) SpanFrom(start source.Stream) source.Span {
	return start.SpanTo(s.Stream)
}

// uncommitted returns a copy of err without the committed flag, so best-error
// tracking compares by position only.
func uncommitted(err *errors.ParserError) *errors.ParserError {
	if !err.Committed {
		return err
	}
	cp := *err
	cp.Committed = false
	return &cp
}
