package source

import "unicode/utf8"

// Stream is an immutable cursor over a Source.
type Stream struct {
	Source *Source
	Pos    Position
}

// NewStream returns a stream positioned at the start of src.
func NewStream(src *Source) Stream {
	return Stream{Source: src}
}

// AtEnd reports whether the stream has no more input.
func (s Stream) AtEnd() bool {
	return s.Pos.Index >= len(s.Source.Text)
}

// Peek returns the current rune without advancing. ok is false at end of input.
func (s Stream) Peek() (r rune, ok bool) {
	if s.AtEnd() {
		return 0, false
	}
	r, _ = utf8.DecodeRuneInString(s.Source.Text[s.Pos.Index:])
	return r, true
}

// Next returns the current rune and the stream advanced past it, keeping
// row/column bookkeeping. ok is false at end of input.
func (s Stream) Next() (r rune, next Stream, ok bool) {
	if s.AtEnd() {
		return 0, s, false
	}
	r, size := utf8.DecodeRuneInString(s.Source.Text[s.Pos.Index:])
	next = s
	next.Pos.Index += size
	if r == '\n' {
		next.Pos.Row++
		next.Pos.Column = 0
	} else {
		next.Pos.Column++
	}
	return r, next, true
}

// HasPrefix reports whether the remaining input starts with prefix.
func (s Stream) HasPrefix(prefix string) bool {
	rest := s.Source.Text[s.Pos.Index:]
	return len(rest) >= len(prefix) && rest[:len(prefix)] == prefix
}

// SpanTo returns the span from s to end.
func (s Stream) SpanTo(end Stream) Span {
	return Span{Source: s.Source, Start: s.Pos, End: end.Pos}
}
