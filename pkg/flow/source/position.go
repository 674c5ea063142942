package source

import (
	"fmt"
	"strings"
)

// Position is a location in a source text. All fields are 0-based; use Line and
// Col for the 1-based values shown to users.
type Position struct {
	Index  int // Byte offset into the text
	Row    int // Line number (0-based)
	Column int // Column number in runes (0-based)
}

// Line returns the 1-based line number.
func (p Position) Line() int {
	return p.Row + 1
}

// Col returns the 1-based column number.
func (p Position) Col() int {
	return p.Column + 1
}

// String returns "line:column" (1-based).
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line(), p.Col())
}

// Source is a named source text. Path may be a filesystem path or a pseudo path
// such as "memory://repl".
type Source struct {
	Path string
	Text string
}

// New creates a Source.
func New(path, text string) *Source {
	return &Source{Path: path, Text: text}
}

// Line returns the text of the 0-based row without its trailing newline.
// It returns "" when row is out of range.
func (s *Source) Line(row int) string {
	if s == nil || row < 0 {
		return ""
	}
	lines := strings.Split(s.Text, "\n")
	if row >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[row], "\r")
}

// Span is the source range an AST node or diagnostic refers to. End is exclusive.
type Span struct {
	Source *Source
	Start  Position
	End    Position
}

// Path returns the source path, or "" for spans without a source.
func (s Span) Path() string {
	if s.Source == nil {
		return ""
	}
	return s.Source.Path
}

// Text returns the source text covered by the span.
func (s Span) Text() string {
	if s.Source == nil || s.Start.Index > s.End.Index || s.End.Index > len(s.Source.Text) {
		return ""
	}
	return s.Source.Text[s.Start.Index:s.End.Index]
}

// IsValid reports whether the span is anchored to a source.
func (s Span) IsValid() bool {
	return s.Source != nil
}

// String returns "path:line:column".
func (s Span) String() string {
	if s.Source == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%s", s.Source.Path, s.Start)
}
