package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"mercator-hq/flowc/pkg/flow/source"
)

// ErrorType categorizes a diagnostic.
type ErrorType string

const (
	ErrorTypeSyntax         ErrorType = "syntax"          // Unexpected input
	ErrorTypeInvalidSyntax  ErrorType = "invalid_syntax"  // Well-formed tokens in an invalid shape
	ErrorTypeNotImplemented ErrorType = "not_implemented" // Recognized but unsupported construct
	ErrorTypeCompile        ErrorType = "compile"         // Semantic error
	ErrorTypeSystem         ErrorType = "system"          // I/O error
)

// Sentinels for errors.Is checks across the three error families.
var (
	ErrParse   = stderrors.New("parse error")
	ErrCompile = stderrors.New("compile error")
	ErrSystem  = stderrors.New("system error")
)

// ParserError is a syntax error anchored to a position in a source.
type ParserError struct {
	Type     ErrorType
	Expect   []string // Expected tokens (Unexpected errors)
	Actual   string   // What was found instead
	Message  string   // Free-form message (InvalidSyntax, NotImplemented)
	Source   *source.Source
	Position source.Position
	End      source.Position // Exclusive end; equals Position for point errors

	// Committed errors are never recovered by alternation, optional or repetition.
	Committed bool
}

// NewUnexpected creates an unexpected-input error at the stream position.
func NewUnexpected(s source.Stream, expect ...string) *ParserError {
	return &ParserError{
		Type:     ErrorTypeSyntax,
		Expect:   expect,
		Actual:   describeActual(s),
		Source:   s.Source,
		Position: s.Pos,
		End:      s.Pos,
	}
}

// NewInvalidSyntax creates a committed invalid-syntax error covering span.
func NewInvalidSyntax(span source.Span, message string) *ParserError {
	return &ParserError{
		Type:      ErrorTypeInvalidSyntax,
		Message:   message,
		Source:    span.Source,
		Position:  span.Start,
		End:       span.End,
		Committed: true,
	}
}

// NewNotImplemented creates a committed error for recognized but unsupported syntax.
func NewNotImplemented(span source.Span, what string) *ParserError {
	return &ParserError{
		Type:      ErrorTypeNotImplemented,
		Message:   fmt.Sprintf("%s is not implemented", what),
		Source:    span.Source,
		Position:  span.Start,
		End:       span.End,
		Committed: true,
	}
}

// Text returns the diagnostic message without location.
func (e *ParserError) Text() string {
	if e.Type != ErrorTypeSyntax {
		return e.Message
	}
	if e.Message != "" {
		return e.Message
	}
	switch len(e.Expect) {
	case 0:
		return fmt.Sprintf("Unexpected %s", e.Actual)
	case 1:
		return fmt.Sprintf("Expected %s but got %s", e.Expect[0], e.Actual)
	default:
		return fmt.Sprintf("Expected one of %s but got %s", strings.Join(e.Expect, ", "), e.Actual)
	}
}

// Span returns the source range of the error.
func (e *ParserError) Span() source.Span {
	return source.Span{Source: e.Source, Start: e.Position, End: e.End}
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	return render(e.Type, e.Text(), e.Span(), "")
}

// Is reports ErrParse.
func (e *ParserError) Is(target error) bool {
	return target == ErrParse
}

// Merge combines two failures of alternative parsers. Errors at the same position
// union their expectations; otherwise the error that got further wins. Committed
// errors always win over uncommitted ones.
func Merge(a, b *ParserError) *ParserError {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Committed != b.Committed:
		if a.Committed {
			return a
		}
		return b
	case a.Position.Index > b.Position.Index:
		return a
	case b.Position.Index > a.Position.Index:
		return b
	case a.Type != ErrorTypeSyntax:
		return a
	case b.Type != ErrorTypeSyntax:
		return b
	}

	merged := *a
	merged.Expect = unionSorted(a.Expect, b.Expect)
	return &merged
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

func describeActual(s source.Stream) string {
	r, ok := s.Peek()
	if !ok {
		return "end of input"
	}
	switch r {
	case '\n':
		return "newline"
	case '\t':
		return "tab"
	}
	return fmt.Sprintf("'%c'", r)
}

// Item is a single compile diagnostic.
type Item struct {
	Message    string
	Span       source.Span
	Suggestion string // Suggested fix (optional)
}

// CompileError is a batch of semantic diagnostics.
type CompileError struct {
	Items []*Item
}

// NewCompileError creates a single-item compile error.
func NewCompileError(span source.Span, format string, args ...any) *CompileError {
	return &CompileError{Items: []*Item{{Message: fmt.Sprintf(format, args...), Span: span}}}
}

// Add appends an item.
func (e *CompileError) Add(item *Item) {
	e.Items = append(e.Items, item)
}

// AddError creates and appends an item.
func (e *CompileError) AddError(span source.Span, message string) {
	e.Add(&Item{Message: message, Span: span})
}

// HasErrors reports whether any item was recorded.
func (e *CompileError) HasErrors() bool {
	return e != nil && len(e.Items) > 0
}

// ToError returns nil for an empty batch, otherwise the batch itself.
func (e *CompileError) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if !e.HasErrors() {
		return ""
	}
	if len(e.Items) == 1 {
		it := e.Items[0]
		return render(ErrorTypeCompile, it.Message, it.Span, it.Suggestion)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", len(e.Items)))
	for i, it := range e.Items {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(render(ErrorTypeCompile, it.Message, it.Span, it.Suggestion))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Is reports ErrCompile.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

// SystemError wraps an I/O failure.
type SystemError struct {
	Message string
	Path    string
	Span    source.Span // Import statement that triggered the failure, if any
	Err     error
}

// NewSystemError creates a SystemError.
func NewSystemError(path string, span source.Span, err error) *SystemError {
	return &SystemError{
		Message: fmt.Sprintf("Failed to access %s: %v", path, err),
		Path:    path,
		Span:    span,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *SystemError) Error() string {
	return render(ErrorTypeSystem, e.Message, e.Span, "")
}

// Unwrap returns the underlying error.
func (e *SystemError) Unwrap() error {
	return e.Err
}

// Is reports ErrSystem.
func (e *SystemError) Is(target error) bool {
	return target == ErrSystem
}

// render formats a diagnostic as header, location and source snippet.
func render(errType ErrorType, message string, span source.Span, suggestion string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s\n", errType, message))
	if span.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", formatRange(span)))
		if snippet := ExtractContext(span, 0); snippet != "" {
			sb.WriteString(snippet)
		}
	}
	if suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", suggestion))
	}
	return sb.String()
}

func formatRange(span source.Span) string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", span.Path(),
		span.Start.Line(), span.Start.Col(), span.End.Line(), span.End.Col())
}
