package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"mercator-hq/flowc/pkg/flow/source"
)

// Location is a 1-based row/column pair.
type Location struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// FormattedError is a display-ready diagnostic.
type FormattedError struct {
	Type       ErrorType `json:"type"`
	Path       string    `json:"path"`
	Start      Location  `json:"start"`
	End        Location  `json:"end"`
	Message    string    `json:"message"`
	Line       string    `json:"line"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Format converts any error returned by the parser or compiler into display-ready
// diagnostics. Unknown errors become a single system diagnostic without location.
func Format(err error) []FormattedError {
	if err == nil {
		return nil
	}

	var pe *ParserError
	if stderrors.As(err, &pe) {
		return []FormattedError{newFormatted(pe.Type, pe.Text(), pe.Span(), "")}
	}

	var ce *CompileError
	if stderrors.As(err, &ce) {
		out := make([]FormattedError, 0, len(ce.Items))
		for _, it := range ce.Items {
			out = append(out, newFormatted(ErrorTypeCompile, it.Message, it.Span, it.Suggestion))
		}
		return out
	}

	var se *SystemError
	if stderrors.As(err, &se) {
		fe := newFormatted(ErrorTypeSystem, se.Message, se.Span, "")
		if fe.Path == "" {
			fe.Path = se.Path
		}
		return []FormattedError{fe}
	}

	return []FormattedError{{Type: ErrorTypeSystem, Message: err.Error()}}
}

func newFormatted(errType ErrorType, message string, span source.Span, suggestion string) FormattedError {
	fe := FormattedError{
		Type:       errType,
		Message:    message,
		Suggestion: suggestion,
	}
	if span.IsValid() {
		fe.Path = span.Path()
		fe.Start = Location{Row: span.Start.Line(), Column: span.Start.Col()}
		fe.End = Location{Row: span.End.Line(), Column: span.End.Col()}
		fe.Line = span.Source.Line(span.Start.Row)
	}
	return fe
}

// String renders the diagnostic with the offending line and a caret underline.
func (fe FormattedError) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s\n", fe.Type, fe.Message))
	if fe.Path != "" {
		sb.WriteString(fmt.Sprintf("  --> %s:%d:%d-%d:%d\n", fe.Path,
			fe.Start.Row, fe.Start.Column, fe.End.Row, fe.End.Column))
	}
	if fe.Start.Row > 0 {
		width := len(fmt.Sprintf("%d", fe.Start.Row))
		gutter := strings.Repeat(" ", width)
		span := source.Span{
			Start: source.Position{Row: fe.Start.Row - 1, Column: fe.Start.Column - 1},
			End:   source.Position{Row: fe.End.Row - 1, Column: fe.End.Column - 1},
		}
		sb.WriteString(fmt.Sprintf(" %s |\n", gutter))
		sb.WriteString(fmt.Sprintf(" %d | %s\n", fe.Start.Row, fe.Line))
		sb.WriteString(fmt.Sprintf(" %s | %s\n", gutter, Underline(fe.Line, span)))
	}
	if fe.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", fe.Suggestion))
	}
	return sb.String()
}
