package errors

import (
	"fmt"
	"strings"

	"mercator-hq/flowc/pkg/flow/source"
)

// ExtractContext renders the source lines around span with the span's columns
// underlined by carets on the first line of the span.
func ExtractContext(span source.Span, contextLines int) string {
	if !span.IsValid() {
		return ""
	}

	lines := strings.Split(span.Source.Text, "\n")
	errorLine := span.Start.Row
	if errorLine >= len(lines) {
		return ""
	}

	startLine := errorLine - contextLines
	endLine := errorLine + contextLines
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))
	gutter := strings.Repeat(" ", width)

	sb.WriteString(fmt.Sprintf(" %s |\n", gutter))
	for i := startLine; i <= endLine; i++ {
		text := strings.TrimSuffix(lines[i], "\r")
		sb.WriteString(fmt.Sprintf(" %*d | %s\n", width, i+1, text))

		if i == errorLine {
			sb.WriteString(fmt.Sprintf(" %s | %s\n", gutter, Underline(text, span)))
		}
	}

	return sb.String()
}

// Underline returns the caret marker for span on the given line text. Tabs before
// the span are preserved so the carets line up in terminals. Spans that continue
// past the line are underlined to the end of the line; at least one caret is drawn.
func Underline(line string, span source.Span) string {
	runes := []rune(line)
	start := span.Start.Column
	if start > len(runes) {
		start = len(runes)
	}
	end := span.End.Column
	if span.End.Row > span.Start.Row {
		end = len(runes)
	}
	width := end - start
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	for _, r := range runes[:start] {
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
	}
	sb.WriteString(strings.Repeat("^", width))
	return sb.String()
}
