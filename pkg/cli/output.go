package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/flowc/pkg/flow/errors"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatYAML is YAML output.
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (valid: text, json, yaml)", s)
}

// Texter is implemented by results with a human-readable rendering.
type Texter interface {
	Text() string
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format. Texter values use their Text method.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	if t, ok := data.(Texter); ok {
		s := t.Text()
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		return []byte(s), nil
	}
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	out, _ := f.Format(data)
	_, err := w.Write(out)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// Format converts data to YAML format.
func (f *YAMLFormatter) Format(data interface{}) ([]byte, error) {
	return yaml.Marshal(data)
}

// FormatTo writes data to writer in YAML format.
func (f *YAMLFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// Report is the result of checking one or more files.
type Report struct {
	Files       []FileReport `json:"files" yaml:"files"`
	Passed      int          `json:"passed" yaml:"passed"`
	Failed      int          `json:"failed" yaml:"failed"`
	Diagnostics int          `json:"diagnostics" yaml:"diagnostics"`
}

// FileReport is the outcome for one file.
type FileReport struct {
	Path        string                  `json:"path" yaml:"path"`
	Status      string                  `json:"status" yaml:"status"`
	Nodes       int                     `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Diagnostics []errors.FormattedError `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Add records the outcome for one file.
func (r *Report) Add(fr FileReport) {
	r.Files = append(r.Files, fr)
	if len(fr.Diagnostics) == 0 {
		r.Passed++
		return
	}
	r.Failed++
	r.Diagnostics += len(fr.Diagnostics)
}

// Text renders diagnostics with source excerpts followed by a summary line.
func (r *Report) Text() string {
	var sb strings.Builder
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			sb.WriteString(d.String())
			sb.WriteString("\n\n")
		}
	}
	fmt.Fprintf(&sb, "%d file(s) checked: %d passed, %d failed", len(r.Files), r.Passed, r.Failed)
	if r.Diagnostics > 0 {
		fmt.Fprintf(&sb, " (%d diagnostic(s))", r.Diagnostics)
	}
	return sb.String()
}

// WriteDiagnostics prints diagnostics in the chosen format.
func WriteDiagnostics(w io.Writer, format OutputFormat, diags []errors.FormattedError) error {
	if format != FormatText {
		return NewFormatter(format).FormatTo(w, diags)
	}
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}
