package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/cli"
	"mercator-hq/flowc/pkg/flow"
	flowerrors "mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/flow/parser"
)

const (
	replHistoryFile = ".flowc_history"
	replSourcePath  = "memory://repl"
	promptMain      = "flow> "
	promptCont      = "....> "
)

const replHelp = `Enter definitions such as "x = 1;". Each accepted definition is added to
the session and the graph of the whole session is printed. An expression
without a trailing semicolon is compiled as the session result and then
discarded.

Commands:
  :help            show this help
  :show            print the session source
  :graph           print the session graph
  :format json|yaml
                   set the graph output format
  :load <file>     add the definitions of a file to the session
  :reset           clear the session
  :quit            exit`

var replFlags struct {
	format string
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Compile flow definitions interactively",
	Long: `Start an interactive session. Definitions are compiled together with every
definition accepted before them, so later inputs may reference earlier ones.
Input that ends in the middle of an expression continues on the next line.

History is kept in ~/` + replHistoryFile + `.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVarP(&replFlags.format, "format", "f", "", "graph format: json or yaml (default from config)")
}

// session holds the definitions accepted so far.
type session struct {
	app    *app
	defs   []string
	format string
	out    io.Writer
	errOut io.Writer
}

func newSession(a *app, format string, out, errOut io.Writer) *session {
	return &session{app: a, format: format, out: out, errOut: errOut}
}

func (s *session) source(input string) string {
	parts := append(append([]string{}, s.defs...), input)
	return strings.Join(parts, "\n")
}

// incomplete reports whether input only fails because it ends too early.
func (s *session) incomplete(input string) bool {
	p := parser.NewParser().WithMaxFileSize(s.app.cfg.Compiler.MaxFileSize)
	_, err := p.ParseBytes([]byte(s.source(input)), replSourcePath)
	var perr *flowerrors.ParserError
	return stderrors.As(err, &perr) && perr.Type == flowerrors.ErrorTypeSyntax && perr.Actual == "end of input"
}

// eval compiles input together with the session and keeps it on success.
func (s *session) eval(ctx context.Context, input string) bool {
	g, err := s.app.compiler.CompileBytes(ctx, []byte(s.source(input)), replSourcePath)
	if err != nil {
		_ = cli.WriteDiagnostics(s.errOut, cli.FormatText, flow.FormatErrors(err))
		return false
	}
	// A trailing result expression is shown but not kept, since only the
	// last statement of a graph may be its result.
	if strings.HasSuffix(strings.TrimSpace(input), ";") {
		s.defs = append(s.defs, input)
	}
	s.print(g)
	return true
}

func (s *session) print(g *graph.Graph) {
	if err := s.app.encode(s.out, g, s.format); err != nil {
		fmt.Fprintln(s.errOut, "Error:", err)
	}
}

// command runs a colon command and reports whether the session should end.
func (s *session) command(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":reset":
		s.defs = nil
		fmt.Fprintln(s.out, "Session cleared")
	case ":show":
		if len(s.defs) == 0 {
			fmt.Fprintln(s.out, "Session is empty")
			return false
		}
		fmt.Fprintln(s.out, strings.Join(s.defs, "\n"))
	case ":graph":
		if len(s.defs) == 0 {
			fmt.Fprintln(s.out, "Session is empty")
			return false
		}
		g, err := s.app.compiler.CompileBytes(ctx, []byte(strings.Join(s.defs, "\n")), replSourcePath)
		if err != nil {
			_ = cli.WriteDiagnostics(s.errOut, cli.FormatText, flow.FormatErrors(err))
			return false
		}
		s.print(g)
	case ":format":
		if len(fields) != 2 || (fields[1] != string(graph.FormatJSON) && fields[1] != string(graph.FormatYAML)) {
			fmt.Fprintln(s.errOut, "usage: :format json|yaml")
			return false
		}
		s.format = fields[1]
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(s.errOut, "usage: :load <file>")
			return false
		}
		data, err := os.ReadFile(fields[1])
		if err != nil {
			fmt.Fprintln(s.errOut, "Error:", err)
			return false
		}
		s.eval(ctx, strings.TrimRight(string(data), "\n"))
	default:
		fmt.Fprintf(s.errOut, "unknown command %s. Type :help for a list.\n", fields[0])
	}
	return false
}

// handle processes one complete input and reports whether to quit.
func (s *session) handle(ctx context.Context, input string) (quit bool) {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return false
	case strings.HasPrefix(trimmed, ":"):
		return s.command(ctx, trimmed)
	default:
		s.eval(ctx, input)
		return false
	}
}

// read collects one input, continuing while the parser runs out of text.
func (s *session) read(ln *liner.State) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		input := b.String()
		if strings.HasPrefix(strings.TrimSpace(input), ":") || strings.TrimSpace(input) == "" {
			return input, nil
		}
		if !s.incomplete(input) {
			return input, nil
		}
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := cli.SetupSignalHandler(a.context(cmd))
	defer stop()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if home, err := os.UserHomeDir(); err == nil {
		histPath := filepath.Join(home, replHistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	s := newSession(a, replFlags.format, cmd.OutOrStdout(), cmd.ErrOrStderr())
	fmt.Fprintf(cmd.OutOrStdout(), "flowc %s. Type :help for commands.\n", Version)

	for ctx.Err() == nil {
		input, err := s.read(ln)
		switch {
		case stderrors.Is(err, liner.ErrPromptAborted):
			continue
		case stderrors.Is(err, io.EOF):
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		case err != nil:
			return err
		}

		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
		if s.handle(ctx, input) {
			return nil
		}
	}
	return nil
}
