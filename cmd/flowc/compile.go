package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/cli"
	"mercator-hq/flowc/pkg/flow"
	"mercator-hq/flowc/pkg/store"
)

// stdinPath names source read from standard input.
const stdinPath = "memory://stdin"

var compileFlags struct {
	out      string
	outDir   string
	write    bool
	format   string
	progress bool
}

var compileCmd = &cobra.Command{
	Use:   "compile [file|dir|-]...",
	Short: "Compile flow files to graph JSON",
	Long: `Compile flow source files into graphs.

A single input is written to stdout unless --out, --out-dir or --write is
given. With several inputs, or a directory, each graph is written next to its
source (or into --out-dir) with a .json or .yaml extension. "-" reads source
from standard input.

Diagnostics go to stderr; the exit status is 1 when any file fails.

Examples:
  # Print the graph for one file
  flowc compile main.flow

  # Write main.yaml next to main.flow
  flowc compile main.flow --write --format yaml

  # Compile a directory into build/
  flowc compile flows/ --out-dir build/ --progress

  # Compile from a pipe
  echo 'a = 1;' | flowc compile -`,
	Args: cobra.MinimumNArgs(1),
	RunE: compileFiles,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileFlags.out, "out", "o", "", "output file (single input only)")
	compileCmd.Flags().StringVar(&compileFlags.outDir, "out-dir", "", "directory for compiled graphs")
	compileCmd.Flags().BoolVarP(&compileFlags.write, "write", "w", false, "write each graph next to its source")
	compileCmd.Flags().StringVarP(&compileFlags.format, "format", "f", "", "output format: json, yaml (default from config)")
	compileCmd.Flags().BoolVar(&compileFlags.progress, "progress", false, "print one line per compiled file to stderr")
}

func compileFiles(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	format := compileFlags.format
	if format == "" {
		format = a.cfg.Compiler.Format
	}
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unsupported format %q (valid: json, yaml)", format)
	}

	ctx := a.context(cmd)

	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return a.compileBytes(ctx, cmd, data, format)
	}

	files, err := expandInputs(args, a.cfg.Compiler.ModulesDir)
	if err != nil {
		return err
	}
	toStdout := len(files) == 1 && !compileFlags.write && compileFlags.outDir == ""
	if compileFlags.out != "" && !toStdout {
		return fmt.Errorf("--out requires a single input without --write or --out-dir")
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	if toStdout {
		return a.compileFile(ctx, cmd, st, files[0], format)
	}

	var progress cli.ProgressReporter = cli.NoProgress{}
	if compileFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
	}
	progress.Start(len(files))

	failed := 0
	for _, file := range files {
		start := time.Now()
		res, err := a.compiler.Run(ctx, file)
		a.record(ctx, st, file, res, err, time.Since(start))
		if err == nil {
			err = a.writeGraph(outputPath(file, compileFlags.outDir, format), res.Graph, format)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
			}
		} else {
			_ = cli.WriteDiagnostics(cmd.ErrOrStderr(), cli.FormatText, flow.FormatErrors(err))
		}
		if err != nil {
			failed++
		}
		progress.Step(file, err)
	}
	progress.Finish()

	if failed > 0 {
		return &cli.FailedError{Count: failed}
	}
	return nil
}

// compileFile compiles one file to --out or stdout.
func (a *app) compileFile(ctx context.Context, cmd *cobra.Command, st *store.Store, file, format string) error {
	start := time.Now()
	res, err := a.compiler.Run(ctx, file)
	a.record(ctx, st, file, res, err, time.Since(start))
	if err != nil {
		_ = cli.WriteDiagnostics(cmd.ErrOrStderr(), cli.FormatText, flow.FormatErrors(err))
		return &cli.FailedError{Count: 1}
	}
	if compileFlags.out != "" {
		return a.writeGraph(compileFlags.out, res.Graph, format)
	}
	return a.encode(cmd.OutOrStdout(), res.Graph, format)
}

// compileBytes compiles source read from stdin to --out or stdout.
func (a *app) compileBytes(ctx context.Context, cmd *cobra.Command, data []byte, format string) error {
	g, err := a.compiler.CompileBytes(ctx, data, stdinPath)
	if err != nil {
		_ = cli.WriteDiagnostics(cmd.ErrOrStderr(), cli.FormatText, flow.FormatErrors(err))
		return &cli.FailedError{Count: 1}
	}
	if compileFlags.out != "" {
		return a.writeGraph(compileFlags.out, g, format)
	}
	return a.encode(cmd.OutOrStdout(), g, format)
}
