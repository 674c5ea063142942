package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flowc",
	Short: "flowc - compiler from the flow language to graph JSON",
	Long: `flowc compiles programs written in the flow language into the JSON graph
format executed by the agent engine.

Each top-level definition becomes a node: static values, agent invocations,
lambdas compiled to nested graphs with explicit captures, and imported modules.

Configuration is read from --config, or ./flowc.yaml when present, and can be
overridden with FLOWC_* environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./flowc.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
