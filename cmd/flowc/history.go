package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/cli"
	"mercator-hq/flowc/pkg/flow"
	"mercator-hq/flowc/pkg/store"
)

var historyFlags struct {
	path       string
	status     string
	limit      int
	output     string
	format     string
	maxAge     time.Duration
	maxPerPath int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded compilations",
	Long: `List, show and prune the compilations recorded in the artifact store.

Compilations are recorded when store.enabled is true. The history commands
read the configured database even when recording is disabled.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded compilations, newest first",
	Example: `  flowc history list
  flowc history list --path flows/main.flow --status parse_error --limit 5`,
	Args: cobra.NoArgs,
	RunE: historyList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the graph or diagnostics of a recorded compilation",
	Long: `Print the graph of a successful compilation, or the diagnostics of a failed
one. Any unique prefix of the artifact ID is accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: historyShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old recorded compilations",
	Long: `Delete artifacts older than --max-age, then keep at most --max-per-path
artifacts for each source path. Both default to store.retention.`,
	Args: cobra.NoArgs,
	RunE: historyPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.path, "path", "", "only artifacts compiled from this path")
	historyListCmd.Flags().StringVar(&historyFlags.status, "status", "", "only artifacts with this status")
	historyListCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of artifacts (0 for all)")
	historyListCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json, yaml")

	historyShowCmd.Flags().StringVarP(&historyFlags.format, "format", "f", "", "graph format: json or yaml (default from config)")
	historyShowCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "diagnostics format: text, json, yaml")

	historyPruneCmd.Flags().DurationVar(&historyFlags.maxAge, "max-age", 0, "delete artifacts older than this (default store.retention.max_age)")
	historyPruneCmd.Flags().IntVar(&historyFlags.maxPerPath, "max-per-path", 0, "artifacts kept per path (default store.retention.max_artifacts)")
}

// openHistory opens the configured store regardless of store.enabled.
func openHistory(cmd *cobra.Command) (*app, *store.Store, error) {
	a, err := newApp(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	opts := []store.Option{store.WithLogger(a.logger)}
	if a.collector != nil {
		opts = append(opts, store.WithObserver(a.collector))
	}
	st, err := store.Open(&a.cfg.Store, opts...)
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return a, st, nil
}

// artifactSummary is the listing form of an artifact.
type artifactSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Path      string    `json:"path" yaml:"path"`
	Status    string    `json:"status" yaml:"status"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Revision  string    `json:"revision,omitempty" yaml:"revision,omitempty"`
	Nodes     int       `json:"nodes" yaml:"nodes"`
	Errors    int       `json:"errors" yaml:"errors"`
	Duration  string    `json:"duration" yaml:"duration"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type artifactList []artifactSummary

// Text renders the listing as an aligned table.
func (l artifactList) Text() string {
	if len(l) == 0 {
		return "No artifacts recorded"
	}
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tNODES\tDURATION\tREVISION\tPATH")
	for _, s := range l {
		rev := "-"
		if s.Revision != "" {
			rev = shortID(s.Revision)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(s.ID), s.CreatedAt.Local().Format(time.DateTime), s.Status, s.Nodes, s.Duration, rev, s.Path)
	}
	tw.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func historyList(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.output)
	if err != nil {
		return err
	}
	if s := historyFlags.status; s != "" && !validStatus(s) {
		return cli.NewCommandError("history list", fmt.Errorf("unknown status %q", s))
	}

	a, st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	defer st.Close()

	artifacts, err := st.List(cmd.Context(), store.ListOptions{
		Path:   historyFlags.path,
		Status: historyFlags.status,
		Limit:  historyFlags.limit,
	})
	if err != nil {
		return err
	}

	list := make(artifactList, 0, len(artifacts))
	for _, art := range artifacts {
		list = append(list, artifactSummary{
			ID:        art.ID,
			Path:      art.Path,
			Status:    art.Status,
			Version:   art.Version,
			Revision:  art.Revision,
			Nodes:     art.Nodes,
			Errors:    len(art.Diagnostics),
			Duration:  art.Duration.Round(time.Microsecond).String(),
			CreatedAt: art.CreatedAt,
		})
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), list)
}

func historyShow(cmd *cobra.Command, args []string) error {
	diagFormat, err := cli.ParseOutputFormat(historyFlags.output)
	if err != nil {
		return err
	}

	a, st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	defer st.Close()

	art, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if !art.Succeeded() {
		if err := cli.WriteDiagnostics(cmd.OutOrStdout(), diagFormat, art.Diagnostics); err != nil {
			return err
		}
		return &cli.FailedError{Count: 1}
	}

	g, err := art.Decode()
	if err != nil {
		return fmt.Errorf("stored graph %s is corrupt: %w", art.ID, err)
	}
	return a.encode(cmd.OutOrStdout(), g, historyFlags.format)
}

func historyPrune(cmd *cobra.Command, _ []string) error {
	a, st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	defer st.Close()

	maxAge := historyFlags.maxAge
	if maxAge == 0 {
		maxAge = a.cfg.Store.Retention.MaxAge
	}
	maxPerPath := historyFlags.maxPerPath
	if maxPerPath == 0 {
		maxPerPath = a.cfg.Store.Retention.MaxArtifacts
	}

	n, err := st.Prune(cmd.Context(), maxAge, maxPerPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d artifact(s)\n", n)
	return nil
}

func validStatus(s string) bool {
	switch s {
	case flow.StatusSuccess, flow.StatusParseError, flow.StatusCompileError,
		flow.StatusSystemError, flow.StatusInvalidGraph:
		return true
	}
	return false
}
