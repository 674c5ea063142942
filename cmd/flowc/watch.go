package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/cli"
	"mercator-hq/flowc/pkg/config"
	"mercator-hq/flowc/pkg/flow"
	"mercator-hq/flowc/pkg/store"
	"mercator-hq/flowc/pkg/telemetry/health"
	"mercator-hq/flowc/pkg/watch"
)

var watchFlags struct {
	metricsAddr string
	outDir      string
	format      string
	debounce    time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch [file|dir]...",
	Short: "Recompile flow files when they change",
	Long: `Compile the given files, then recompile them whenever a .flow file under
the watched paths changes. Every entry file is rebuilt on each change because
any of them may import the changed module.

Graphs are written next to their sources, or into --out-dir. When the
configuration file changes it is reloaded before the next build.

With --metrics-addr, Prometheus metrics and the /health, /ready and /version
endpoints are served on that address. When store.enabled is set, every build
is recorded and pruned on the store.retention.schedule.

Examples:
  # Watch a directory
  flowc watch flows/

  # Write YAML graphs into build/ and expose metrics
  flowc watch flows/ --out-dir build/ --format yaml --metrics-addr :9090`,
	Args: cobra.MinimumNArgs(1),
	RunE: watchFiles,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve metrics and health endpoints on this address (default from config)")
	watchCmd.Flags().StringVar(&watchFlags.outDir, "out-dir", "", "directory for compiled graphs (default from config)")
	watchCmd.Flags().StringVarP(&watchFlags.format, "format", "f", "", "output format: json, yaml (default from config)")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 0, "quiet period before rebuilding (default from config)")
}

// builder rebuilds every entry file and remembers the outcome for the
// readiness check.
type builder struct {
	app    *app
	store  *store.Store
	args   []string
	outDir string
	format string

	mu      sync.Mutex
	lastErr error
}

func watchFiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := firstNonEmpty(watchFlags.metricsAddr, cfg.Watch.MetricsAddr)

	a, err := newApp(cmd, addr != "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := cli.SetupSignalHandler(a.context(cmd))
	defer stop()

	st, err := a.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		sched := store.NewScheduler(st, a.cfg.Store.Retention)
		if err := sched.Start(ctx); err != nil {
			a.logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer sched.Stop()
		}
	}

	b := &builder{
		app:    a,
		store:  st,
		args:   args,
		outDir: firstNonEmpty(watchFlags.outDir, a.cfg.Watch.OutputDir),
		format: firstNonEmpty(watchFlags.format, a.cfg.Compiler.Format),
	}

	if addr != "" {
		srv := a.telemetryServer(addr, b, st)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("telemetry server failed", "addr", addr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics and health on %s\n", addr)
	}

	paths := append([]string(nil), args...)
	extensions := append([]string(nil), watch.DefaultExtensions...)
	cfgPath := config.Path()
	if cfgPath != "" {
		paths = append(paths, cfgPath)
		extensions = append(extensions, filepath.Ext(cfgPath))
	}

	debounce := watchFlags.debounce
	if debounce == 0 {
		debounce = a.cfg.Watch.Debounce
	}
	w, err := watch.New(watch.Config{
		Paths:      paths,
		Debounce:   debounce,
		Extensions: extensions,
		SkipHidden: true,
	}, a.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	b.build(ctx, cmd)
	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes (Ctrl+C to stop)")

	return w.Watch(ctx, func(changed []string) {
		rebuild := false
		for _, path := range changed {
			switch {
			case cfgPath != "" && sameFile(path, cfgPath):
				rebuild = b.reloadConfig(cmd) || rebuild
			case filepath.Ext(path) == ".flow":
				rebuild = true
			}
		}
		// Other files with the config extension, such as YAML graphs
		// written by this command, are ignored.
		if rebuild {
			b.build(ctx, cmd)
		}
	})
}

// build compiles every entry file and prints a one-line summary.
func (b *builder) build(ctx context.Context, cmd *cobra.Command) {
	a := b.app
	start := time.Now()
	stderr := cmd.ErrOrStderr()

	files, err := expandInputs(b.args, a.cfg.Compiler.ModulesDir)
	if err != nil {
		b.setLastErr(err)
		fmt.Fprintf(stderr, "[%s] %v\n", start.Format("15:04:05"), err)
		return
	}

	failed := 0
	var firstErr error
	for _, file := range files {
		runStart := time.Now()
		res, err := a.compiler.Run(ctx, file)
		a.record(ctx, b.store, file, res, err, time.Since(runStart))
		if err == nil {
			err = a.writeGraph(outputPath(file, b.outDir, b.format), res.Graph, b.format)
			if err != nil {
				fmt.Fprintf(stderr, "%s: %v\n", file, err)
			}
		} else {
			_ = cli.WriteDiagnostics(stderr, cli.FormatText, flow.FormatErrors(err))
		}
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %s", file, flow.Status(err))
			}
		}
	}
	b.setLastErr(firstErr)

	fmt.Fprintf(stderr, "[%s] compiled %d file(s) in %s", start.Format("15:04:05"), len(files)-failed,
		time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		fmt.Fprintf(stderr, ", %d failed", failed)
	}
	fmt.Fprintln(stderr)
}

// reloadConfig applies a changed configuration file and reports whether the
// effective configuration changed. The previous configuration stays in effect
// when the new one is invalid.
func (b *builder) reloadConfig(cmd *cobra.Command) bool {
	a := b.app
	changed, err := config.ReloadConfig("")
	if err != nil {
		a.logger.Error("configuration reload failed", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Configuration not reloaded: %v\n", err)
		return false
	}
	if !changed {
		a.logger.Debug("configuration file touched without changes")
		return false
	}
	a.cfg = config.GetConfig()
	a.compiler = a.newCompiler()
	a.logger.Info("configuration reloaded")
	return true
}

func (b *builder) setLastErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastErr = err
}

// lastCompile is the readiness check for the latest build.
func (b *builder) lastCompile(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// telemetryServer serves metrics and health endpoints.
func (a *app) telemetryServer(addr string, b *builder, st *store.Store) *http.Server {
	checker := health.New(2 * time.Second)
	checker.RegisterCheck("last_compile", b.lastCompile)
	if st != nil {
		checker.RegisterCheck("store", st.Ping)
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Telemetry.Metrics.Path, a.collector.Handler())
	health.Mount(mux, checker, Version, GitCommit, BuildDate)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// sameFile compares a reported path with an absolute path.
func sameFile(path, abs string) bool {
	p, err := filepath.Abs(path)
	return err == nil && p == abs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
