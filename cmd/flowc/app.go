package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/cli"
	"mercator-hq/flowc/pkg/config"
	"mercator-hq/flowc/pkg/flow"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/store"
	"mercator-hq/flowc/pkg/telemetry/logging"
	"mercator-hq/flowc/pkg/telemetry/metrics"
	"mercator-hq/flowc/pkg/telemetry/tracing"
)

// app holds what every command needs: configuration, telemetry and a
// configured compiler.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	collector *metrics.Collector // nil when metrics are disabled
	tracer    *tracing.Tracer
	compiler  *flow.Compiler
}

// loadConfig initializes the global configuration from --config.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, cli.NewConfigError(cfgFile, "configuration not initialized")
	}
	return cfg, nil
}

// newApp builds the shared components. withMetrics forces a metrics
// collector even when telemetry.metrics.enabled is false.
func newApp(cmd *cobra.Command, withMetrics bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    cmd.ErrOrStderr(),
	}
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.Telemetry.Metrics.Enabled || withMetrics {
		a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}
	if a.tracer.Enabled() {
		logger.Debug("tracing enabled",
			"endpoint", cfg.Telemetry.Tracing.Endpoint,
			"sampler", a.tracer.Sampler())
	}

	a.compiler = a.newCompiler()
	return a, nil
}

// newCompiler creates a compiler from the current configuration.
func (a *app) newCompiler() *flow.Compiler {
	cc := a.cfg.Compiler
	opts := []flow.Option{
		flow.WithVersion(cc.Version),
		flow.WithModulesDir(cc.ModulesDir),
		flow.WithMaxFileSize(cc.MaxFileSize),
		flow.WithAgents(cc.Agents...),
		flow.WithValidation(cc.ValidateEnabled()),
		flow.WithLogger(a.logger),
		flow.WithTracer(a.tracer.Tracer()),
	}
	if a.collector != nil {
		opts = append(opts, flow.WithObserver(a.collector))
	}
	return flow.New(opts...)
}

// openStore opens the artifact store, or returns nil when recording is off.
func (a *app) openStore() (*store.Store, error) {
	if !a.cfg.Store.Enabled {
		return nil, nil
	}
	opts := []store.Option{store.WithLogger(a.logger)}
	if a.collector != nil {
		opts = append(opts, store.WithObserver(a.collector))
	}
	return store.Open(&a.cfg.Store, opts...)
}

// record saves a compilation. Failures to record are logged, never fatal.
func (a *app) record(ctx context.Context, st *store.Store, path string, res *flow.Result, compileErr error, d time.Duration) {
	if st == nil {
		return
	}
	art, err := store.NewArtifact(ctx, path, res, compileErr, d)
	if err == nil {
		err = st.Save(ctx, art)
	}
	if err != nil {
		a.logger.WarnContext(ctx, "failed to record artifact", "path", path, "error", err)
	}
}

// context returns the command context joined to any trace passed in
// through TRACEPARENT.
func (a *app) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return tracing.FromEnvironment(ctx)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
}

// encode writes g in the configured or overridden format.
func (a *app) encode(w io.Writer, g *graph.Graph, format string) error {
	if format == "" {
		format = a.cfg.Compiler.Format
	}
	indent := a.cfg.Compiler.Indent
	return graph.Encode(w, g, graph.Format(format), indent)
}

// outputPath returns where the graph compiled from src is written: next to
// src, or in dir when set, with the extension of format.
func outputPath(src, dir, format string) string {
	ext := ".json"
	if format == string(graph.FormatYAML) {
		ext = ".yaml"
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ext
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, base)
}

// writeGraph writes g to path atomically.
func (a *app) writeGraph(path string, g *graph.Graph, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := a.encode(tmp, g, format); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// expandInputs turns file and directory arguments into a list of source
// files. Directories contribute their *.flow files, recursively, skipping
// the modules directory and hidden directories.
func expandInputs(args []string, modulesDir string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if path != arg && (name == modulesDir || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(name) == ".flow" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .flow files found")
	}
	return files, nil
}
