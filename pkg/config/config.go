package config

import "time"

// Config is the root configuration structure for flowc.
// It contains the compiler settings, telemetry, the artifact store and watch
// mode.
type Config struct {
	// Compiler contains settings for parsing, import resolution and output.
	Compiler CompilerConfig `yaml:"compiler"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Store contains configuration for the artifact store that records
	// compiled graphs.
	Store StoreConfig `yaml:"store"`

	// Watch contains configuration for `flowc watch`.
	Watch WatchConfig `yaml:"watch"`
}

// CompilerConfig contains compiler settings.
type CompilerConfig struct {
	// Version is written to the "version" field of emitted graphs.
	// Default: "1.0"
	Version string `yaml:"version"`

	// ModulesDir is the directory searched for bare import names, walking up
	// from the importing file.
	// Default: "node_modules"
	ModulesDir string `yaml:"modules_dir"`

	// MaxFileSize is the largest source file accepted, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// Format is the output format.
	// Options: "json", "yaml"
	// Default: "json"
	Format string `yaml:"format"`

	// Indent is the JSON indentation. Empty means compact output.
	// Default: "  "
	Indent string `yaml:"indent"`

	// Agents lists extra agent names the execution engine provides, on top
	// of the built-in ones.
	Agents []string `yaml:"agents"`

	// Validate runs structural graph validation after compilation.
	// Default: true
	Validate *bool `yaml:"validate"`
}

// ValidateEnabled reports whether graph validation is on.
func (c *CompilerConfig) ValidateEnabled() bool {
	return c.Validate == nil || *c.Validate
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "warn"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether compile metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the Prometheus endpoint served in watch mode.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "flowc"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "compiler"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for phase durations (seconds).
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// NodeCountBuckets defines histogram buckets for emitted node counts.
	// Default: [1, 5, 10, 25, 50, 100, 250, 1000]
	NodeCountBuckets []float64 `yaml:"node_count_buckets"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "flowc"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure *bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// InsecureEnabled reports whether the OTLP connection skips TLS.
func (c *TracingConfig) InsecureEnabled() bool {
	return c.Insecure == nil || *c.Insecure
}

// StoreConfig contains artifact store configuration.
type StoreConfig struct {
	// Enabled controls whether compiled graphs are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver is the database/sql driver name.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: ".flowc/artifacts.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Retention controls pruning of old artifacts.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains artifact retention configuration.
type RetentionConfig struct {
	// MaxAge deletes artifacts older than this. Zero keeps them forever.
	// Default: 720h (30 days)
	MaxAge time.Duration `yaml:"max_age"`

	// MaxArtifacts keeps at most this many artifacts per source path.
	// Zero means unlimited.
	// Default: 50
	MaxArtifacts int `yaml:"max_artifacts"`

	// Schedule is the cron expression for pruning while watch mode runs.
	// Default: "@hourly"
	Schedule string `yaml:"schedule"`
}

// WatchConfig contains watch mode configuration.
type WatchConfig struct {
	// Debounce is how long to wait for more file events before recompiling.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`

	// MetricsAddr serves the metrics and health endpoints while watching.
	// Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`

	// OutputDir receives one compiled file per source. Empty writes next to
	// the source.
	OutputDir string `yaml:"output_dir"`
}
