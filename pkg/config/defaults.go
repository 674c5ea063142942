package config

import "time"

// Default values for configuration fields.
const (
	// Compiler defaults
	DefaultCompilerVersion = "1.0"
	DefaultModulesDir      = "node_modules"
	DefaultMaxFileSize     = int64(10 * 1024 * 1024) // 10MB
	DefaultFormat          = "json"
	DefaultIndent          = "  "

	// Telemetry defaults
	DefaultLoggingLevel     = "warn"
	DefaultLoggingFormat    = "console"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "flowc"
	DefaultMetricsSubsystem = "compiler"
	DefaultTracingSampler   = "always"
	DefaultTracingRatio     = 1.0
	DefaultTracingService   = "flowc"
	DefaultTracingTimeout   = 10 * time.Second

	// Store defaults
	DefaultStoreDriver       = "sqlite"
	DefaultStorePath         = ".flowc/artifacts.db"
	DefaultStoreBusyTimeout  = 5 * time.Second
	DefaultRetentionMaxAge   = 30 * 24 * time.Hour
	DefaultRetentionMax      = 50
	DefaultRetentionSchedule = "@hourly"

	// Watch defaults
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Default histogram buckets.
var (
	DefaultDurationBuckets  = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}
	DefaultNodeCountBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 1000}
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Compiler defaults
	if cfg.Compiler.Version == "" {
		cfg.Compiler.Version = DefaultCompilerVersion
	}
	if cfg.Compiler.ModulesDir == "" {
		cfg.Compiler.ModulesDir = DefaultModulesDir
	}
	if cfg.Compiler.MaxFileSize == 0 {
		cfg.Compiler.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Compiler.Format == "" {
		cfg.Compiler.Format = DefaultFormat
	}
	if cfg.Compiler.Indent == "" {
		cfg.Compiler.Indent = DefaultIndent
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults
	m := &cfg.Telemetry.Metrics
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if m.Subsystem == "" {
		m.Subsystem = DefaultMetricsSubsystem
	}
	if len(m.DurationBuckets) == 0 {
		m.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if len(m.NodeCountBuckets) == 0 {
		m.NodeCountBuckets = append([]float64(nil), DefaultNodeCountBuckets...)
	}

	// Tracing defaults
	tr := &cfg.Telemetry.Tracing
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingRatio
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingService
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}

	// Store defaults
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}
	if cfg.Store.Retention.MaxAge == 0 {
		cfg.Store.Retention.MaxAge = DefaultRetentionMaxAge
	}
	if cfg.Store.Retention.MaxArtifacts == 0 {
		cfg.Store.Retention.MaxArtifacts = DefaultRetentionMax
	}
	if cfg.Store.Retention.Schedule == "" {
		cfg.Store.Retention.Schedule = DefaultRetentionSchedule
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
