package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "compiler.format").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCompiler(&cfg.Compiler)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateCompiler(cfg *CompilerConfig) []FieldError {
	var errs []FieldError

	if cfg.Version == "" {
		errs = append(errs, FieldError{Field: "compiler.version", Message: "graph version is required"})
	}
	if cfg.ModulesDir == "" {
		errs = append(errs, FieldError{Field: "compiler.modules_dir", Message: "modules directory is required"})
	} else if strings.ContainsAny(cfg.ModulesDir, `/\`) {
		errs = append(errs, FieldError{
			Field:   "compiler.modules_dir",
			Message: fmt.Sprintf("modules directory %q must be a single directory name", cfg.ModulesDir),
		})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{Field: "compiler.max_file_size", Message: "max file size must be positive"})
	}

	validFormats := map[string]bool{"json": true, "yaml": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "compiler.format",
			Message: fmt.Sprintf("invalid output format %q: must be 'json' or 'yaml'", cfg.Format),
		})
	}
	if strings.TrimLeft(cfg.Indent, " \t") != "" {
		errs = append(errs, FieldError{Field: "compiler.indent", Message: "indent may only contain spaces and tabs"})
	}

	for i, agent := range cfg.Agents {
		if agent == "" || strings.ContainsAny(agent, " \t\n:") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("compiler.agents[%d]", i),
				Message: fmt.Sprintf("invalid agent name %q", agent),
			})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	// Validate metrics
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" || !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/' when metrics are enabled",
			})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: "metrics namespace is required when metrics are enabled",
			})
		}
	}
	errs = append(errs, validateBuckets("telemetry.metrics.duration_buckets", cfg.Metrics.DurationBuckets)...)
	errs = append(errs, validateBuckets("telemetry.metrics.node_count_buckets", cfg.Metrics.NodeCountBuckets)...)

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	return errs
}

// validateBuckets checks that histogram buckets are strictly increasing.
func validateBuckets(field string, buckets []float64) []FieldError {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return []FieldError{{Field: field, Message: "buckets must be strictly increasing"}}
		}
	}
	return nil
}

func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "store.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{Field: "store.path", Message: "store path is required when the store is enabled"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "store.busy_timeout", Message: "busy timeout cannot be negative"})
	}
	if cfg.Retention.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "store.retention.max_age", Message: "max age cannot be negative"})
	}
	if cfg.Retention.MaxArtifacts < 0 {
		errs = append(errs, FieldError{Field: "store.retention.max_artifacts", Message: "max artifacts cannot be negative"})
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "store.retention.schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Retention.Schedule, err),
			})
		}
	}
	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{Field: "watch.debounce", Message: "debounce cannot be negative"})
	}
	if cfg.MetricsAddr != "" && !strings.Contains(cfg.MetricsAddr, ":") {
		errs = append(errs, FieldError{
			Field:   "watch.metrics_addr",
			Message: fmt.Sprintf("invalid listen address %q: expected host:port", cfg.MetricsAddr),
		})
	}
	return errs
}
