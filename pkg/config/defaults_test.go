package config

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Compiler.Version != DefaultCompilerVersion {
					t.Errorf("expected version %q, got %q", DefaultCompilerVersion, cfg.Compiler.Version)
				}
				if cfg.Compiler.ModulesDir != DefaultModulesDir {
					t.Errorf("expected modules dir %q, got %q", DefaultModulesDir, cfg.Compiler.ModulesDir)
				}
				if cfg.Compiler.MaxFileSize != DefaultMaxFileSize {
					t.Errorf("expected max file size %d, got %d", DefaultMaxFileSize, cfg.Compiler.MaxFileSize)
				}
				if cfg.Compiler.Format != DefaultFormat {
					t.Errorf("expected format %q, got %q", DefaultFormat, cfg.Compiler.Format)
				}
				if !cfg.Compiler.ValidateEnabled() {
					t.Error("expected validation enabled by default")
				}
				if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
					t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
				}
				if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
					t.Errorf("expected namespace %q, got %q", DefaultMetricsNamespace, cfg.Telemetry.Metrics.Namespace)
				}
				if !reflect.DeepEqual(cfg.Telemetry.Metrics.DurationBuckets, DefaultDurationBuckets) {
					t.Errorf("unexpected duration buckets %v", cfg.Telemetry.Metrics.DurationBuckets)
				}
				if !cfg.Telemetry.Tracing.InsecureEnabled() {
					t.Error("expected insecure OTLP by default")
				}
				if cfg.Store.Driver != DefaultStoreDriver {
					t.Errorf("expected driver %q, got %q", DefaultStoreDriver, cfg.Store.Driver)
				}
				if cfg.Store.Retention.Schedule != DefaultRetentionSchedule {
					t.Errorf("expected schedule %q, got %q", DefaultRetentionSchedule, cfg.Store.Retention.Schedule)
				}
				if cfg.Watch.Debounce != DefaultWatchDebounce {
					t.Errorf("expected debounce %v, got %v", DefaultWatchDebounce, cfg.Watch.Debounce)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				Compiler: CompilerConfig{Version: "2.0", Format: "yaml"},
				Store:    StoreConfig{Driver: "sqlite3", Retention: RetentionConfig{MaxAge: time.Hour}},
				Watch:    WatchConfig{Debounce: time.Second},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Compiler.Version != "2.0" {
					t.Errorf("expected version 2.0, got %q", cfg.Compiler.Version)
				}
				if cfg.Compiler.Format != "yaml" {
					t.Errorf("expected format yaml, got %q", cfg.Compiler.Format)
				}
				if cfg.Store.Driver != "sqlite3" {
					t.Errorf("expected driver sqlite3, got %q", cfg.Store.Driver)
				}
				if cfg.Store.Retention.MaxAge != time.Hour {
					t.Errorf("expected max age 1h, got %v", cfg.Store.Retention.MaxAge)
				}
				if cfg.Watch.Debounce != time.Second {
					t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg1 := Default()
	cfg2 := Default()
	ApplyDefaults(cfg2)

	if !reflect.DeepEqual(cfg1, cfg2) {
		t.Error("ApplyDefaults is not idempotent")
	}
}

func TestApplyDefaults_BucketsNotShared(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Metrics.DurationBuckets[0] = 42

	if DefaultDurationBuckets[0] == 42 {
		t.Error("defaults share the package-level bucket slice")
	}
}
