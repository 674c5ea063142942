package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(&Config{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		errorField string
	}{
		{"unknown format", func(c *Config) { c.Compiler.Format = "xml" }, "compiler.format"},
		{"modules dir with slash", func(c *Config) { c.Compiler.ModulesDir = "a/b" }, "compiler.modules_dir"},
		{"negative max size", func(c *Config) { c.Compiler.MaxFileSize = -1 }, "compiler.max_file_size"},
		{"indent with letters", func(c *Config) { c.Compiler.Indent = "ab" }, "compiler.indent"},
		{"agent with colon", func(c *Config) { c.Compiler.Agents = []string{"ok", ":bad"} }, "compiler.agents[1]"},
		{"log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"unsorted buckets", func(c *Config) {
			c.Telemetry.Metrics.NodeCountBuckets = []float64{10, 5}
		}, "telemetry.metrics.node_count_buckets"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"sample ratio", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"cron schedule", func(c *Config) { c.Store.Retention.Schedule = "every day" }, "store.retention.schedule"},
		{"negative retention", func(c *Config) { c.Store.Retention.MaxArtifacts = -3 }, "store.retention.max_artifacts"},
		{"metrics addr", func(c *Config) { c.Watch.MetricsAddr = "localhost" }, "watch.metrics_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.errorField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got errors: %v", tt.errorField, validationErr.Errors)
			}
		})
	}
}

func TestValidate_CronDescriptors(t *testing.T) {
	for _, schedule := range []string{"@hourly", "@every 10m", "0 3 * * *"} {
		cfg := Default()
		cfg.Store.Retention.Schedule = schedule
		if err := Validate(cfg); err != nil {
			t.Errorf("schedule %q: unexpected error %v", schedule, err)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		contains string
	}{
		{
			name:     "empty errors",
			err:      ValidationError{Errors: []FieldError{}},
			contains: "configuration validation failed",
		},
		{
			name:     "single error",
			err:      ValidationError{Errors: []FieldError{{Field: "compiler.format", Message: "required"}}},
			contains: "compiler.format",
		},
		{
			name: "multiple errors",
			err: ValidationError{Errors: []FieldError{
				{Field: "compiler.format", Message: "required"},
				{Field: "store.driver", Message: "invalid"},
			}},
			contains: "2 errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msg := tt.err.Error(); !strings.Contains(msg, tt.contains) {
				t.Errorf("expected error message to contain %q, got: %s", tt.contains, msg)
			}
		})
	}
}
