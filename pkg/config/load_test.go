package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "flowc.yaml", `
compiler:
  version: "2.0"
  modules_dir: flow_modules
  format: yaml
  agents: [sendEmail, queryDatabase]
  validate: false

telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true

store:
  enabled: true
  driver: sqlite3
  path: ./artifacts.db
  retention:
    max_age: 48h
    max_artifacts: 5
    schedule: "0 3 * * *"

watch:
  debounce: 500ms
  metrics_addr: 127.0.0.1:9464
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Compiler.Version != "2.0" {
		t.Errorf("expected version %q, got %q", "2.0", cfg.Compiler.Version)
	}
	if cfg.Compiler.ModulesDir != "flow_modules" {
		t.Errorf("expected modules dir %q, got %q", "flow_modules", cfg.Compiler.ModulesDir)
	}
	if len(cfg.Compiler.Agents) != 2 || cfg.Compiler.Agents[1] != "queryDatabase" {
		t.Errorf("unexpected agents %v", cfg.Compiler.Agents)
	}
	if cfg.Compiler.ValidateEnabled() {
		t.Error("expected validation disabled")
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("expected logging format %q, got %q", "text", cfg.Telemetry.Logging.Format)
	}
	if cfg.Store.Driver != "sqlite3" || cfg.Store.Retention.MaxAge != 48*time.Hour {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	// Unset fields still get defaults.
	if cfg.Compiler.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("expected default max file size, got %d", cfg.Compiler.MaxFileSize)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "flowc.yaml", "compiler: [unclosed\n")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "flowc.yaml", "store:\n  driver: postgres\n")

	_, err := LoadConfig(path)
	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "flowc.yaml", "compiler:\n  format: json\n  agents: [a]\n")

	t.Setenv("FLOWC_COMPILER_FORMAT", "yaml")
	t.Setenv("FLOWC_COMPILER_AGENTS", "b, c")
	t.Setenv("FLOWC_COMPILER_MAX_FILE_SIZE", "2048")
	t.Setenv("FLOWC_COMPILER_VALIDATE", "false")
	t.Setenv("FLOWC_TELEMETRY_LOGGING_LEVEL", "error")
	t.Setenv("FLOWC_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("FLOWC_STORE_ENABLED", "true")
	t.Setenv("FLOWC_STORE_RETENTION_MAX_AGE", "2h")
	t.Setenv("FLOWC_WATCH_DEBOUNCE", "not-a-duration")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Compiler.Format != "yaml" {
		t.Errorf("expected format yaml, got %q", cfg.Compiler.Format)
	}
	if strings.Join(cfg.Compiler.Agents, ",") != "a,b,c" {
		t.Errorf("expected agents a,b,c, got %v", cfg.Compiler.Agents)
	}
	if cfg.Compiler.MaxFileSize != 2048 {
		t.Errorf("expected max file size 2048, got %d", cfg.Compiler.MaxFileSize)
	}
	if cfg.Compiler.ValidateEnabled() {
		t.Error("expected validation disabled")
	}
	if cfg.Telemetry.Logging.Level != "error" {
		t.Errorf("expected level error, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("expected ratio 0.25, got %v", cfg.Telemetry.Tracing.SampleRatio)
	}
	if !cfg.Store.Enabled || cfg.Store.Retention.MaxAge != 2*time.Hour {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	// Invalid values are ignored.
	if cfg.Watch.Debounce != DefaultWatchDebounce {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "flowc.yaml", "compiler:\n  format: json\n")
	t.Setenv("FLOWC_STORE_DRIVER", "mysql")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil || !strings.Contains(err.Error(), "after environment overrides") {
		t.Fatalf("expected validation failure after overrides, got %v", err)
	}
}

func TestLoad_Fallbacks(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults without a config file, got %v", err)
	}
	if cfg.Compiler.Format != DefaultFormat {
		t.Errorf("expected default format, got %q", cfg.Compiler.Format)
	}

	writeConfig(t, dir, DefaultFileName, "compiler:\n  format: yaml\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("failed to load %s: %v", DefaultFileName, err)
	}
	if cfg.Compiler.Format != "yaml" {
		t.Errorf("expected ./%s to be used, got format %q", DefaultFileName, cfg.Compiler.Format)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an explicit missing path to fail")
	}
}
