package config

import (
	"os"
	"path/filepath"
	"testing"
)

func resetGlobal() {
	SetConfig(nil)
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	path := writeConfig(t, t.TempDir(), "flowc.yaml", `
compiler:
  version: "3.1"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Compiler.Version != "3.1" {
		t.Errorf("expected version %q, got %q", "3.1", cfg.Compiler.Version)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()
	dir := t.TempDir()
	path1 := writeConfig(t, dir, "one.yaml", "compiler:\n  version: \"1\"\n")
	path2 := writeConfig(t, dir, "two.yaml", "compiler:\n  version: \"2\"\n")

	if err := Initialize(path1); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	Initialize(path2)

	if got := GetConfig().Compiler.Version; got != "1" {
		t.Errorf("second Initialize call should be ignored, got version %q", got)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetGlobal()
	if GetConfig() != nil {
		t.Error("expected nil config before initialization")
	}
}

func TestSetConfig(t *testing.T) {
	resetGlobal()
	cfg := Default()
	cfg.Compiler.Format = "yaml"

	SetConfig(cfg)

	if got := GetConfig(); got == nil || got.Compiler.Format != "yaml" {
		t.Errorf("expected the set config, got %+v", got)
	}
}

func TestInitialize_RecordsPath(t *testing.T) {
	resetGlobal()
	dir := t.TempDir()
	path := writeConfig(t, dir, "flowc.yaml", "compiler:\n  version: \"2\"\n")

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if got, want := Path(), path; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	SetConfig(Default())
	if got := Path(); got != "" {
		t.Errorf("Path() after SetConfig = %q, want empty", got)
	}
}

func TestInitialize_FailureCanBeRetried(t *testing.T) {
	resetGlobal()
	dir := t.TempDir()

	if err := Initialize(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
	if GetConfig() != nil {
		t.Fatal("a failed Initialize must not install a configuration")
	}

	path := writeConfig(t, dir, "flowc.yaml", "compiler:\n  version: \"4\"\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := GetConfig().Compiler.Version; got != "4" {
		t.Errorf("version = %q, want 4", got)
	}
}

func TestReloadConfig(t *testing.T) {
	resetGlobal()
	path := writeConfig(t, t.TempDir(), "flowc.yaml", "telemetry:\n  logging:\n    level: info\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	writeConfig(t, filepath.Dir(path), "flowc.yaml", "telemetry:\n  logging:\n    level: debug\n")
	changed, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if !changed {
		t.Error("expected the reload to report a change")
	}
	if got := GetConfig().Telemetry.Logging.Level; got != "debug" {
		t.Errorf("expected updated logging level %q, got %q", "debug", got)
	}
}

func TestReloadConfig_ReusesSourceFile(t *testing.T) {
	resetGlobal()
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", "compiler:\n  format: json\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	// Rewriting the file without changing values is not a change.
	writeConfig(t, dir, "custom.yaml", "# touched\ncompiler:\n  format: json\n")
	changed, err := ReloadConfig("")
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if changed {
		t.Error("expected an identical configuration to report no change")
	}

	writeConfig(t, dir, "custom.yaml", "compiler:\n  format: yaml\n")
	changed, err = ReloadConfig("")
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if !changed || GetConfig().Compiler.Format != "yaml" {
		t.Errorf("changed = %v, format = %q, want the file passed to Initialize reloaded", changed, GetConfig().Compiler.Format)
	}
	if Path() != path {
		t.Errorf("Path() = %q, want %q", Path(), path)
	}
}

func TestReloadConfig_ValidationFailure(t *testing.T) {
	resetGlobal()
	path := writeConfig(t, t.TempDir(), "flowc.yaml", "compiler:\n  format: yaml\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	original := GetConfig()

	writeConfig(t, filepath.Dir(path), "flowc.yaml", "compiler:\n  format: xml\n")
	if _, err := ReloadConfig(path); err == nil {
		t.Fatal("expected error when reloading invalid config")
	}

	if GetConfig() != original {
		t.Error("original config should be preserved on reload failure")
	}
}

func TestMustGetConfig(t *testing.T) {
	resetGlobal()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGetConfig to panic when not initialized")
		}
	}()

	MustGetConfig()
}

func TestMustGetConfig_AfterInitialize(t *testing.T) {
	resetGlobal()
	SetConfig(Default())

	if MustGetConfig() == nil {
		t.Error("expected non-nil config from MustGetConfig")
	}
}
