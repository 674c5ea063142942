package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/flowc/pkg/config"
)

const validFlow = `static a = 1; b = identity({x: a});`

// useConfig installs a default configuration for one test. The store, when
// enabled, lives in a temporary directory.
func useConfig(t *testing.T, mutate func(cfg *config.Config)) *config.Config {
	t.Helper()
	cfgFile = ""
	verbose = false
	_ = config.Initialize("")

	prev := config.GetConfig()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "artifacts.db")
	if mutate != nil {
		mutate(cfg)
	}
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(prev) })
	return cfg
}

// testCommand returns a command whose output is captured.
func testCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())
	return cmd, &stdout, &stderr
}

func writeFlow(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		dir    string
		format string
		want   string
	}{
		{"json next to source", "flows/main.flow", "", "json", filepath.Join("flows", "main.json")},
		{"yaml next to source", "flows/main.flow", "", "yaml", filepath.Join("flows", "main.yaml")},
		{"out dir", "flows/main.flow", "build", "json", filepath.Join("build", "main.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.src, tt.dir, tt.format); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	writeFlow(t, dir, "main.flow", validFlow)
	writeFlow(t, dir, "lib/util.flow", validFlow)
	writeFlow(t, dir, "node_modules/pkg/index.flow", validFlow)
	writeFlow(t, dir, ".cache/skip.flow", validFlow)
	writeFlow(t, dir, "README.md", "# flows")

	files, err := expandInputs([]string{dir}, "node_modules")
	if err != nil {
		t.Fatalf("expandInputs() failed: %v", err)
	}
	want := []string{filepath.Join(dir, "lib", "util.flow"), filepath.Join(dir, "main.flow")}
	if len(files) != len(want) {
		t.Fatalf("expandInputs() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestExpandInputs_Errors(t *testing.T) {
	if _, err := expandInputs([]string{filepath.Join(t.TempDir(), "missing.flow")}, "node_modules"); err == nil {
		t.Error("expandInputs() with a missing file should fail")
	}
	if _, err := expandInputs([]string{t.TempDir()}, "node_modules"); err == nil {
		t.Error("expandInputs() with an empty directory should fail")
	}
}

func TestSameFile(t *testing.T) {
	abs, err := filepath.Abs("flowc.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !sameFile("flowc.yaml", abs) {
		t.Error("sameFile() should match a relative path against its absolute form")
	}
	if sameFile("other.yaml", abs) {
		t.Error("sameFile() should not match a different file")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "yaml", "json"); got != "yaml" {
		t.Errorf("firstNonEmpty() = %q, want %q", got, "yaml")
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
