package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/flowc/pkg/cli"
)

func TestCheckFiles(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		output     string
		wantFailed int
		wantOut    string
	}{
		{
			name:    "all valid",
			files:   map[string]string{"a.flow": validFlow, "b.flow": "x = 1;"},
			output:  "text",
			wantOut: "2 file(s) checked: 2 passed, 0 failed",
		},
		{
			name:       "one invalid",
			files:      map[string]string{"a.flow": validFlow, "b.flow": "x = y;"},
			output:     "text",
			wantFailed: 1,
			wantOut:    "2 file(s) checked: 1 passed, 1 failed",
		},
		{
			name:       "yaml report",
			files:      map[string]string{"a.flow": "x = ;"},
			output:     "yaml",
			wantFailed: 1,
			wantOut:    "status: parse_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfig(t, nil)
			checkFlags.output = tt.output
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFlow(t, dir, name, content)
			}

			cmd, stdout, _ := testCommand()
			err := checkFiles(cmd, []string{dir})

			if tt.wantFailed == 0 && err != nil {
				t.Fatalf("checkFiles() failed: %v", err)
			}
			if tt.wantFailed > 0 {
				var failed *cli.FailedError
				if !errors.As(err, &failed) || failed.Count != tt.wantFailed {
					t.Fatalf("checkFiles() error = %v, want %d failed", err, tt.wantFailed)
				}
			}
			if !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, stdout.String())
			}
		})
	}
}

func TestCheckFiles_JSONReport(t *testing.T) {
	useConfig(t, nil)
	checkFlags.output = "json"
	file := writeFlow(t, t.TempDir(), "bad.flow", "a = 1;\nb = missing;")

	cmd, stdout, _ := testCommand()
	if err := checkFiles(cmd, []string{file}); err == nil {
		t.Fatal("checkFiles() should report a failure")
	}

	var report cli.Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, stdout.String())
	}
	if report.Failed != 1 || len(report.Files) != 1 {
		t.Fatalf("report = %+v, want one failed file", report)
	}
	fr := report.Files[0]
	if fr.Status != "compile_error" {
		t.Errorf("status = %q, want %q", fr.Status, "compile_error")
	}
	if len(fr.Diagnostics) == 0 || fr.Diagnostics[0].Start.Row != 2 {
		t.Errorf("diagnostics = %+v, want one on line 2", fr.Diagnostics)
	}
}

func TestCheckFiles_InvalidOutput(t *testing.T) {
	useConfig(t, nil)
	checkFlags.output = "xml"

	cmd, _, _ := testCommand()
	if err := checkFiles(cmd, []string{"main.flow"}); err == nil {
		t.Error("checkFiles() with --output xml should fail")
	}
}
