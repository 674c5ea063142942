package main

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	Version = "0.1.0-test"
	GitCommit = "abc123"
	defer func() { Version, GitCommit = origVersion, origCommit }()

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)

	for _, want := range []string{"flowc 0.1.0-test", "Git Commit: abc123", runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"check", "compile", "completion", "history", "repl", "version", "watch"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}

	for _, name := range []string{"list", "show", "prune"} {
		cmd, _, err := rootCmd.Find([]string{"history", name})
		if err != nil || cmd.Name() != name {
			t.Errorf("history %q not registered", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "bash completion"},
		{"zsh", "#compdef flowc"},
		{"fish", "complete -c flowc"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var out bytes.Buffer
			completionCmd.SetOut(&out)
			defer completionCmd.SetOut(nil)

			if err := completionCmd.RunE(completionCmd, []string{tt.shell}); err != nil {
				t.Fatalf("completion %s failed: %v", tt.shell, err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("completion %s output missing %q", tt.shell, tt.want)
			}
		})
	}
}
