package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	useConfig(t, nil)
	cmd, _, _ := testCommand()
	a, err := newApp(cmd, false)
	if err != nil {
		t.Fatalf("newApp() failed: %v", err)
	}
	t.Cleanup(a.close)

	var stdout, stderr bytes.Buffer
	return newSession(a, "", &stdout, &stderr), &stdout, &stderr
}

func TestSession_Incomplete(t *testing.T) {
	s, _, _ := newTestSession(t)

	tests := []struct {
		input string
		want  bool
	}{
		{"a = 1;", false},
		{"f = (x) -> {", true},
		{"b = [1, 2", true},
		{"c = ;", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := s.incomplete(tt.input); got != tt.want {
				t.Errorf("incomplete(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSession_Eval(t *testing.T) {
	s, stdout, stderr := newTestSession(t)
	ctx := context.Background()

	if !s.eval(ctx, "static a = 1;") {
		t.Fatalf("eval() failed: %s", stderr.String())
	}
	if !s.eval(ctx, "b = identity({x: a});") {
		t.Fatalf("eval() referencing an earlier definition failed: %s", stderr.String())
	}
	if len(s.defs) != 2 {
		t.Fatalf("session has %d definitions, want 2", len(s.defs))
	}
	if !strings.Contains(stdout.String(), `"b"`) {
		t.Errorf("expected graph with node b, got:\n%s", stdout.String())
	}

	stderr.Reset()
	if s.eval(ctx, "c = missing;") {
		t.Error("eval() of an undefined reference should fail")
	}
	if len(s.defs) != 2 {
		t.Errorf("failed input was kept: %v", s.defs)
	}
	if stderr.Len() == 0 {
		t.Error("expected diagnostics on stderr")
	}
}

func TestSession_ResultNotKept(t *testing.T) {
	s, _, stderr := newTestSession(t)
	ctx := context.Background()

	s.eval(ctx, "static a = 1;")
	if !s.eval(ctx, "identity({x: a})") {
		t.Fatalf("eval() of a result expression failed: %s", stderr.String())
	}
	if len(s.defs) != 1 {
		t.Errorf("result expression was kept: %v", s.defs)
	}
	if !s.eval(ctx, "b = 2;") {
		t.Errorf("eval() after a result expression failed: %s", stderr.String())
	}
}

func TestSession_Commands(t *testing.T) {
	s, stdout, stderr := newTestSession(t)
	ctx := context.Background()
	s.eval(ctx, "a = 1;")

	tests := []struct {
		line       string
		wantQuit   bool
		wantOut    string
		wantErrOut string
	}{
		{line: ":help", wantOut: ":reset"},
		{line: ":show", wantOut: "a = 1;"},
		{line: ":graph", wantOut: `"nodes"`},
		{line: ":format yaml"},
		{line: ":format xml", wantErrOut: "usage: :format"},
		{line: ":load", wantErrOut: "usage: :load"},
		{line: ":nope", wantErrOut: "unknown command :nope"},
		{line: ":reset", wantOut: "Session cleared"},
		{line: ":show", wantOut: "Session is empty"},
		{line: ":quit", wantQuit: true},
	}

	for _, tt := range tests {
		stdout.Reset()
		stderr.Reset()
		if quit := s.handle(ctx, tt.line); quit != tt.wantQuit {
			t.Errorf("handle(%q) quit = %v, want %v", tt.line, quit, tt.wantQuit)
		}
		if tt.wantOut != "" && !strings.Contains(stdout.String(), tt.wantOut) {
			t.Errorf("handle(%q) output missing %q:\n%s", tt.line, tt.wantOut, stdout.String())
		}
		if tt.wantErrOut != "" && !strings.Contains(stderr.String(), tt.wantErrOut) {
			t.Errorf("handle(%q) stderr missing %q:\n%s", tt.line, tt.wantErrOut, stderr.String())
		}
	}
	if s.format != "yaml" {
		t.Errorf("format = %q, want yaml", s.format)
	}
}

func TestSession_Load(t *testing.T) {
	s, _, stderr := newTestSession(t)
	file := writeFlow(t, t.TempDir(), "lib.flow", "static a = 1;\nstatic b = 2;\n")

	s.handle(context.Background(), ":load "+file)
	if len(s.defs) != 1 || !strings.Contains(s.defs[0], "static b = 2;") {
		t.Errorf("defs = %v, stderr = %s", s.defs, stderr.String())
	}
}
