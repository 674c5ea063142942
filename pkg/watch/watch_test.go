package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("expected error without paths")
	}
	if _, err := New(Config{Paths: []string{filepath.Join(t.TempDir(), "missing")}}, nil); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestNew_WatchesDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"lib", ".git", "lib/nested"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	file := filepath.Join(t.TempDir(), "main.flow")
	if err := os.WriteFile(file, []byte("a = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Paths: []string{dir, file}, SkipHidden: true}, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer w.Close()

	got := strings.Join(w.WatchList(), ",")
	for _, want := range []string{dir, filepath.Join(dir, "lib"), filepath.Join(dir, "lib", "nested"), filepath.Dir(file)} {
		if !strings.Contains(got, want) {
			t.Errorf("watch list %q is missing %s", got, want)
		}
	}
	if strings.Contains(got, ".git") {
		t.Errorf("watch list %q includes a hidden directory", got)
	}
}

func TestShouldProcessEvent(t *testing.T) {
	w := &Watcher{config: Config{Extensions: DefaultExtensions, SkipHidden: true}}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write flow", fsnotify.Event{Name: "a/main.flow", Op: fsnotify.Write}, true},
		{"create flow", fsnotify.Event{Name: "a/lib.FLOW", Op: fsnotify.Create}, true},
		{"remove flow", fsnotify.Event{Name: "a/old.flow", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "a/main.flow", Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: "a/main.json", Op: fsnotify.Write}, false},
		{"hidden file", fsnotify.Event{Name: "a/.main.flow", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestWatch_ReportsBatches(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Paths: []string{dir}, Debounce: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer w.Close()

	var mu sync.Mutex
	var batches [][]string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(changed []string) {
			mu.Lock()
			defer mu.Unlock()
			batches = append(batches, changed)
		})
	}()

	// Give the event loop a moment to start.
	time.Sleep(50 * time.Millisecond)
	for _, name := range []string{"a.flow", "b.flow", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x = 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reported := func() map[string]bool {
		mu.Lock()
		defer mu.Unlock()
		seen := map[string]bool{}
		for _, batch := range batches {
			for _, path := range batch {
				seen[filepath.Base(path)] = true
			}
		}
		return seen
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if seen := reported(); seen["a.flow"] && seen["b.flow"] {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() returned %v", err)
	}

	if seen := reported(); !seen["a.flow"] || !seen["b.flow"] || seen["notes.txt"] {
		t.Errorf("reported %v, want a.flow and b.flow only", seen)
	}
}

func TestWatch_AlreadyRunning(t *testing.T) {
	w, err := New(Config{Paths: []string{t.TempDir()}}, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, func([]string) {})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := w.Watch(ctx, func([]string) {}); err == nil {
		t.Error("second Watch() should fail")
	}
}
