package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/flowc/pkg/telemetry/logging"
)

// DefaultExtensions are the file extensions that trigger a recompile.
var DefaultExtensions = []string{".flow"}

// Config contains configuration for the watcher.
type Config struct {
	// Paths are files or directories. Directories are watched recursively;
	// for files, the containing directory is watched so that editors that
	// replace files on save are handled.
	Paths []string

	// Debounce is the quiet period before changes are reported.
	// Default: 200ms
	Debounce time.Duration

	// Extensions lists the file extensions to report.
	// Default: [".flow"]
	Extensions []string

	// SkipHidden ignores hidden files and directories.
	SkipHidden bool
}

// Watcher reports batches of changed source files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *logging.Logger
	config   Config
	debounce *Debouncer

	mu      sync.Mutex
	pending map[string]struct{}
	running bool
}

// New creates a watcher. Close releases it.
func New(cfg Config, logger *logging.Logger) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if logger == nil {
		logger = logging.Discard()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger.With("component", "watch"),
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		pending:  make(map[string]struct{}),
	}
	for _, path := range cfg.Paths {
		if err := w.addPath(path); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", path, err)
		}
	}
	return w, nil
}

// Watch blocks until ctx is cancelled, calling onChange with the sorted
// paths changed during each debounce window. Calls never overlap.
func (w *Watcher) Watch(ctx context.Context, onChange func(changed []string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	var callMu sync.Mutex
	flush := func() {
		callMu.Lock()
		defer callMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if changed := w.drain(); len(changed) > 0 {
			onChange(changed)
		}
	}

	w.logger.Info("watching for changes",
		"paths", w.config.Paths,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.debounce.Stop()
			// Wait for an in-flight callback.
			callMu.Lock()
			callMu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.skip(event.Name) {
					if err := w.addDirectory(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			w.mu.Lock()
			w.pending[filepath.Clean(event.Name)] = struct{}{}
			w.mu.Unlock()
			w.debounce.Trigger(flush)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.debounce.Stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	list := w.watcher.WatchList()
	sort.Strings(list)
	return list
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(changed)
	return changed
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.addDirectory(path)
	}
	return w.watcher.Add(filepath.Dir(path))
}

// addDirectory watches dir and all of its subdirectories.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skip(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) skip(path string) bool {
	return w.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// shouldProcessEvent reports whether an event changes a source file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.skip(event.Name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
