package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
)

// active is the process-wide configuration together with the file it came
// from, so that watch mode can reload the same file later.
type active struct {
	cfg  *Config
	path string // Absolute path of the source file, "" for defaults
}

var (
	mu      sync.RWMutex
	current *active
)

// Initialize loads the configuration with Load and makes it the process-wide
// configuration. Only the first successful call has an effect; a failed call
// leaves nothing installed, so it can be retried.
func Initialize(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return nil
	}

	next, err := load(path)
	if err != nil {
		return err
	}
	current = next
	return nil
}

// GetConfig returns the process-wide configuration, or nil before Initialize.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil
	}
	return current.cfg
}

// Path returns the absolute path of the file the current configuration was
// loaded from. It is empty when the defaults are in use or the configuration
// was installed with SetConfig.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.path
}

// SetConfig installs cfg without a source file. Tests use it.
func SetConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		current = nil
		return
	}
	current = &active{cfg: cfg}
}

// ReloadConfig loads the configuration again and installs it. An empty path
// reloads the file the current configuration came from, falling back to the
// Load lookup when there is none. It reports whether the effective
// configuration changed; on error the current one stays in place.
func ReloadConfig(path string) (bool, error) {
	mu.Lock()
	defer mu.Unlock()
	if path == "" && current != nil {
		path = current.path
	}

	next, err := load(path)
	if err != nil {
		return false, fmt.Errorf("failed to reload configuration: %w", err)
	}
	changed := current == nil || !reflect.DeepEqual(current.cfg, next.cfg)
	current = next
	return changed, nil
}

// MustGetConfig is GetConfig that panics before Initialize.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}

func load(path string) (*active, error) {
	source, err := Locate(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(source)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
	}
	return &active{cfg: cfg, path: source}, nil
}
